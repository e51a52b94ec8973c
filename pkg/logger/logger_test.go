package logger

import "testing"

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"  hello  ", 10, "hello"},
		{"hello world", 5, "hello..."},
		{"héllo", 2, "hé..."},
		{"anything", 0, ""},
	}
	for _, c := range cases {
		if got := Truncate(c.in, c.limit); got != c.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", c.in, c.limit, got, c.want)
		}
	}
}

func TestBackendFieldsSkipsEmpty(t *testing.T) {
	if got := BackendFields("groq", ""); len(got) != 1 || got[0].Key != FieldBackend {
		t.Fatalf("unexpected fields %+v", got)
	}
	if got := BackendFields(" ", " "); len(got) != 0 {
		t.Fatalf("expected no fields, got %+v", got)
	}
}

func TestNew(t *testing.T) {
	for _, json := range []bool{true, false} {
		l, err := New(json, true)
		if err != nil {
			t.Fatalf("New(%v): %v", json, err)
		}
		l.Debug("ok")
	}
}
