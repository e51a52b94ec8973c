package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/interview-scoring/internal/infrastructure/external/assemblyai"
)

type fakeImporter struct {
	calls        int
	interviewID  uuid.UUID
	transcriptID string
	opts         assemblyai.ImportOptions
}

func (f *fakeImporter) Import(_ context.Context, interviewID uuid.UUID, transcriptID string, opts assemblyai.ImportOptions) (int, error) {
	f.calls++
	f.interviewID, f.transcriptID, f.opts = interviewID, transcriptID, opts
	return 12, nil
}

func TestAssemblyAIWebhook(t *testing.T) {
	importer := &fakeImporter{}
	e := echo.New()
	NewRouter(RouterOptions{Webhook: NewAIWebhookHandler(importer, "hook-secret", "B", nil)}).Setup(e)

	id := uuid.New()
	post := func(query, secret, body string) int {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/assemblyai"+query, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		if secret != "" {
			req.Header.Set(WebhookAuthHeader, secret)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}
	completed := `{"transcript_id":"tr_1","status":"completed"}`

	if code := post("?interview_id="+id.String(), "wrong", completed); code != http.StatusUnauthorized {
		t.Fatalf("wrong secret: expected 401, got %d", code)
	}
	if code := post("?interview_id=nope", "hook-secret", completed); code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", code)
	}
	if code := post("?interview_id="+id.String(), "hook-secret", `{"transcript_id":"tr_1","status":"error"}`); code != http.StatusOK {
		t.Fatalf("errored transcript: expected 200, got %d", code)
	}
	if importer.calls != 0 {
		t.Fatal("nothing must be imported before a completed webhook")
	}

	if code := post("?interview_id="+id.String(), "hook-secret", completed); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if importer.interviewID != id || importer.transcriptID != "tr_1" || importer.opts.CandidateSpeaker != "B" || !importer.opts.Complete {
		t.Fatalf("unexpected import: %+v", importer)
	}

	if code := post("?interview_id="+id.String()+"&candidate=A", "hook-secret", completed); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if importer.opts.CandidateSpeaker != "A" {
		t.Fatalf("candidate override ignored: %q", importer.opts.CandidateSpeaker)
	}
}
