package cache

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestMemoryStore_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	store := newMemoryStore(clock.Now, time.Hour)
	defer store.Close()

	store.Set("backend:groq", "ok", 30*time.Second)
	if v, ok := store.Get("backend:groq"); !ok || v != "ok" {
		t.Fatalf("expected fresh value, got %q %v", v, ok)
	}
	if ttl := store.TTL("backend:groq"); ttl != 30*time.Second {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	clock.Advance(31 * time.Second)
	if _, ok := store.Get("backend:groq"); ok {
		t.Fatal("expected value to expire")
	}
	if store.TTL("backend:groq") != 0 {
		t.Fatal("expected zero ttl after expiry")
	}

	store.Set("backend:gemini", "ok", time.Minute)
	store.Delete("backend:gemini")
	if _, ok := store.Get("backend:gemini"); ok {
		t.Fatal("expected deleted key to be gone")
	}
}
