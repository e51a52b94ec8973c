package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
	"github.com/johnquangdev/interview-scoring/pkg/config"
)

func testConfig(backends ...string) *config.Config {
	return &config.Config{
		Scoring: config.ScoringConfig{Backends: backends},
		Groq: config.GroqConfig{
			APIKey: "k", BaseURL: "https://api.groq.com", Model: "llama", Timeout: time.Second, Scale: "decile",
		},
		HTTPBackend: config.HTTPBackendConfig{
			Name: "inhouse", URL: "http://scorer.internal", Timeout: time.Second, Scale: "auto",
		},
	}
}

func TestBuildClients_Order(t *testing.T) {
	clients, err := BuildClients(context.Background(), testConfig("http", " groq"), nil)
	if err != nil {
		t.Fatalf("BuildClients: %v", err)
	}
	if len(clients) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(clients))
	}
	if clients[0].Name() != "inhouse" || clients[1].Name() != "groq" {
		t.Fatalf("unexpected order: %s, %s", clients[0].Name(), clients[1].Name())
	}
}

func TestBuildClients_Rejects(t *testing.T) {
	if _, err := BuildClients(context.Background(), testConfig("openai"), nil); !errors.Is(err, entities.ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}

	cfg := testConfig("groq")
	cfg.Groq.Scale = "stars"
	if _, err := BuildClients(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected an error for an unknown scale")
	}
}
