package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SCORING_BACKENDS", "groq,http")
	t.Setenv("GROQ_API_KEY", "test-key")
	t.Setenv("SCORING_HTTP_URL", "http://scorer.internal")
	t.Setenv("SCORING_RUN_TIMEOUT", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Scoring.Backends) != 2 || cfg.Scoring.Backends[1] != BackendHTTP {
		t.Fatalf("unexpected backends %v", cfg.Scoring.Backends)
	}
	if cfg.Scoring.RunTimeout != 90*time.Second {
		t.Fatalf("unexpected run timeout %v", cfg.Scoring.RunTimeout)
	}
	if !cfg.Scoring.TolerateFailures || cfg.Scoring.HealthGrace != 90*time.Second {
		t.Fatalf("unexpected scoring defaults %+v", cfg.Scoring)
	}
	if cfg.HTTPBackend.Scale != "auto" {
		t.Fatalf("unexpected http scale %q", cfg.HTTPBackend.Scale)
	}
	if !strings.Contains(cfg.GetDatabaseDSN(), "dbname=interview_scoring") {
		t.Fatalf("unexpected dsn %s", cfg.GetDatabaseDSN())
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Scoring:     ScoringConfig{Backends: []string{BackendGroq}, RunTimeout: time.Minute},
			Groq:        GroqConfig{APIKey: "k", Timeout: time.Second},
			Gemini:      GeminiConfig{Timeout: time.Second},
			HTTPBackend: HTTPBackendConfig{Timeout: time.Second},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown backend", mutate: func(c *Config) { c.Scoring.Backends = []string{"openai"} }, want: "unknown scoring backend"},
		{name: "gemini without key", mutate: func(c *Config) { c.Scoring.Backends = []string{BackendGemini} }, want: "GEMINI_API_KEY"},
		{name: "http without url", mutate: func(c *Config) { c.Scoring.Backends = []string{BackendHTTP} }, want: "SCORING_HTTP_URL"},
		{name: "no backends", mutate: func(c *Config) { c.Scoring.Backends = nil }, want: "at least one"},
		{name: "zero run timeout", mutate: func(c *Config) { c.Scoring.RunTimeout = 0 }, want: "SCORING_RUN_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
