package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
)

var fastRetry = retryPolicy{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}

const validPayload = `{
  "dimensions": {
    "technical_depth": {"score": 7, "confidence": 0.8, "rationale": "solid", "quotes": ["I built it"]},
    "communication": {"score": 6}
  },
  "summary": "good candidate",
  "candidate_feedback": "keep going",
  "anti_cheat_risk_level": "low"
}`

func sampleTranscript() []entities.TranscriptSegment {
	return []entities.TranscriptSegment{
		{Speaker: entities.SpeakerInterviewer, Content: "Tell me about your project", StartTimeMs: 0},
		{Speaker: entities.SpeakerCandidate, Content: "I built it", StartTimeMs: 65000},
	}
}

func TestDecodePrediction_SortsDimensions(t *testing.T) {
	pred, err := DecodePrediction("http", []byte(validPayload), entities.ScoreScaleDecile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pred.Dimensions) != 2 {
		t.Fatalf("expected 2 dimensions, got %d", len(pred.Dimensions))
	}
	if pred.Dimensions[0].Name != "communication" || pred.Dimensions[1].Name != "technical_depth" {
		t.Fatalf("dimensions not sorted: %+v", pred.Dimensions)
	}
	if pred.Scale != entities.ScoreScaleDecile {
		t.Fatalf("scale not carried: %s", pred.Scale)
	}
	if pred.AntiCheatRiskLevel != entities.RiskLevel("low") {
		t.Fatalf("unexpected risk %s", pred.AntiCheatRiskLevel)
	}
}

func TestDecodePrediction_Rejects(t *testing.T) {
	cases := map[string]string{
		"not json":          `nope`,
		"unknown field":     `{"dimensions":{"a":{"score":1}},"extra":true}`,
		"missing score":     `{"dimensions":{"a":{"rationale":"x"}}}`,
		"negative score":    `{"dimensions":{"a":{"score":-1}}}`,
		"no dimensions":     `{"dimensions":{}}`,
		"bad risk level":    `{"dimensions":{"a":{"score":1}},"anti_cheat_risk_level":"extreme"}`,
		"empty name":        `{"dimensions":{" ":{"score":1}}}`,
		"trailing document": `{"dimensions":{"a":{"score":1}}} {}`,
		"folded duplicate":  `{"dimensions":{"Problem Solving":{"score":7},"problem_solving":{"score":9}}}`,
		"separators only":   `{"dimensions":{"_-_":{"score":1}}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodePrediction("http", []byte(body), entities.ScoreScaleAuto)
			if !errors.Is(err, entities.ErrInvalidUpstreamResponse) {
				t.Fatalf("expected invalid response, got %v", err)
			}
			if entities.IsRetryable(err) {
				t.Fatalf("invalid response must not be retryable")
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	got := extractJSON("```json\n{\"a\":1}\n```")
	if got != `{"a":1}` {
		t.Fatalf("unexpected %q", got)
	}
}

func TestBuildPrompt_IncludesContextAndTimestamps(t *testing.T) {
	prompt := BuildPrompt(sampleTranscript(), entities.ScoringContext{
		RoleTitle: "Backend Engineer",
		Seniority: "senior",
		Values:    []string{"ownership"},
		Rubric: &entities.Rubric{Dimensions: []entities.RubricDimension{
			{Name: "system_design", Weight: 2, Description: "designs at scale"},
		}},
	})
	for _, want := range []string{"Backend Engineer (senior)", "- ownership", "- system_design: designs at scale", "[01:05 candidate]: I built it"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestHTTPBackend_ScoreSignsRequest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/predict" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !VerifyHMAC("s3cret", body, r.Header.Get(SignatureHeader)) {
			t.Errorf("bad signature")
		}
		var req predictRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("invalid payload: %v", err)
		}
		if len(req.Transcript) != 2 || req.Context.RoleTitle != "SRE" {
			t.Errorf("unexpected request body: %+v", req)
		}
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, validPayload)
	}))
	defer ts.Close()

	b := NewHTTPBackend(HTTPBackendOptions{Name: "inhouse", BaseURL: ts.URL + "/", Secret: "s3cret", Scale: entities.ScoreScaleDecile})
	pred, err := b.Score(context.Background(), sampleTranscript(), entities.ScoringContext{RoleTitle: "SRE"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Name() != "inhouse" || len(pred.Dimensions) != 2 {
		t.Fatalf("unexpected prediction %+v", pred)
	}
}

func TestHTTPBackend_ErrorMapping(t *testing.T) {
	status := http.StatusServiceUnavailable
	body := "down"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	defer ts.Close()

	b := NewHTTPBackend(HTTPBackendOptions{BaseURL: ts.URL})
	b.retry = fastRetry

	_, err := b.Score(context.Background(), sampleTranscript(), entities.ScoringContext{})
	if !entities.IsRetryable(err) {
		t.Fatalf("503 should be retryable, got %v", err)
	}
	var be *entities.BackendError
	if !errors.As(err, &be) || be.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected backend error with status, got %v", err)
	}

	status, body = http.StatusOK, `{"dimensions": "oops"}`
	_, err = b.Score(context.Background(), sampleTranscript(), entities.ScoringContext{})
	if !errors.Is(err, entities.ErrInvalidUpstreamResponse) {
		t.Fatalf("expected invalid response, got %v", err)
	}

	status, body = http.StatusOK, `{}`
	if err := b.Health(context.Background()); err != nil {
		t.Fatalf("health failed: %v", err)
	}
}

func TestHTTPBackend_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		io.WriteString(w, validPayload)
	}))
	defer ts.Close()

	b := NewHTTPBackend(HTTPBackendOptions{BaseURL: ts.URL, Timeout: 20 * time.Millisecond})
	b.retry = fastRetry
	_, err := b.Score(context.Background(), sampleTranscript(), entities.ScoringContext{})
	if !entities.IsRetryable(err) {
		t.Fatalf("timeout should be retryable, got %v", err)
	}
}

func TestGroqBackend_Score(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openai/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token")
		}
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("invalid payload: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Errorf("json mode not requested")
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"model": "llama-test",
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "```json\n" + validPayload + "\n```"}},
			},
		})
	}))
	defer ts.Close()

	g := NewGroqBackend(GroqOptions{APIKey: "test-key", BaseURL: ts.URL, Scale: entities.ScoreScaleDecile})
	pred, err := g.Score(context.Background(), sampleTranscript(), entities.ScoringContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred.Model != "llama-test" || pred.Summary != "good candidate" {
		t.Fatalf("unexpected prediction %+v", pred)
	}
}

func TestGroqBackend_EmptyChoicesIsInvalid(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices": []}`)
	}))
	defer ts.Close()

	g := NewGroqBackend(GroqOptions{APIKey: "k", BaseURL: ts.URL})
	_, err := g.Score(context.Background(), sampleTranscript(), entities.ScoringContext{})
	if !errors.Is(err, entities.ErrInvalidUpstreamResponse) {
		t.Fatalf("expected invalid response, got %v", err)
	}
}

type fakeModels struct {
	resp  *genai.GenerateContentResponse
	err   error
	block bool
	// queued errors are returned, one per call, before resp and err
	queued []error
	calls  int
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if len(f.queued) > 0 {
		err := f.queued[0]
		f.queued = f.queued[1:]
		return nil, err
	}
	return f.resp, f.err
}

func (f *fakeModels) Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &genai.Model{Name: model}, nil
}

func TestGeminiBackend_Score(t *testing.T) {
	models := &fakeModels{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: validPayload}}},
		}},
	}}
	g := newGeminiBackend(models, "", entities.ScoreScaleDecile)

	pred, err := g.Score(context.Background(), sampleTranscript(), entities.ScoringContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred.Model != defaultGeminiModel {
		t.Fatalf("expected default model, got %s", pred.Model)
	}
	if err := g.Health(context.Background()); err != nil {
		t.Fatalf("health failed: %v", err)
	}
}

func TestGeminiBackend_ErrorMapping(t *testing.T) {
	g := newGeminiBackend(&fakeModels{err: genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}}, "m", entities.ScoreScaleAuto)
	g.retry = fastRetry
	_, err := g.Score(context.Background(), sampleTranscript(), entities.ScoringContext{})
	if !entities.IsRetryable(err) {
		t.Fatalf("429 should be retryable, got %v", err)
	}

	g = newGeminiBackend(&fakeModels{err: genai.APIError{Code: http.StatusBadRequest}}, "m", entities.ScoreScaleAuto)
	_, err = g.Score(context.Background(), sampleTranscript(), entities.ScoringContext{})
	if !errors.Is(err, entities.ErrInvalidUpstreamResponse) {
		t.Fatalf("400 should be invalid, got %v", err)
	}

	g = newGeminiBackend(&fakeModels{resp: &genai.GenerateContentResponse{}}, "m", entities.ScoreScaleAuto)
	_, err = g.Score(context.Background(), sampleTranscript(), entities.ScoringContext{})
	if !errors.Is(err, entities.ErrInvalidUpstreamResponse) {
		t.Fatalf("empty output should be invalid, got %v", err)
	}
}

func TestGeminiBackend_Timeout(t *testing.T) {
	g := newGeminiBackend(&fakeModels{block: true}, "m", entities.ScoreScaleAuto)
	g.timeout = 20 * time.Millisecond
	g.retry = fastRetry

	_, err := g.Score(context.Background(), sampleTranscript(), entities.ScoringContext{})
	if !errors.Is(err, entities.ErrUpstreamUnavailable) {
		t.Fatalf("timeout should be unavailable, got %v", err)
	}
}

func TestHTTPBackend_RetriesTransientFailure(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, validPayload)
	}))
	defer ts.Close()

	b := NewHTTPBackend(HTTPBackendOptions{BaseURL: ts.URL, Scale: entities.ScoreScaleDecile})
	b.retry = fastRetry
	pred, err := b.Score(context.Background(), sampleTranscript(), entities.ScoringContext{})
	if err != nil {
		t.Fatalf("expected success after a retry, got %v", err)
	}
	if len(pred.Dimensions) != 2 {
		t.Fatalf("unexpected prediction %+v", pred)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
}

func TestHTTPBackend_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	b := NewHTTPBackend(HTTPBackendOptions{BaseURL: ts.URL})
	b.retry = fastRetry
	_, err := b.Score(context.Background(), sampleTranscript(), entities.ScoringContext{})
	if !errors.Is(err, entities.ErrUpstreamUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != int32(fastRetry.MaxRetries)+1 {
		t.Fatalf("expected %d calls, got %d", fastRetry.MaxRetries+1, got)
	}
}

func TestGroqBackend_InvalidPayloadNotRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		io.WriteString(w, `{"choices": [{"message": {"content": "{\"dimensions\": \"oops\"}"}}]}`)
	}))
	defer ts.Close()

	g := NewGroqBackend(GroqOptions{APIKey: "k", BaseURL: ts.URL})
	g.retry = fastRetry
	_, err := g.Score(context.Background(), sampleTranscript(), entities.ScoringContext{})
	if !errors.Is(err, entities.ErrInvalidUpstreamResponse) {
		t.Fatalf("expected invalid response, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("invalid payload must not be retried, got %d calls", got)
	}
}

func TestGeminiBackend_Retries(t *testing.T) {
	models := &fakeModels{
		queued: []error{genai.APIError{Code: http.StatusServiceUnavailable}},
		resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: validPayload}}},
		}}},
	}
	g := newGeminiBackend(models, "m", entities.ScoreScaleDecile)
	g.retry = fastRetry
	if _, err := g.Score(context.Background(), sampleTranscript(), entities.ScoringContext{}); err != nil {
		t.Fatalf("expected success after a retry, got %v", err)
	}
	if models.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", models.calls)
	}

	models = &fakeModels{err: genai.APIError{Code: http.StatusBadRequest}}
	g = newGeminiBackend(models, "m", entities.ScoreScaleDecile)
	g.retry = fastRetry
	if _, err := g.Score(context.Background(), sampleTranscript(), entities.ScoringContext{}); !errors.Is(err, entities.ErrInvalidUpstreamResponse) {
		t.Fatalf("expected invalid response, got %v", err)
	}
	if models.calls != 1 {
		t.Fatalf("rejected request must not be retried, got %d calls", models.calls)
	}
}
