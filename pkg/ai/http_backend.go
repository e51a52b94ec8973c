package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
)

// HTTPBackend calls a self-hosted scoring service that speaks the prediction schema
// directly: POST {base}/predict and GET {base}/healthz.
type HTTPBackend struct {
	name    string
	baseURL string
	secret  string
	scale   entities.ScoreScale
	client  *http.Client
	retry   retryPolicy
}

// HTTPBackendOptions configures an HTTPBackend
type HTTPBackendOptions struct {
	Name    string
	BaseURL string
	Secret  string
	Scale   entities.ScoreScale
	Timeout time.Duration
}

// NewHTTPBackend creates a scoring client for a generic HTTP service
func NewHTTPBackend(opts HTTPBackendOptions) *HTTPBackend {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	name := opts.Name
	if name == "" {
		name = "http"
	}
	return &HTTPBackend{
		name:    name,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		secret:  opts.Secret,
		scale:   opts.Scale,
		client:  &http.Client{Timeout: timeout},
		retry:   defaultRetry,
	}
}

// predictRequest is the body sent to /predict
type predictRequest struct {
	Transcript []predictSegment        `json:"transcript"`
	Context    entities.ScoringContext `json:"context"`
}

type predictSegment struct {
	Speaker     entities.Speaker `json:"speaker"`
	Content     string           `json:"content"`
	StartTimeMs int64            `json:"start_time_ms"`
}

// Name returns the configured backend name
func (b *HTTPBackend) Name() string { return b.name }

// Score posts the transcript and context and validates the returned prediction
func (b *HTTPBackend) Score(ctx context.Context, transcript []entities.TranscriptSegment, sc entities.ScoringContext) (*entities.RawPrediction, error) {
	req := predictRequest{
		Transcript: make([]predictSegment, 0, len(transcript)),
		Context:    sc,
	}
	for _, seg := range transcript {
		req.Transcript = append(req.Transcript, predictSegment{
			Speaker:     seg.Speaker,
			Content:     seg.Content,
			StartTimeMs: seg.StartTimeMs,
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal predict request: %w", err)
	}

	headers := map[string]string{}
	if b.secret != "" {
		headers[SignatureHeader] = SignHMAC(b.secret, body)
	}

	data, err := doJSONRetry(ctx, b.retry, b.client, b.name, http.MethodPost, b.baseURL+"/predict", body, headers)
	if err != nil {
		return nil, err
	}
	return DecodePrediction(b.name, data, b.scale)
}

// Health probes GET /healthz
func (b *HTTPBackend) Health(ctx context.Context) error {
	_, err := doJSON(ctx, b.client, b.name, http.MethodGet, b.baseURL+"/healthz", nil, nil)
	return err
}
