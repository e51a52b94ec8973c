package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
)

const defaultGeminiModel = "gemini-2.5-flash"

// contentGenerator is the slice of genai.Models the backend uses
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error)
}

// GeminiBackend scores transcripts with Google Gemini
type GeminiBackend struct {
	models  contentGenerator
	model   string
	scale   entities.ScoreScale
	timeout time.Duration
	retry   retryPolicy
}

// NewGeminiBackend creates a Gemini scoring client for the Gemini API backend.
// Each Score call is bounded by timeout when it is positive.
func NewGeminiBackend(ctx context.Context, apiKey, model string, scale entities.ScoreScale, timeout time.Duration) (*GeminiBackend, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	g := newGeminiBackend(client.Models, model, scale)
	g.timeout = timeout
	return g, nil
}

func newGeminiBackend(models contentGenerator, model string, scale entities.ScoreScale) *GeminiBackend {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultGeminiModel
	}
	return &GeminiBackend{models: models, model: model, scale: scale, retry: defaultRetry}
}

// Name returns "gemini"
func (g *GeminiBackend) Name() string { return "gemini" }

// Score asks Gemini for a JSON verdict on the transcript
func (g *GeminiBackend) Score(ctx context.Context, transcript []entities.TranscriptSegment, sc entities.ScoringContext) (*entities.RawPrediction, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.2),
		ResponseMIMEType: "application/json",
	}

	contents := genai.Text(BuildPrompt(transcript, sc))
	var resp *genai.GenerateContentResponse
	err := g.retry.do(ctx, func() error {
		var err error
		resp, err = g.models.GenerateContent(ctx, g.model, contents, cfg)
		if err != nil {
			return g.classify(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			builder.WriteString(part.Text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return nil, entities.InvalidResponse(g.Name(), errors.New("gemini api returned empty response"))
	}

	pred, err := DecodePrediction(g.Name(), []byte(extractJSON(output)), g.scale)
	if err != nil {
		return nil, err
	}
	if pred.Model == "" {
		pred.Model = g.model
	}
	return pred, nil
}

// Health fetches the configured model's metadata
func (g *GeminiBackend) Health(ctx context.Context) error {
	if _, err := g.models.Get(ctx, g.model, nil); err != nil {
		return g.classify(err)
	}
	return nil
}

// classify maps genai errors onto the backend taxonomy. Every API failure is
// retryable except a 400, which means the request itself was rejected.
func (g *GeminiBackend) classify(err error) error {
	status := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Code
	case errors.As(err, &apiErrPtr):
		status = apiErrPtr.Code
	}
	if status == http.StatusBadRequest {
		return entities.InvalidResponse(g.Name(), err)
	}
	return entities.Unavailable(g.Name(), status, err)
}
