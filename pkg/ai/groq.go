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

// GroqBackend scores transcripts through Groq's OpenAI-compatible chat API
type GroqBackend struct {
	apiKey  string
	baseURL string
	model   string
	scale   entities.ScoreScale
	client  *http.Client
	retry   retryPolicy
}

// GroqOptions configures a GroqBackend
type GroqOptions struct {
	APIKey  string
	BaseURL string
	Model   string
	Scale   entities.ScoreScale
	Timeout time.Duration
}

// NewGroqBackend creates a Groq scoring client
func NewGroqBackend(opts GroqOptions) *GroqBackend {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.groq.com"
	}
	model := opts.Model
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &GroqBackend{
		apiKey:  opts.APIKey,
		baseURL: base,
		model:   model,
		scale:   opts.Scale,
		client:  &http.Client{Timeout: timeout},
		retry:   defaultRetry,
	}
}

// ChatMessage is one message of a chat completion
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat asks the model for a JSON object
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model          string          `json:"model,omitempty"`
	Messages       []ChatMessage   `json:"messages,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Name returns "groq"
func (g *GroqBackend) Name() string { return "groq" }

// Score asks the model for a structured verdict on the transcript
func (g *GroqBackend) Score(ctx context.Context, transcript []entities.TranscriptSegment, sc entities.ScoringContext) (*entities.RawPrediction, error) {
	reqBody := ChatRequest{
		Model: g.model,
		Messages: []ChatMessage{
			{Role: "system", Content: "You are a structured interview evaluator. You only answer with JSON."},
			{Role: "user", Content: BuildPrompt(transcript, sc)},
		},
		Temperature:    0.2,
		MaxTokens:      4000,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	data, err := doJSONRetry(ctx, g.retry, g.client, g.Name(), http.MethodPost, g.baseURL+"/openai/v1/chat/completions", b, g.authHeaders())
	if err != nil {
		return nil, err
	}

	var cr ChatResponse
	if err := json.Unmarshal(data, &cr); err != nil {
		return nil, entities.InvalidResponse(g.Name(), fmt.Errorf("decode chat response: %w", err))
	}
	if len(cr.Choices) == 0 {
		return nil, entities.InvalidResponse(g.Name(), fmt.Errorf("empty response from groq"))
	}

	pred, err := DecodePrediction(g.Name(), []byte(extractJSON(cr.Choices[0].Message.Content)), g.scale)
	if err != nil {
		return nil, err
	}
	if pred.Model == "" {
		pred.Model = cr.Model
	}
	if pred.Model == "" {
		pred.Model = g.model
	}
	return pred, nil
}

// Health lists models, which succeeds only with a valid key
func (g *GroqBackend) Health(ctx context.Context) error {
	_, err := doJSON(ctx, g.client, g.Name(), http.MethodGet, g.baseURL+"/openai/v1/models", nil, g.authHeaders())
	return err
}

func (g *GroqBackend) authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + g.apiKey}
}
