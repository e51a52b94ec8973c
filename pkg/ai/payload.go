package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
)

var payloadValidator = validator.New()

// PredictionPayload is the wire schema every scoring backend must answer with
type PredictionPayload struct {
	Dimensions         map[string]DimensionPayload `json:"dimensions" validate:"required,min=1,dive"`
	Summary            string                      `json:"summary"`
	CandidateFeedback  string                      `json:"candidate_feedback"`
	OverallScore       *float64                    `json:"overall_score" validate:"omitempty,gte=0"`
	AntiCheatRiskLevel string                      `json:"anti_cheat_risk_level" validate:"omitempty,oneof=low medium high"`
	Model              string                      `json:"model"`
}

// DimensionPayload is one dimension verdict on the wire
type DimensionPayload struct {
	Score      *float64 `json:"score" validate:"required,gte=0"`
	Confidence *float64 `json:"confidence" validate:"omitempty,gte=0,lte=1"`
	Rationale  string   `json:"rationale"`
	Quotes     []string `json:"quotes"`
}

// DecodePrediction parses and validates a backend payload. Unknown fields,
// missing scores and empty dimension names are rejected as invalid responses.
func DecodePrediction(backend string, data []byte, scale entities.ScoreScale) (*entities.RawPrediction, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var payload PredictionPayload
	if err := dec.Decode(&payload); err != nil {
		return nil, entities.InvalidResponse(backend, fmt.Errorf("decode payload: %w", err))
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, entities.InvalidResponse(backend, fmt.Errorf("trailing data after payload"))
	}
	if err := payloadValidator.Struct(payload); err != nil {
		return nil, entities.InvalidResponse(backend, fmt.Errorf("validate payload: %w", err))
	}

	names := make([]string, 0, len(payload.Dimensions))
	for name := range payload.Dimensions {
		if entities.DimensionKey(name) == "" {
			return nil, entities.InvalidResponse(backend, fmt.Errorf("dimension with empty name"))
		}
		names = append(names, name)
	}
	sort.Strings(names)

	// "Problem Solving" and "problem_solving" would count this backend twice
	keys := make(map[string]string, len(names))
	for _, name := range names {
		key := entities.DimensionKey(name)
		if prev, dup := keys[key]; dup {
			return nil, entities.InvalidResponse(backend, fmt.Errorf("dimensions %q and %q name the same axis", prev, name))
		}
		keys[key] = name
	}

	pred := &entities.RawPrediction{
		Summary:            strings.TrimSpace(payload.Summary),
		CandidateFeedback:  strings.TrimSpace(payload.CandidateFeedback),
		OverallScore:       payload.OverallScore,
		AntiCheatRiskLevel: entities.RiskLevel(payload.AntiCheatRiskLevel),
		Scale:              scale,
		Model:              payload.Model,
		Dimensions:         make([]entities.DimensionPrediction, 0, len(names)),
	}
	for _, name := range names {
		d := payload.Dimensions[name]
		pred.Dimensions = append(pred.Dimensions, entities.DimensionPrediction{
			Name:       strings.TrimSpace(name),
			Score:      *d.Score,
			Confidence: d.Confidence,
			Rationale:  strings.TrimSpace(d.Rationale),
			Quotes:     d.Quotes,
		})
	}
	return pred, nil
}

// extractJSON strips the markdown fences LLMs like to wrap JSON in
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
