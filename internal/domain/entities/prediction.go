package entities

import (
	"fmt"
	"strings"
)

// ScoreScale declares the range a scoring backend emits scores on
type ScoreScale string

const (
	ScoreScaleAuto    ScoreScale = "auto"    // 0-1 if every score fits, otherwise 0-10
	ScoreScaleUnit    ScoreScale = "unit"    // 0-1
	ScoreScaleDecile  ScoreScale = "decile"  // 0-10
	ScoreScalePercent ScoreScale = "percent" // 0-100
)

// ParseScoreScale parses a configured scale name; empty means auto
func ParseScoreScale(s string) (ScoreScale, error) {
	switch ScoreScale(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScoreScaleAuto:
		return ScoreScaleAuto, nil
	case ScoreScaleUnit:
		return ScoreScaleUnit, nil
	case ScoreScaleDecile:
		return ScoreScaleDecile, nil
	case ScoreScalePercent:
		return ScoreScalePercent, nil
	}
	return "", fmt.Errorf("unknown score scale %q", s)
}

// DimensionPrediction is a single backend's verdict on one dimension
type DimensionPrediction struct {
	Name       string   `json:"name"`
	Score      float64  `json:"score"`
	Confidence *float64 `json:"confidence,omitempty"`
	Rationale  string   `json:"rationale,omitempty"`
	Quotes     []string `json:"quotes,omitempty"`
}

// RawPrediction is the validated output of one scoring backend.
// Dimensions are sorted by name so aggregation never depends on map order.
type RawPrediction struct {
	Dimensions         []DimensionPrediction `json:"dimensions"`
	Summary            string                `json:"summary,omitempty"`
	CandidateFeedback  string                `json:"candidate_feedback,omitempty"`
	OverallScore       *float64              `json:"overall_score,omitempty"`
	AntiCheatRiskLevel RiskLevel             `json:"anti_cheat_risk_level,omitempty"`
	Scale              ScoreScale            `json:"scale,omitempty"`
	Model              string                `json:"model,omitempty"`
}

// SourcedPrediction ties a prediction to the backend that produced it
type SourcedPrediction struct {
	Backend    string         `json:"backend"`
	Prediction *RawPrediction `json:"prediction"`
}

// RubricDimension is one weighted entry of a custom rubric
type RubricDimension struct {
	Name        string  `json:"name" validate:"required"`
	Weight      float64 `json:"weight" validate:"gte=0"`
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required,omitempty"`
}

// Rubric is a caller-supplied weighting scheme, in declared order
type Rubric struct {
	Version    string            `json:"version,omitempty"`
	Dimensions []RubricDimension `json:"dimensions" validate:"dive"`
}

// Weights returns the rubric as a name to weight map
func (r *Rubric) Weights() map[string]float64 {
	if r == nil || len(r.Dimensions) == 0 {
		return nil
	}
	out := make(map[string]float64, len(r.Dimensions))
	for _, d := range r.Dimensions {
		out[d.Name] = d.Weight
	}
	return out
}

// Order returns dimension names in declared order
func (r *Rubric) Order() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.Dimensions))
	for _, d := range r.Dimensions {
		out = append(out, d.Name)
	}
	return out
}

// RequiredNames returns dimensions every backend is expected to score.
// With no explicit required flags, every rubric dimension is required.
func (r *Rubric) RequiredNames() []string {
	if r == nil {
		return nil
	}
	var required []string
	for _, d := range r.Dimensions {
		if d.Required {
			required = append(required, d.Name)
		}
	}
	if len(required) == 0 {
		return r.Order()
	}
	return required
}

// Validate checks the rubric for duplicate names and negative weights
func (r *Rubric) Validate() error {
	if r == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(r.Dimensions))
	for _, d := range r.Dimensions {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return fmt.Errorf("%w: dimension name is empty", ErrInvalidRubric)
		}
		if d.Weight < 0 {
			return fmt.Errorf("%w: negative weight for %q", ErrInvalidRubric, name)
		}
		key := DimensionKey(name)
		if key == "" {
			return fmt.Errorf("%w: dimension name %q has no letters", ErrInvalidRubric, name)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate dimension %q", ErrInvalidRubric, name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// ScoringContext is everything a backend needs besides the transcript.
// It is passed by value into every run; nothing is looked up mid-pipeline.
type ScoringContext struct {
	OrgID          string   `json:"org_id"`
	JobDescription string   `json:"job_description"`
	ResumeText     string   `json:"resume_text"`
	RoleTitle      string   `json:"role_title"`
	Seniority      string   `json:"seniority"`
	Rubric         *Rubric  `json:"rubric,omitempty"`
	Values         []string `json:"values,omitempty"`
}

// DimensionKey folds the spelling differences backends commonly produce,
// so "Problem Solving", "problem-solving" and "problem_solving" match.
func DimensionKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.FieldsFunc(key, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), "_")
}
