package score

import (
	"time"

	"github.com/google/uuid"
)

// RubricDimensionRequest is one weighted rubric entry
type RubricDimensionRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Weight      float64 `json:"weight" validate:"gte=0"`
	Description string  `json:"description,omitempty" validate:"max=1000"`
	Required    bool    `json:"required,omitempty"`
}

// RubricRequest is the caller-supplied weighting scheme
type RubricRequest struct {
	Version    string                   `json:"version,omitempty" validate:"max=50"`
	Dimensions []RubricDimensionRequest `json:"dimensions" validate:"required,min=1,max=50,dive"`
}

// ScoreInterviewRequest triggers a scoring run for an interview
type ScoreInterviewRequest struct {
	JobDescription string         `json:"job_description" validate:"max=20000"`
	ResumeText     string         `json:"resume_text" validate:"max=50000"`
	RoleTitle      string         `json:"role_title" validate:"required,max=255"`
	Seniority      string         `json:"seniority,omitempty" validate:"max=50"`
	Rubric         *RubricRequest `json:"rubric,omitempty"`
	Values         []string       `json:"values,omitempty" validate:"max=20,dive,max=255"`
	// Backends optionally selects and orders scoring backends
	Backends []string `json:"backends,omitempty" validate:"max=5,dive,required"`
}

// OverrideRequest replaces the overall score with a reviewer's judgement
type OverrideRequest struct {
	OverallScore *int   `json:"overall_score" validate:"required,gte=0,lte=100"`
	Reason       string `json:"reason" validate:"required,max=2000"`
}

// DimensionResponse is one persisted dimension
type DimensionResponse struct {
	Name     string   `json:"name"`
	Score    float64  `json:"score"`
	Weight   *float64 `json:"weight,omitempty"`
	Evidence string   `json:"evidence,omitempty"`
	Quotes   []string `json:"quotes,omitempty"`
	Sources  int      `json:"sources"`
}

// ScoreResponse is the canonical score of an interview
type ScoreResponse struct {
	InterviewID        uuid.UUID           `json:"interview_id"`
	ApplicationID      uuid.UUID           `json:"application_id"`
	OverallScore       int                 `json:"overall_score"`
	NarrativeSummary   string              `json:"narrative_summary"`
	CandidateFeedback  string              `json:"candidate_feedback"`
	AntiCheatRiskLevel string              `json:"anti_cheat_risk_level"`
	ScorerType         string              `json:"scorer_type"`
	ModelVersion       string              `json:"model_version,omitempty"`
	PromptVersion      string              `json:"prompt_version,omitempty"`
	RubricVersion      string              `json:"rubric_version,omitempty"`
	HumanOverride      bool                `json:"human_override"`
	OverrideReason     *string             `json:"override_reason,omitempty"`
	ReviewerID         *uuid.UUID          `json:"reviewer_id,omitempty"`
	MissingDimensions  []string            `json:"missing_dimensions,omitempty"`
	FailedBackends     map[string]string   `json:"failed_backends,omitempty"`
	Dimensions         []DimensionResponse `json:"dimensions"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// RunResponse describes a finished scoring run
type RunResponse struct {
	RunID      uuid.UUID      `json:"run_id"`
	State      string         `json:"state"`
	Skipped    []string       `json:"skipped_backends,omitempty"`
	DurationMs int64          `json:"duration_ms"`
	Score      *ScoreResponse `json:"score,omitempty"`
}

// ReportLinkResponse points at a published report
type ReportLinkResponse struct {
	InterviewID uuid.UUID `json:"interview_id"`
	URL         string    `json:"url"`
}

// BackendStatus is the liveness of one scoring backend
type BackendStatus struct {
	Name        string     `json:"name"`
	Available   bool       `json:"available"`
	LastOK      *time.Time `json:"last_ok,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	LastProbeAt *time.Time `json:"last_probe_at,omitempty"`
}

// HealthResponse is the service health report
type HealthResponse struct {
	Status      string            `json:"status"`
	Environment string            `json:"environment"`
	Time        time.Time         `json:"time"`
	Components  map[string]string `json:"components"`
	Backends    []BackendStatus   `json:"backends"`
}
