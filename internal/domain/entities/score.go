package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RiskLevel is the coarse anti-cheat signal attached to a score
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// Rank orders risk levels; unknown values rank below low.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLevelLow:
		return 1
	case RiskLevelMedium:
		return 2
	case RiskLevelHigh:
		return 3
	}
	return 0
}

// ScorerType tells whether a score was produced by the pipeline or by a person
type ScorerType string

const (
	ScorerTypeAI    ScorerType = "ai"
	ScorerTypeHuman ScorerType = "human"
)

// ScoreMetadata is kept alongside the canonical score for reconciliation
type ScoreMetadata struct {
	RunID             string              `json:"run_id,omitempty"`
	Backends          []string            `json:"backends,omitempty"`
	FailedBackends    map[string]string   `json:"failed_backends,omitempty"`
	MissingDimensions []string            `json:"missing_dimensions,omitempty"`
	BackendGaps       map[string][]string `json:"backend_gaps,omitempty"`
	RubricOrder       []string            `json:"rubric_order,omitempty"`
	RawPredictions    []SourcedPrediction `json:"raw_predictions,omitempty"`
}

// InterviewScore is the canonical, one-per-interview aggregate score
type InterviewScore struct {
	ID                 uuid.UUID                         `json:"id" gorm:"type:uuid;primary_key"`
	InterviewID        uuid.UUID                         `json:"interview_id" gorm:"type:uuid;not null;uniqueIndex"`
	ApplicationID      uuid.UUID                         `json:"application_id" gorm:"type:uuid;not null;index"`
	OrgID              uuid.UUID                         `json:"org_id" gorm:"type:uuid;not null;index"`
	OverallScore       int                               `json:"overall_score" gorm:"not null"`
	NarrativeSummary   string                            `json:"narrative_summary" gorm:"type:text"`
	CandidateFeedback  string                            `json:"candidate_feedback" gorm:"type:text"`
	AntiCheatRiskLevel RiskLevel                         `json:"anti_cheat_risk_level" gorm:"type:varchar(10);not null;default:'low'"`
	ScorerType         ScorerType                        `json:"scorer_type" gorm:"type:varchar(10);not null"`
	ReviewerID         *uuid.UUID                        `json:"reviewer_id,omitempty" gorm:"type:uuid"`
	ModelVersion       string                            `json:"model_version,omitempty" gorm:"type:varchar(255)"`
	PromptVersion      string                            `json:"prompt_version,omitempty" gorm:"type:varchar(50)"`
	RubricVersion      string                            `json:"rubric_version,omitempty" gorm:"type:varchar(50)"`
	HumanOverride      bool                              `json:"human_override" gorm:"not null;default:false"`
	OverrideReason     *string                           `json:"override_reason,omitempty" gorm:"type:text"`
	OverriddenAt       *time.Time                        `json:"overridden_at,omitempty"`
	Metadata           datatypes.JSONType[ScoreMetadata] `json:"metadata" gorm:"type:jsonb"`
	CreatedAt          time.Time                         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time                         `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (InterviewScore) TableName() string {
	return "interview_scores"
}

// NewAutomatedScore creates an AI-produced score for an interview
func NewAutomatedScore(interview *Interview) *InterviewScore {
	return &InterviewScore{
		ID:                 uuid.New(),
		InterviewID:        interview.ID,
		ApplicationID:      interview.ApplicationID,
		OrgID:              interview.OrgID,
		AntiCheatRiskLevel: RiskLevelLow,
		ScorerType:         ScorerTypeAI,
	}
}

// ScoreDimension is one named axis of the canonical score, normalized to 0-10
type ScoreDimension struct {
	ID          uuid.UUID                    `json:"id" gorm:"type:uuid;primary_key"`
	InterviewID uuid.UUID                    `json:"interview_id" gorm:"type:uuid;not null;index"`
	Name        string                       `json:"name" gorm:"type:varchar(100);not null"`
	Score       float64                      `json:"score" gorm:"not null"`
	Weight      *float64                     `json:"weight,omitempty"`
	Evidence    string                       `json:"evidence,omitempty" gorm:"type:text"`
	Quotes      datatypes.JSONType[[]string] `json:"quotes,omitempty" gorm:"type:jsonb"`
	Sources     int                          `json:"sources" gorm:"not null;default:1"`
	Position    int                          `json:"position" gorm:"not null"`
	CreatedAt   time.Time                    `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (ScoreDimension) TableName() string {
	return "score_dimensions"
}

// HumanOverride is a manual score entered by a reviewer
type HumanOverride struct {
	ReviewerID   uuid.UUID
	OverallScore int
	Reason       string
}
