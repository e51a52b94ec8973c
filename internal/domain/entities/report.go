package entities

import (
	"time"

	"github.com/google/uuid"
)

// ReportDimension is a dimension row as it appears in a report
type ReportDimension struct {
	Name     string   `json:"name"`
	Score    float64  `json:"score"`
	Weight   *float64 `json:"weight,omitempty"`
	Evidence string   `json:"evidence,omitempty"`
	Quotes   []string `json:"quotes,omitempty"`
}

// ReportSegment is a transcript line with its offset rendered for humans
type ReportSegment struct {
	Speaker     Speaker `json:"speaker"`
	Content     string  `json:"content"`
	StartTimeMs int64   `json:"start_time_ms"`
	Timestamp   string  `json:"timestamp"`
}

// ReportDocument is the renderable interview report handed to an external renderer
type ReportDocument struct {
	InterviewID        uuid.UUID         `json:"interview_id"`
	ApplicationID      uuid.UUID         `json:"application_id"`
	OrgID              uuid.UUID         `json:"org_id"`
	OrganisationName   string            `json:"organisation_name"`
	CandidateName      string            `json:"candidate_name"`
	RoleTitle          string            `json:"role_title"`
	Seniority          string            `json:"seniority,omitempty"`
	OverallScore       int               `json:"overall_score"`
	AntiCheatRiskLevel RiskLevel         `json:"anti_cheat_risk_level"`
	ScorerType         ScorerType        `json:"scorer_type"`
	HumanOverride      bool              `json:"human_override"`
	OverrideReason     string            `json:"override_reason,omitempty"`
	Dimensions         []ReportDimension `json:"dimensions"`
	NarrativeSummary   string            `json:"narrative_summary"`
	CandidateFeedback  string            `json:"candidate_feedback"`
	Transcript         []ReportSegment   `json:"transcript"`
	ScoredAt           time.Time         `json:"scored_at"`
	GeneratedAt        time.Time         `json:"generated_at"`
}
