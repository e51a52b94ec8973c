package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditAction enumerates what the pipeline records
type AuditAction string

const (
	AuditActionInterviewCompleted   AuditAction = "interview_completed"
	AuditActionScoreOverride        AuditAction = "score_override"
	AuditActionScoreOverrideCleared AuditAction = "score_override_cleared"
	AuditActionScoringFailed        AuditAction = "scoring_failed"
)

// Audit entity types
const (
	AuditEntityInterviewScore = "interview_score"
	AuditEntityInterview      = "interview"
)

// ActorSystemScoring is the actor recorded for automated scoring
const ActorSystemScoring = "system:scoring"

// AuditEvent is an append-only record. The pipeline never updates or deletes it.
type AuditEvent struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	Actor      string         `json:"actor" gorm:"type:varchar(100);not null"`
	Action     AuditAction    `json:"action" gorm:"type:varchar(50);not null;index"`
	EntityType string         `json:"entity_type" gorm:"type:varchar(50);not null"`
	EntityID   uuid.UUID      `json:"entity_id" gorm:"type:uuid;not null;index"`
	OrgID      uuid.UUID      `json:"org_id" gorm:"type:uuid;not null;index"`
	Before     datatypes.JSON `json:"before,omitempty" gorm:"type:jsonb"`
	After      datatypes.JSON `json:"after,omitempty" gorm:"type:jsonb"`
	CreatedAt  time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (AuditEvent) TableName() string {
	return "audit_events"
}

// NewAuditEvent creates an audit event; snapshots are attached by the caller
func NewAuditEvent(actor string, action AuditAction, entityType string, entityID, orgID uuid.UUID) *AuditEvent {
	return &AuditEvent{
		ID:         uuid.New(),
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OrgID:      orgID,
		CreatedAt:  time.Now().UTC(),
	}
}
