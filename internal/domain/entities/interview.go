package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InterviewStatus represents the lifecycle state of an interview
type InterviewStatus string

const (
	InterviewStatusInvited    InterviewStatus = "invited"
	InterviewStatusInProgress InterviewStatus = "in_progress"
	InterviewStatusCompleted  InterviewStatus = "completed"
	InterviewStatusScored     InterviewStatus = "scored"
	InterviewStatusReviewed   InterviewStatus = "reviewed"
	InterviewStatusCancelled  InterviewStatus = "cancelled"
	InterviewStatusExpired    InterviewStatus = "expired"
)

// Scorable reports whether the transcript of an interview in this state is frozen
func (s InterviewStatus) Scorable() bool {
	switch s {
	case InterviewStatusCompleted, InterviewStatusScored, InterviewStatusReviewed:
		return true
	}
	return false
}

// Speaker identifies who produced a transcript segment
type Speaker string

const (
	SpeakerInterviewer Speaker = "interviewer"
	SpeakerCandidate   Speaker = "candidate"
)

// Interview is a single interview session attached to an application
type Interview struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primary_key"`
	ApplicationID uuid.UUID       `json:"application_id" gorm:"type:uuid;not null;index"`
	OrgID         uuid.UUID       `json:"org_id" gorm:"type:uuid;not null;index"`
	Status        InterviewStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	StartedAt     *time.Time      `json:"started_at,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Interview) TableName() string {
	return "interviews"
}

// TranscriptSegment is one speaker turn. Segments are immutable once written.
type TranscriptSegment struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	InterviewID uuid.UUID `json:"interview_id" gorm:"type:uuid;not null;index:idx_segments_interview_start,priority:1"`
	Speaker     Speaker   `json:"speaker" gorm:"type:varchar(20);not null"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	StartTimeMs int64     `json:"start_time_ms" gorm:"not null;index:idx_segments_interview_start,priority:2"`
	Confidence  *float64  `json:"confidence,omitempty"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (TranscriptSegment) TableName() string {
	return "transcript_segments"
}

// NewTranscriptSegment creates a segment for an interview
func NewTranscriptSegment(interviewID uuid.UUID, speaker Speaker, content string, startMs int64) *TranscriptSegment {
	return &TranscriptSegment{
		ID:          uuid.New(),
		InterviewID: interviewID,
		Speaker:     speaker,
		Content:     content,
		StartTimeMs: startMs,
	}
}

// FormatOffset renders a segment offset as MM:SS
func FormatOffset(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
