package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
)

// InterviewRepository is the transcript source of the scoring pipeline
type InterviewRepository interface {
	// FindByID retrieves an interview; returns entities.ErrNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Interview, error)

	// GetTranscript returns the interview's segments ordered by start time
	GetTranscript(ctx context.Context, interviewID uuid.UUID) ([]entities.TranscriptSegment, error)

	// AppendSegments adds segments to a transcript that is not yet frozen
	AppendSegments(ctx context.Context, interviewID uuid.UUID, segments []entities.TranscriptSegment) error

	// MarkCompleted freezes the transcript by moving the interview to completed
	MarkCompleted(ctx context.Context, interviewID uuid.UUID) error
}
