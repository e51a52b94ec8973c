package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
)

// ScoreRepository persists the canonical score of an interview, keyed by interview ID
type ScoreRepository interface {
	// Upsert replaces the score and its full dimension set in one transaction.
	// Returns entities.ErrOverrideProtected if the stored score carries a human override.
	Upsert(ctx context.Context, score *entities.InterviewScore, dimensions []entities.ScoreDimension) (*entities.InterviewScore, error)

	// Get retrieves the score; returns entities.ErrNotFound when absent
	Get(ctx context.Context, interviewID uuid.UUID) (*entities.InterviewScore, error)

	// GetDimensions returns dimensions in the order they were aggregated
	GetDimensions(ctx context.Context, interviewID uuid.UUID) ([]entities.ScoreDimension, error)

	// SetOverride records a human override and returns the score before and after
	SetOverride(ctx context.Context, interview *entities.Interview, override entities.HumanOverride) (before, after *entities.InterviewScore, err error)

	// ClearOverride lifts a human override so automated scoring may write again
	ClearOverride(ctx context.Context, interviewID uuid.UUID) (before, after *entities.InterviewScore, err error)
}
