package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
	"github.com/johnquangdev/interview-scoring/internal/domain/repositories"
)

// interviewRepository implements the InterviewRepository interface
type interviewRepository struct {
	db *gorm.DB
}

// NewInterviewRepository creates a new interview repository
func NewInterviewRepository(db *gorm.DB) repositories.InterviewRepository {
	return &interviewRepository{db: db}
}

// FindByID retrieves an interview by ID
func (r *interviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Interview, error) {
	var interview entities.Interview
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&interview).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("interview %s: %w", id, entities.ErrNotFound)
		}
		return nil, err
	}
	return &interview, nil
}

// GetTranscript retrieves all segments of an interview in speaking order
func (r *interviewRepository) GetTranscript(ctx context.Context, interviewID uuid.UUID) ([]entities.TranscriptSegment, error) {
	var segments []entities.TranscriptSegment
	err := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Order("start_time_ms ASC").
		Order("created_at ASC").
		Find(&segments).Error
	if err != nil {
		return nil, err
	}
	return segments, nil
}

// AppendSegments stores new transcript segments
func (r *interviewRepository) AppendSegments(ctx context.Context, interviewID uuid.UUID, segments []entities.TranscriptSegment) error {
	if len(segments) == 0 {
		return nil
	}

	interview, err := r.FindByID(ctx, interviewID)
	if err != nil {
		return err
	}
	if interview.Status.Scorable() {
		return fmt.Errorf("interview %s is %s: transcript is frozen", interviewID, interview.Status)
	}

	for i := range segments {
		segments[i].InterviewID = interviewID
		if segments[i].ID == uuid.Nil {
			segments[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).CreateInBatches(&segments, 200).Error
}

// MarkCompleted moves an interview to completed
func (r *interviewRepository) MarkCompleted(ctx context.Context, interviewID uuid.UUID) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&entities.Interview{}).
		Where("id = ? AND status IN ?", interviewID, []entities.InterviewStatus{
			entities.InterviewStatusInvited,
			entities.InterviewStatusInProgress,
		}).
		Updates(map[string]interface{}{
			"status":       entities.InterviewStatusCompleted,
			"completed_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, interviewID); err != nil {
			return err
		}
	}
	return nil
}
