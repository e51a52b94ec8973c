package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
	"github.com/johnquangdev/interview-scoring/internal/domain/repositories"
)

// scoreRepository implements the ScoreRepository interface
type scoreRepository struct {
	db *gorm.DB
}

// NewScoreRepository creates a new score repository
func NewScoreRepository(db *gorm.DB) repositories.ScoreRepository {
	return &scoreRepository{db: db}
}

// columns rewritten when an automated score replaces an existing row
var automatedScoreColumns = []string{
	"application_id", "org_id", "overall_score", "narrative_summary", "candidate_feedback",
	"anti_cheat_risk_level", "scorer_type", "reviewer_id", "model_version", "prompt_version",
	"rubric_version", "metadata", "updated_at",
}

// Upsert replaces the score row and its full dimension set atomically
func (r *scoreRepository) Upsert(ctx context.Context, score *entities.InterviewScore, dimensions []entities.ScoreDimension) (*entities.InterviewScore, error) {
	if score == nil {
		return nil, errors.New("score cannot be nil")
	}

	var stored entities.InterviewScore
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := lockScore(tx, score.InterviewID)
		if err != nil {
			return err
		}
		if existing != nil && existing.HumanOverride {
			return entities.ErrOverrideProtected
		}

		if score.ID == uuid.Nil {
			score.ID = uuid.New()
		}
		score.UpdatedAt = time.Now().UTC()

		// The conflict branch re-checks the override in case a reviewer
		// inserted the row after lockScore found nothing to lock
		notOverridden := clause.Eq{
			Column: clause.Column{Table: entities.InterviewScore{}.TableName(), Name: "human_override"},
			Value:  false,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "interview_id"}},
			DoUpdates: clause.AssignmentColumns(automatedScoreColumns),
			Where:     clause.Where{Exprs: []clause.Expression{notOverridden}},
		}).Create(score)
		if res.Error != nil {
			return fmt.Errorf("upsert score: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return entities.ErrOverrideProtected
		}

		// The previous dimension set goes away in the same transaction
		if err := tx.Where("interview_id = ?", score.InterviewID).Delete(&entities.ScoreDimension{}).Error; err != nil {
			return fmt.Errorf("delete dimensions: %w", err)
		}
		if len(dimensions) > 0 {
			for i := range dimensions {
				dimensions[i].InterviewID = score.InterviewID
				if dimensions[i].ID == uuid.Nil {
					dimensions[i].ID = uuid.New()
				}
			}
			if err := tx.Create(&dimensions).Error; err != nil {
				return fmt.Errorf("insert dimensions: %w", err)
			}
		}

		if err := tx.Model(&entities.Interview{}).
			Where("id = ? AND status = ?", score.InterviewID, entities.InterviewStatusCompleted).
			Update("status", entities.InterviewStatusScored).Error; err != nil {
			return fmt.Errorf("mark interview scored: %w", err)
		}

		return tx.Where("interview_id = ?", score.InterviewID).First(&stored).Error
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// Get retrieves the score of an interview
func (r *scoreRepository) Get(ctx context.Context, interviewID uuid.UUID) (*entities.InterviewScore, error) {
	var score entities.InterviewScore
	if err := r.db.WithContext(ctx).Where("interview_id = ?", interviewID).First(&score).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("score for interview %s: %w", interviewID, entities.ErrNotFound)
		}
		return nil, err
	}
	return &score, nil
}

// GetDimensions returns the dimensions in aggregation order
func (r *scoreRepository) GetDimensions(ctx context.Context, interviewID uuid.UUID) ([]entities.ScoreDimension, error) {
	var dims []entities.ScoreDimension
	if err := r.db.WithContext(ctx).
		Where("interview_id = ?", interviewID).
		Order("position ASC").
		Find(&dims).Error; err != nil {
		return nil, err
	}
	return dims, nil
}

// SetOverride stores a reviewer's manual score and locks out automated writes
func (r *scoreRepository) SetOverride(ctx context.Context, interview *entities.Interview, override entities.HumanOverride) (*entities.InterviewScore, *entities.InterviewScore, error) {
	if interview == nil {
		return nil, nil, errors.New("interview cannot be nil")
	}

	var before *entities.InterviewScore
	var after entities.InterviewScore
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := lockScore(tx, interview.ID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		reviewer := override.ReviewerID
		reason := override.Reason

		if existing == nil {
			score := entities.NewAutomatedScore(interview)
			score.ScorerType = entities.ScorerTypeHuman
			score.OverallScore = override.OverallScore
			score.ReviewerID = &reviewer
			score.HumanOverride = true
			score.OverrideReason = &reason
			score.OverriddenAt = &now
			if err := tx.Create(score).Error; err != nil {
				return fmt.Errorf("create override: %w", err)
			}
		} else {
			snapshot := *existing
			before = &snapshot
			if err := tx.Model(&entities.InterviewScore{}).
				Where("id = ?", existing.ID).
				Updates(map[string]interface{}{
					"overall_score":   override.OverallScore,
					"scorer_type":     entities.ScorerTypeHuman,
					"reviewer_id":     reviewer,
					"human_override":  true,
					"override_reason": reason,
					"overridden_at":   now,
					"updated_at":      now,
				}).Error; err != nil {
				return fmt.Errorf("apply override: %w", err)
			}
		}

		return tx.Where("interview_id = ?", interview.ID).First(&after).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return before, &after, nil
}

// ClearOverride lifts a human override; the manual score stays until the next automated run
func (r *scoreRepository) ClearOverride(ctx context.Context, interviewID uuid.UUID) (*entities.InterviewScore, *entities.InterviewScore, error) {
	var before entities.InterviewScore
	var after entities.InterviewScore
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := lockScore(tx, interviewID)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("score for interview %s: %w", interviewID, entities.ErrNotFound)
		}
		before = *existing

		if err := tx.Model(&entities.InterviewScore{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"human_override":  false,
				"override_reason": nil,
				"overridden_at":   nil,
				"updated_at":      time.Now().UTC(),
			}).Error; err != nil {
			return fmt.Errorf("clear override: %w", err)
		}

		return tx.Where("id = ?", existing.ID).First(&after).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &before, &after, nil
}

// lockScore reads the score row for update; nil means no row yet.
// Row locks are only issued on Postgres.
func lockScore(tx *gorm.DB, interviewID uuid.UUID) (*entities.InterviewScore, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var existing entities.InterviewScore
	if err := q.Where("interview_id = ?", interviewID).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load score: %w", err)
	}
	return &existing, nil
}
