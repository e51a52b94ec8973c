package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
	"github.com/johnquangdev/interview-scoring/internal/domain/repositories"
	"github.com/johnquangdev/interview-scoring/internal/usecase/audit"
	"github.com/johnquangdev/interview-scoring/internal/usecase/scoring"
	"github.com/johnquangdev/interview-scoring/pkg/jwt"
)

// Actor is the authenticated caller of a review operation
type Actor struct {
	UserID uuid.UUID
	OrgID  string
	Role   string
}

func (a Actor) String() string {
	return "user:" + a.UserID.String()
}

const (
	lockWait = 15 * time.Second
	lockTTL  = 30 * time.Second
)

// Service lets reviewers take over or hand back an interview's score
type Service struct {
	interviews repositories.InterviewRepository
	scores     repositories.ScoreRepository
	locker     scoring.Locker
	audit      scoring.AuditEmitter
	logger     *zap.Logger
}

// NewService creates a review service. locker must be the one the
// orchestrator uses so overrides never interleave with a scoring run.
func NewService(interviews repositories.InterviewRepository, scores repositories.ScoreRepository, locker scoring.Locker, emitter scoring.AuditEmitter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{interviews: interviews, scores: scores, locker: locker, audit: emitter, logger: logger}
}

// Override stores a manual overall score. Automated runs cannot replace it
// until the override is cleared.
func (s *Service) Override(ctx context.Context, actor Actor, interviewID uuid.UUID, overall int, reason string) (*entities.InterviewScore, error) {
	reason = strings.TrimSpace(reason)
	if overall < 0 || overall > 100 {
		return nil, fmt.Errorf("%w: overall score %d outside 0-100", entities.ErrInvalidOverride, overall)
	}
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", entities.ErrInvalidOverride)
	}

	interview, err := s.authorize(ctx, actor, interviewID)
	if err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	defer release()

	before, after, err := s.scores.SetOverride(ctx, interview, entities.HumanOverride{
		ReviewerID:   actor.UserID,
		OverallScore: overall,
		Reason:       reason,
	})
	if err != nil {
		return nil, fmt.Errorf("set override: %w", err)
	}

	s.logger.Info("✍️ Score overridden",
		zap.String("interview_id", interviewID.String()),
		zap.String("reviewer_id", actor.UserID.String()),
		zap.Int("overall_score", overall),
	)
	s.emit(ctx, actor, entities.AuditActionScoreOverride, interview, before, after)
	return after, nil
}

// ClearOverride hands the interview back to automated scoring
func (s *Service) ClearOverride(ctx context.Context, actor Actor, interviewID uuid.UUID) (*entities.InterviewScore, error) {
	interview, err := s.authorize(ctx, actor, interviewID)
	if err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	defer release()

	before, after, err := s.scores.ClearOverride(ctx, interviewID)
	if err != nil {
		return nil, fmt.Errorf("clear override: %w", err)
	}

	s.logger.Info("🔓 Score override cleared",
		zap.String("interview_id", interviewID.String()),
		zap.String("reviewer_id", actor.UserID.String()),
	)
	s.emit(ctx, actor, entities.AuditActionScoreOverrideCleared, interview, before, after)
	return after, nil
}

// lock waits a bounded time for a running scoring pass of the interview to finish
func (s *Service) lock(ctx context.Context, interviewID uuid.UUID) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	waitCtx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()
	release, err := s.locker.Acquire(waitCtx, scoring.LockKey(interviewID), lockTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrScoringInProgress, err)
	}
	return release, nil
}

func (s *Service) authorize(ctx context.Context, actor Actor, interviewID uuid.UUID) (*entities.Interview, error) {
	if actor.Role != jwt.RoleReviewer && actor.Role != jwt.RoleAdmin {
		return nil, fmt.Errorf("%w: role %q may not review scores", entities.ErrForbidden, actor.Role)
	}

	interview, err := s.interviews.FindByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if actor.OrgID != "" && interview.OrgID.String() != actor.OrgID {
		return nil, fmt.Errorf("%w: interview belongs to another organisation", entities.ErrForbidden)
	}
	return interview, nil
}

func (s *Service) emit(ctx context.Context, actor Actor, action entities.AuditAction, interview *entities.Interview, before, after *entities.InterviewScore) {
	if s.audit == nil {
		return
	}
	event := entities.NewAuditEvent(actor.String(), action, entities.AuditEntityInterviewScore, interview.ID, interview.OrgID)
	event.Before = audit.Snapshot(before)
	event.After = audit.Snapshot(after)
	s.audit.Emit(ctx, event)
}
