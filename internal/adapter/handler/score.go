package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-scoring/errors"
	"github.com/johnquangdev/interview-scoring/internal/adapter/dto/score"
	"github.com/johnquangdev/interview-scoring/internal/adapter/presenter"
	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
	"github.com/johnquangdev/interview-scoring/internal/usecase/review"
	"github.com/johnquangdev/interview-scoring/internal/usecase/scoring"
	"github.com/johnquangdev/interview-scoring/pkg/jwt"
)

// Scorer runs a scoring pipeline for one interview
type Scorer interface {
	Score(ctx context.Context, req scoring.ScoreRequest) (*scoring.RunResult, error)
}

// ScoreReader reads persisted scores
type ScoreReader interface {
	Get(ctx context.Context, interviewID uuid.UUID) (*entities.InterviewScore, error)
	GetDimensions(ctx context.Context, interviewID uuid.UUID) ([]entities.ScoreDimension, error)
}

// Reviewer applies and lifts human overrides
type Reviewer interface {
	Override(ctx context.Context, actor review.Actor, interviewID uuid.UUID, overall int, reason string) (*entities.InterviewScore, error)
	ClearOverride(ctx context.Context, actor review.Actor, interviewID uuid.UUID) (*entities.InterviewScore, error)
}

// Score handles the interview scoring endpoints
type Score struct {
	scorer   Scorer
	scores   ScoreReader
	reviewer Reviewer
	logger   *zap.Logger
}

// NewScore creates a new score handler
func NewScore(scorer Scorer, scores ScoreReader, reviewer Reviewer, logger *zap.Logger) *Score {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Score{scorer: scorer, scores: scores, reviewer: reviewer, logger: logger}
}

// ScoreInterview runs the scoring pipeline for an interview
// @Summary      Score interview
// @Description  Runs every selected scoring backend over the interview transcript, aggregates the predictions and persists the canonical score
// @Tags         Scores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Interview ID (UUID)"
// @Param        request  body      score.ScoreInterviewRequest  true  "Scoring context"
// @Success      200      {object}  common.SuccessResponse{data=score.RunResponse}
// @Failure      400      {object}  common.ErrorResponse  "Invalid request or rubric"
// @Failure      401      {object}  common.ErrorResponse  "User not authenticated"
// @Failure      409      {object}  common.ErrorResponse  "Human override in place or run in progress"
// @Failure      422      {object}  common.ErrorResponse  "Interview has no transcript or cannot be scored"
// @Failure      502      {object}  common.ErrorResponse  "Scoring backends failed"
// @Router       /interviews/{id}/score [post]
func (h *Score) ScoreInterview(c echo.Context) error {
	interviewID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	claims, err := claimsFrom(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req score.ScoreInterviewRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		e := errors.ErrInvalidArgument("Invalid request body")
		e.Raw = err
		return HandleError(h.logger, c, e)
	}

	result, err := h.scorer.Score(c.Request().Context(), scoring.ScoreRequest{
		InterviewID: interviewID,
		Context:     presenter.ToScoringContext(&req, claims.OrgID),
		Backends:    req.Backends,
		Actor:       actorFrom(claims).String(),
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToRunResponse(result))
}

// GetScore returns the canonical score of an interview
// @Summary      Get interview score
// @Description  Returns the persisted overall score and its dimensions
// @Tags         Scores
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Interview ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=score.ScoreResponse}
// @Failure      401  {object}  common.ErrorResponse  "User not authenticated"
// @Failure      404  {object}  common.ErrorResponse  "Score not found"
// @Router       /interviews/{id}/score [get]
func (h *Score) GetScore(c echo.Context) error {
	interviewID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	claims, err := claimsFrom(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	ctx := c.Request().Context()
	s, err := h.scores.Get(ctx, interviewID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	// Other tenants get the same answer as a missing score
	if !sameOrg(claims, s.OrgID) {
		return HandleError(h.logger, c, errors.ErrNotFound("Score"))
	}

	dims, err := h.scores.GetDimensions(ctx, interviewID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToScoreResponse(s, dims))
}

// Override replaces the overall score with a reviewer's score
// @Summary      Override interview score
// @Description  Stores a manual overall score; automated runs cannot replace it until the override is cleared
// @Tags         Reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "Interview ID (UUID)"
// @Param        request  body      score.OverrideRequest  true  "Manual score"
// @Success      200      {object}  common.SuccessResponse{data=score.ScoreResponse}
// @Failure      400      {object}  common.ErrorResponse  "Invalid request"
// @Failure      403      {object}  common.ErrorResponse  "Reviewer role required"
// @Failure      404      {object}  common.ErrorResponse  "Interview not found"
// @Router       /interviews/{id}/score/override [put]
func (h *Score) Override(c echo.Context) error {
	interviewID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	claims, err := claimsFrom(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req score.OverrideRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		e := errors.ErrInvalidArgument("Invalid request body")
		e.Raw = err
		return HandleError(h.logger, c, e)
	}

	s, err := h.reviewer.Override(c.Request().Context(), actorFrom(claims), interviewID, *req.OverallScore, req.Reason)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return h.respondScore(c, s)
}

// ClearOverride lifts a human override
// @Summary      Clear score override
// @Description  Lifts the human override so the next automated run may replace the score
// @Tags         Reviews
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Interview ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=score.ScoreResponse}
// @Failure      403  {object}  common.ErrorResponse  "Reviewer role required"
// @Failure      404  {object}  common.ErrorResponse  "Score not found"
// @Router       /interviews/{id}/score/override [delete]
func (h *Score) ClearOverride(c echo.Context) error {
	interviewID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	claims, err := claimsFrom(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	s, err := h.reviewer.ClearOverride(c.Request().Context(), actorFrom(claims), interviewID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return h.respondScore(c, s)
}

func (h *Score) respondScore(c echo.Context, s *entities.InterviewScore) error {
	dims, err := h.scores.GetDimensions(c.Request().Context(), s.InterviewID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToScoreResponse(s, dims))
}

func actorFrom(claims *jwt.Claims) review.Actor {
	return review.Actor{UserID: claims.UserID, OrgID: claims.OrgID, Role: claims.Role}
}
