package handler

import (
	"context"
	stdErrors "errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-scoring/errors"
	"github.com/johnquangdev/interview-scoring/internal/adapter/dto/score"
	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
	"github.com/johnquangdev/interview-scoring/internal/usecase/report"
)

// Reporter assembles and publishes interview reports
type Reporter interface {
	Get(ctx context.Context, interviewID uuid.UUID) (*entities.ReportDocument, error)
	Publish(ctx context.Context, doc *entities.ReportDocument) (string, error)
}

// Report handles the interview report endpoints
type Report struct {
	reports Reporter
	logger  *zap.Logger
}

// NewReport creates a new report handler
func NewReport(reports Reporter, logger *zap.Logger) *Report {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Report{reports: reports, logger: logger}
}

// GetReport returns the renderable report of a scored interview
// @Summary      Get interview report
// @Description  Assembles the candidate report from the canonical score, its dimensions and the transcript
// @Tags         Reports
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Interview ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=entities.ReportDocument}
// @Failure      404  {object}  common.ErrorResponse  "Interview not found"
// @Failure      409  {object}  common.ErrorResponse  "Interview has not been scored"
// @Router       /interviews/{id}/report [get]
func (h *Report) GetReport(c echo.Context) error {
	doc, err := h.load(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, doc)
}

// PublishReport stores the report in the archive and returns a download URL
// @Summary      Publish interview report
// @Description  Stores the assembled report JSON in object storage for the external renderer
// @Tags         Reports
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Interview ID (UUID)"
// @Success      200  {object}  common.SuccessResponse{data=score.ReportLinkResponse}
// @Failure      404  {object}  common.ErrorResponse  "Interview not found"
// @Failure      409  {object}  common.ErrorResponse  "Interview has not been scored"
// @Failure      500  {object}  common.ErrorResponse  "Storage failure"
// @Router       /interviews/{id}/report/publish [post]
func (h *Report) PublishReport(c echo.Context) error {
	doc, err := h.load(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	url, err := h.reports.Publish(c.Request().Context(), doc)
	if err != nil {
		if stdErrors.Is(err, report.ErrArchiveDisabled) {
			e := errors.ErrStorageFailed("publish report", err)
			e.HTTPCode = http.StatusServiceUnavailable
			return HandleError(h.logger, c, e)
		}
		return HandleError(h.logger, c, errors.ErrStorageFailed("publish report", err))
	}

	return HandleSuccess(h.logger, c, score.ReportLinkResponse{InterviewID: doc.InterviewID, URL: url})
}

func (h *Report) load(c echo.Context) (*entities.ReportDocument, error) {
	interviewID, err := pathUUID(c, "id")
	if err != nil {
		return nil, err
	}
	claims, err := claimsFrom(c)
	if err != nil {
		return nil, err
	}

	doc, err := h.reports.Get(c.Request().Context(), interviewID)
	if err != nil {
		return nil, err
	}
	if !sameOrg(claims, doc.OrgID) {
		return nil, errors.ErrNotFound("Report")
	}
	return doc, nil
}
