package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-scoring/errors"
	"github.com/johnquangdev/interview-scoring/internal/infrastructure/external/assemblyai"
)

// WebhookAuthHeader carries the shared secret AssemblyAI sends back
const WebhookAuthHeader = "X-Webhook-Secret"

// TranscriptImporter turns a finished transcript into interview segments
type TranscriptImporter interface {
	Import(ctx context.Context, interviewID uuid.UUID, transcriptID string, opts assemblyai.ImportOptions) (int, error)
}

// AIWebhookHandler handles transcript-completed webhooks from AssemblyAI
type AIWebhookHandler struct {
	importer  TranscriptImporter
	secret    string
	candidate string
	logger    *zap.Logger
}

// NewAIWebhookHandler creates a new handler. candidate is the default speaker
// label of the candidate; requests may override it.
func NewAIWebhookHandler(importer TranscriptImporter, secret, candidate string, logger *zap.Logger) *AIWebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIWebhookHandler{importer: importer, secret: secret, candidate: candidate, logger: logger}
}

type assemblyAIWebhook struct {
	TranscriptID string `json:"transcript_id"`
	Status       string `json:"status"`
}

// HandleAssemblyAIWebhook imports the transcript of an interview once AssemblyAI finished it
// @Summary      AssemblyAI transcript webhook
// @Description  Imports a completed transcript as the interview's segments and freezes it for scoring
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Param        interview_id  query     string  true   "Interview ID (UUID)"
// @Param        candidate     query     string  false  "Speaker label of the candidate"
// @Success      200           {object}  common.SuccessResponse
// @Failure      400           {object}  common.ErrorResponse
// @Failure      401           {object}  common.ErrorResponse
// @Router       /webhooks/assemblyai [post]
func (h *AIWebhookHandler) HandleAssemblyAIWebhook(c echo.Context) error {
	got := c.Request().Header.Get(WebhookAuthHeader)
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
		return HandleError(h.logger, c, errors.ErrInvalidToken())
	}

	interviewID, err := uuid.Parse(c.QueryParam("interview_id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("Invalid interview_id"))
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("Invalid payload"))
	}
	var payload assemblyAIWebhook
	if err := json.Unmarshal(body, &payload); err != nil || payload.TranscriptID == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("Invalid payload"))
	}

	// Errored transcripts are acknowledged so AssemblyAI stops retrying
	if !strings.EqualFold(payload.Status, "completed") {
		h.logger.Warn("⚠️ Transcript not completed",
			zap.String("interview_id", interviewID.String()),
			zap.String("transcript_id", payload.TranscriptID),
			zap.String("status", payload.Status),
		)
		return HandleSuccess(h.logger, c, map[string]interface{}{"status": "ignored"})
	}

	candidate := c.QueryParam("candidate")
	if candidate == "" {
		candidate = h.candidate
	}

	n, err := h.importer.Import(c.Request().Context(), interviewID, payload.TranscriptID, assemblyai.ImportOptions{
		CandidateSpeaker: candidate,
		Complete:         true,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{"status": "imported", "segments": n})
}
