package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
)

// Archive stores assembled reports for the external renderer
type Archive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	URL(ctx context.Context, key string) (string, error)
}

// ErrArchiveDisabled is returned by publishing when no archive is configured
var ErrArchiveDisabled = errors.New("report archive is not configured")

// Service assembles reports and publishes them to the archive
type Service struct {
	assembler *Assembler
	archive   Archive
	logger    *zap.Logger
}

// NewService creates a report service. A nil archive disables publishing.
func NewService(assembler *Assembler, archive Archive, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{assembler: assembler, archive: archive, logger: logger}
}

// Get assembles the report document of an interview
func (s *Service) Get(ctx context.Context, interviewID uuid.UUID) (*entities.ReportDocument, error) {
	return s.assembler.Assemble(ctx, interviewID)
}

// PublishReport stores the report JSON and returns a URL the renderer can fetch
func (s *Service) PublishReport(ctx context.Context, interviewID uuid.UUID) (string, error) {
	if s.archive == nil {
		return "", ErrArchiveDisabled
	}

	doc, err := s.assembler.Assemble(ctx, interviewID)
	if err != nil {
		return "", err
	}
	return s.Publish(ctx, doc)
}

// Publish stores an assembled report and returns its URL
func (s *Service) Publish(ctx context.Context, doc *entities.ReportDocument) (string, error) {
	if s.archive == nil {
		return "", ErrArchiveDisabled
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	key := ObjectKey(doc)
	if err := s.archive.Put(ctx, key, data, "application/json"); err != nil {
		return "", fmt.Errorf("store report: %w", err)
	}

	url, err := s.archive.URL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("report url: %w", err)
	}

	s.logger.Info("📄 Report archived",
		zap.String("interview_id", doc.InterviewID.String()),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)
	return url, nil
}

// ObjectKey is where a report lives in the archive
func ObjectKey(doc *entities.ReportDocument) string {
	return fmt.Sprintf("reports/%s/%s.json", doc.ApplicationID, doc.InterviewID)
}
