package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
)

// AuditRepository is the append-only audit sink
type AuditRepository interface {
	Append(ctx context.Context, event *entities.AuditEvent) error
	ListByEntity(ctx context.Context, entityID uuid.UUID) ([]entities.AuditEvent, error)
}
