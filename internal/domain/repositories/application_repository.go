package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
)

// ApplicationRepository is the application state store
type ApplicationRepository interface {
	// FindByID retrieves an application; returns entities.ErrNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Application, error)

	// UpdateStatus moves an application to a new status
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.ApplicationStatus) error
}
