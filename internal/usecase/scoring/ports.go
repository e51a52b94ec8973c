package scoring

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
	"github.com/johnquangdev/interview-scoring/internal/usecase/dispatch"
)

// ScoringClient is a typed caller to one external scoring backend.
// Score fails with an error wrapping entities.ErrUpstreamUnavailable on
// timeouts and non-2xx responses, and entities.ErrInvalidUpstreamResponse on
// malformed payloads.
type ScoringClient interface {
	Name() string
	Score(ctx context.Context, transcript []entities.TranscriptSegment, sc entities.ScoringContext) (*entities.RawPrediction, error)
	Health(ctx context.Context) error
}

// Locker serializes scoring runs of the same interview
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// Availability reports whether a backend may take new runs
type Availability interface {
	Available(name string) bool
}

// AuditEmitter records audit events without blocking
type AuditEmitter interface {
	Emit(ctx context.Context, event *entities.AuditEvent)
}

// TaskRunner runs best-effort background work
type TaskRunner interface {
	Submit(ctx context.Context, task dispatch.Task) bool
}

// ReportPublisher makes a scored interview's report available downstream
type ReportPublisher interface {
	PublishReport(ctx context.Context, interviewID uuid.UUID) (string, error)
}
