package audit

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
	"github.com/johnquangdev/interview-scoring/internal/domain/repositories"
	"github.com/johnquangdev/interview-scoring/internal/usecase/dispatch"
)

// Emitter appends audit events off the caller's path. Emit never blocks and
// never fails; events that cannot be stored end up in the dead-letter sink.
type Emitter struct {
	repo       repositories.AuditRepository
	dispatcher *dispatch.Dispatcher
	logger     *zap.Logger
}

// NewEmitter creates an emitter with its own dispatcher
func NewEmitter(repo repositories.AuditRepository, cfg dispatch.Config, sink dispatch.DeadLetterSink, logger *zap.Logger) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{
		repo:       repo,
		dispatcher: dispatch.New(cfg, sink, logger.Named("audit")),
		logger:     logger,
	}
}

// Emit schedules the event for storage
func (e *Emitter) Emit(ctx context.Context, event *entities.AuditEvent) {
	if event == nil {
		return
	}
	e.dispatcher.Submit(ctx, dispatch.Task{
		ID:          event.ID,
		Name:        "audit." + string(event.Action),
		InterviewID: event.EntityID,
		Payload:     event,
		Run: func(ctx context.Context) error {
			return e.repo.Append(ctx, event)
		},
	})
}

// Close drains pending events
func (e *Emitter) Close(ctx context.Context) error {
	return e.dispatcher.Close(ctx)
}

// Snapshot marshals a before/after value; nil stays nil
func Snapshot(v interface{}) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return nil
	}
	return datatypes.JSON(b)
}
