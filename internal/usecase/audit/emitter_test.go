package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
	"github.com/johnquangdev/interview-scoring/internal/usecase/dispatch"
)

type memoryAuditRepo struct {
	mu       sync.Mutex
	events   []entities.AuditEvent
	failures int
}

func (r *memoryAuditRepo) Append(_ context.Context, event *entities.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures > 0 {
		r.failures--
		return errors.New("database unavailable")
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *memoryAuditRepo) ListByEntity(_ context.Context, entityID uuid.UUID) ([]entities.AuditEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.AuditEvent
	for _, e := range r.events {
		if e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

type countingSink struct {
	mu    sync.Mutex
	tasks []dispatch.Task
}

func (s *countingSink) DeadLetter(_ context.Context, task dispatch.Task, _ error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
	return nil
}

func fastConfig(retries int) dispatch.Config {
	return dispatch.Config{
		Workers:         1,
		QueueSize:       8,
		MaxRetries:      retries,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		TaskTimeout:     time.Second,
	}
}

func TestEmitter_StoresEventWithSnapshots(t *testing.T) {
	repo := &memoryAuditRepo{failures: 1}
	emitter := NewEmitter(repo, fastConfig(2), &countingSink{}, nil)

	scoreID := uuid.New()
	event := entities.NewAuditEvent("reviewer:1", entities.AuditActionScoreOverride, entities.AuditEntityInterviewScore, scoreID, uuid.New())
	event.Before = Snapshot(map[string]int{"overall_score": 50})
	event.After = Snapshot(map[string]int{"overall_score": 90})
	emitter.Emit(context.Background(), event)

	if err := emitter.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	events, _ := repo.ListByEntity(context.Background(), scoreID)
	if len(events) != 1 {
		t.Fatalf("expected one stored event, got %d", len(events))
	}
	if string(events[0].After) != `{"overall_score":90}` {
		t.Fatalf("unexpected after snapshot %s", events[0].After)
	}
}

func TestEmitter_DeadLettersWhenStoreKeepsFailing(t *testing.T) {
	repo := &memoryAuditRepo{failures: 10}
	sink := &countingSink{}
	emitter := NewEmitter(repo, fastConfig(1), sink, nil)

	emitter.Emit(context.Background(), entities.NewAuditEvent(entities.ActorSystemScoring, entities.AuditActionInterviewCompleted, entities.AuditEntityInterviewScore, uuid.New(), uuid.New()))
	_ = emitter.Close(context.Background())

	if len(sink.tasks) != 1 {
		t.Fatalf("expected the event to be dead-lettered, got %d", len(sink.tasks))
	}
	if sink.tasks[0].Name != "audit.interview_completed" {
		t.Fatalf("unexpected task name %q", sink.tasks[0].Name)
	}
}

func TestSnapshot(t *testing.T) {
	var missing *entities.InterviewScore
	if Snapshot(missing) != nil {
		t.Fatal("typed nil should produce no snapshot")
	}
	if Snapshot(nil) != nil {
		t.Fatal("nil should produce no snapshot")
	}
}
