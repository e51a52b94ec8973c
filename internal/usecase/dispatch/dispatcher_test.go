package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/johnquangdev/interview-scoring/pkg/jobcontext"
)

type recordingSink struct {
	mu     sync.Mutex
	tasks  []Task
	causes []error
}

func (s *recordingSink) DeadLetter(_ context.Context, task Task, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
	s.causes = append(s.causes, cause)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func testConfig() Config {
	return Config{
		Workers:         1,
		QueueSize:       4,
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		TaskTimeout:     time.Second,
	}
}

func TestDispatcher_RetriesUntilSuccess(t *testing.T) {
	sink := &recordingSink{}
	d := New(testConfig(), sink, nil)

	var calls int32
	var lastAttempt int32
	d.Submit(context.Background(), Task{
		Name: "flaky",
		Run: func(ctx context.Context) error {
			atomic.StoreInt32(&lastAttempt, int32(jobcontext.GetRetryAttempt(ctx)))
			if atomic.AddInt32(&calls, 1) < 3 {
				return errors.New("temporary")
			}
			return nil
		},
	})

	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 calls, got %d", got)
	}
	if got := atomic.LoadInt32(&lastAttempt); got != 2 {
		t.Fatalf("expected last attempt index 2, got %d", got)
	}
	if sink.count() != 0 {
		t.Fatalf("expected no dead letters, got %d", sink.count())
	}
}

func TestDispatcher_DeadLettersExhaustedTask(t *testing.T) {
	sink := &recordingSink{}
	d := New(testConfig(), sink, nil)

	boom := errors.New("boom")
	var calls int32
	d.Submit(context.Background(), Task{
		Name:    "always-fails",
		Payload: map[string]string{"k": "v"},
		Run: func(context.Context) error {
			atomic.AddInt32(&calls, 1)
			return boom
		},
	})
	_ = d.Close(context.Background())

	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 1 attempt + 2 retries, got %d", got)
	}
	if sink.count() != 1 || !errors.Is(sink.causes[0], boom) {
		t.Fatalf("expected one dead letter caused by boom, got %v", sink.causes)
	}
	if sink.tasks[0].Name != "always-fails" {
		t.Fatalf("unexpected task %q", sink.tasks[0].Name)
	}
}

func TestDispatcher_TaskOutlivesRequestContext(t *testing.T) {
	d := New(testConfig(), &recordingSink{}, nil)

	reqCtx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	release := make(chan struct{})
	var ctxErr error
	d.Submit(reqCtx, Task{
		Name: "slow",
		Run: func(ctx context.Context) error {
			close(started)
			<-release
			ctxErr = ctx.Err()
			return nil
		},
	})

	<-started
	cancel()
	close(release)
	_ = d.Close(context.Background())

	if ctxErr != nil {
		t.Fatalf("task context was cancelled with the request: %v", ctxErr)
	}
}

func TestDispatcher_SubmitAfterClose(t *testing.T) {
	sink := &recordingSink{}
	d := New(testConfig(), sink, nil)
	_ = d.Close(context.Background())

	if d.Submit(context.Background(), Task{Name: "late", Run: func(context.Context) error { return nil }}) {
		t.Fatal("expected submit after close to be rejected")
	}
	if sink.count() != 1 || !errors.Is(sink.causes[0], ErrClosed) {
		t.Fatalf("expected ErrClosed dead letter, got %v", sink.causes)
	}
}

func TestDispatcher_RecoversPanics(t *testing.T) {
	sink := &recordingSink{}
	d := New(testConfig(), sink, nil)

	var calls int32
	d.Submit(context.Background(), Task{
		Name: "panics",
		Run: func(context.Context) error {
			atomic.AddInt32(&calls, 1)
			panic("bad state")
		},
	})
	_ = d.Close(context.Background())

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("panics must not be retried, got %d calls", got)
	}
	if sink.count() != 1 {
		t.Fatalf("expected panic to be dead-lettered")
	}
}
