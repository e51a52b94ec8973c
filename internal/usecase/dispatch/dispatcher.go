package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-scoring/pkg/jobcontext"
)

// ErrQueueFull is reported to the dead-letter sink when a task cannot be queued
var ErrQueueFull = errors.New("dispatch queue full")

// ErrClosed is reported when a task is submitted after Close
var ErrClosed = errors.New("dispatcher closed")

// Task is a unit of best-effort background work
type Task struct {
	ID          uuid.UUID
	Name        string
	InterviewID uuid.UUID
	// Payload is what a dead-letter sink stores for later reconciliation
	Payload interface{}
	Run     func(ctx context.Context) error
	ctx     context.Context
}

// DeadLetterSink receives tasks that exhausted their retries
type DeadLetterSink interface {
	DeadLetter(ctx context.Context, task Task, cause error) error
}

// Config bounds the queue and the retry policy of every task
type Config struct {
	Workers         int
	QueueSize       int
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	TaskTimeout     time.Duration
}

// DefaultConfig returns sensible defaults for production use
func DefaultConfig() Config {
	return Config{
		Workers:         2,
		QueueSize:       256,
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		TaskTimeout:     30 * time.Second,
	}
}

// Dispatcher runs tasks on a small worker pool with bounded retry.
// Submit never blocks the caller.
type Dispatcher struct {
	cfg    Config
	sink   DeadLetterSink
	logger *zap.Logger

	queue  chan Task
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// New creates a dispatcher and starts its workers
func New(cfg Config, sink DeadLetterSink, logger *zap.Logger) *Dispatcher {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = def.MaxInterval
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = def.TaskTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = NewLogSink(logger)
	}

	d := &Dispatcher{
		cfg:    cfg,
		sink:   sink,
		logger: logger,
		queue:  make(chan Task, cfg.QueueSize),
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	return d
}

// Submit queues a task. It returns false when the task was dead-lettered
// instead because the dispatcher is full or closed.
func (d *Dispatcher) Submit(ctx context.Context, task Task) bool {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	task.ctx = ctx

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.deadLetter(task, ErrClosed)
		return false
	}

	select {
	case d.queue <- task:
		return true
	default:
		d.deadLetter(task, ErrQueueFull)
		return false
	}
}

// Close stops accepting tasks and waits for queued ones to finish or ctx to end
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	for task := range d.queue {
		d.execute(id, task)
	}
}

func (d *Dispatcher) execute(workerID int, task Task) {
	// Tasks outlive the request that scheduled them
	ctx, cancel := jobcontext.Detach(task.ctx, d.cfg.TaskTimeout)
	defer cancel()

	attempt := 0
	op := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = backoff.Permanent(panicError{value: p})
			}
		}()
		attemptCtx := jobcontext.SetRetryAttempt(ctx, attempt)
		attempt++
		return task.Run(attemptCtx)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = d.cfg.InitialInterval
	bo.MaxInterval = d.cfg.MaxInterval
	bo.MaxElapsedTime = 0

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(d.cfg.MaxRetries)), ctx))
	if err == nil {
		d.logger.Debug("task done",
			zap.String("task", task.Name),
			zap.String("task_id", task.ID.String()),
			zap.Int("worker_id", workerID),
			zap.Int("attempts", attempt),
		)
		return
	}

	d.logger.Warn("⚠️ Task failed after retries",
		zap.String("task", task.Name),
		zap.String("task_id", task.ID.String()),
		zap.String("interview_id", task.InterviewID.String()),
		zap.Int("attempts", attempt),
		zap.Error(err),
	)
	d.deadLetter(task, err)
}

func (d *Dispatcher) deadLetter(task Task, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.TaskTimeout)
	defer cancel()

	if err := d.sink.DeadLetter(ctx, task, cause); err != nil {
		d.logger.Error("❌ Dead-letter sink failed",
			zap.String("task", task.Name),
			zap.String("task_id", task.ID.String()),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
	}
}

type panicError struct{ value interface{} }

func (p panicError) Error() string {
	return fmt.Sprintf("task panicked: %v", p.value)
}
