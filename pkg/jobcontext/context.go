package jobcontext

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type KeyContext string

var (
	keyRunID        KeyContext = "run_id"
	keyRunKind      KeyContext = "run_kind"
	keyInterviewID  KeyContext = "interview_id"
	keyRetryAttempt KeyContext = "retry_attempt"
	keyStartTime    KeyContext = "run_start_time"
)

// RunMetadata holds metadata for a scoring run or an async task
type RunMetadata struct {
	RunID        uuid.UUID
	Kind         string
	InterviewID  uuid.UUID
	RetryAttempt int
	StartTime    time.Time
}

// Begin derives a context carrying run metadata. A positive timeout bounds the run.
func Begin(parent context.Context, runID uuid.UUID, kind string, interviewID uuid.UUID, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := parent, context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	}

	ctx = context.WithValue(ctx, keyRunID, runID)
	ctx = context.WithValue(ctx, keyRunKind, kind)
	ctx = context.WithValue(ctx, keyInterviewID, interviewID)
	ctx = context.WithValue(ctx, keyRetryAttempt, 0)
	ctx = context.WithValue(ctx, keyStartTime, time.Now())

	return ctx, cancel
}

// Detach copies run metadata onto a fresh background context, so async work
// outlives the request that scheduled it.
func Detach(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	md := GetRunMetadata(ctx)
	detached, cancel := Begin(context.Background(), md.RunID, md.Kind, md.InterviewID, timeout)
	return SetRetryAttempt(detached, md.RetryAttempt), cancel
}

// GetRunID extracts the run ID from context
func GetRunID(ctx context.Context) (uuid.UUID, bool) {
	runID, ok := ctx.Value(keyRunID).(uuid.UUID)
	return runID, ok
}

// GetKind extracts the run kind from context
func GetKind(ctx context.Context) (string, bool) {
	kind, ok := ctx.Value(keyRunKind).(string)
	return kind, ok
}

// GetInterviewID extracts the interview a run works on
func GetInterviewID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(keyInterviewID).(uuid.UUID)
	return id, ok
}

// GetRetryAttempt extracts current retry attempt from context
func GetRetryAttempt(ctx context.Context) int {
	attempt, ok := ctx.Value(keyRetryAttempt).(int)
	if !ok {
		return 0
	}
	return attempt
}

// SetRetryAttempt updates retry attempt in context
func SetRetryAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, keyRetryAttempt, attempt)
}

// GetStartTime extracts the run start time from context
func GetStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyStartTime).(time.Time)
	return startTime, ok
}

// GetRunMetadata extracts all run metadata from context
func GetRunMetadata(ctx context.Context) *RunMetadata {
	runID, _ := GetRunID(ctx)
	kind, _ := GetKind(ctx)
	interviewID, _ := GetInterviewID(ctx)
	startTime, _ := GetStartTime(ctx)

	return &RunMetadata{
		RunID:        runID,
		Kind:         kind,
		InterviewID:  interviewID,
		RetryAttempt: GetRetryAttempt(ctx),
		StartTime:    startTime,
	}
}
