package jobcontext

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBeginCarriesMetadata(t *testing.T) {
	runID, interviewID := uuid.New(), uuid.New()
	ctx, cancel := Begin(context.Background(), runID, "score", interviewID, time.Minute)
	defer cancel()

	md := GetRunMetadata(ctx)
	if md.RunID != runID || md.InterviewID != interviewID || md.Kind != "score" {
		t.Fatalf("unexpected metadata: %+v", md)
	}
	if _, ok := ctx.Deadline(); !ok {
		t.Fatal("expected a deadline")
	}
}

func TestDetachSurvivesParentCancel(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := Begin(parent, uuid.New(), "score", uuid.New(), 0)
	defer cancel()
	ctx = SetRetryAttempt(ctx, 2)

	detached, cancelDetached := Detach(ctx, time.Minute)
	defer cancelDetached()
	cancelParent()

	if detached.Err() != nil {
		t.Fatalf("detached context was cancelled: %v", detached.Err())
	}
	if GetRetryAttempt(detached) != 2 {
		t.Fatalf("expected attempt 2, got %d", GetRetryAttempt(detached))
	}
	if id, _ := GetRunID(detached); id != GetRunMetadata(ctx).RunID {
		t.Fatal("run id not carried over")
	}
}
