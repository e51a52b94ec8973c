package dispatch

import (
	"context"

	"go.uber.org/zap"
)

// LogSink dead-letters tasks into the log
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink that only logs
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// DeadLetter logs the task with its payload
func (s *LogSink) DeadLetter(_ context.Context, task Task, cause error) error {
	s.logger.Error("💀 Task dead-lettered",
		zap.String("task", task.Name),
		zap.String("task_id", task.ID.String()),
		zap.String("interview_id", task.InterviewID.String()),
		zap.Any("payload", task.Payload),
		zap.Error(cause),
	)
	return nil
}

// MultiSink fans a dead letter out to several sinks; the first error wins
type MultiSink []DeadLetterSink

// DeadLetter forwards to every sink
func (m MultiSink) DeadLetter(ctx context.Context, task Task, cause error) error {
	var first error
	for _, s := range m {
		if err := s.DeadLetter(ctx, task, cause); err != nil && first == nil {
			first = err
		}
	}
	return first
}
