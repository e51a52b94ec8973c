package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
	"github.com/johnquangdev/interview-scoring/internal/usecase/dispatch"
	"github.com/johnquangdev/interview-scoring/pkg/config"
)

// TriggerMessage asks for an interview to be scored
type TriggerMessage struct {
	InterviewID uuid.UUID               `json:"interview_id"`
	OrgID       string                  `json:"org_id"`
	Context     entities.ScoringContext `json:"context"`
	Backends    []string                `json:"backends,omitempty"`
	Actor       string                  `json:"actor,omitempty"`
}

// DeadLetter is what lands on the dead-letter queue
type DeadLetter struct {
	TaskID      uuid.UUID   `json:"task_id"`
	Task        string      `json:"task"`
	InterviewID uuid.UUID   `json:"interview_id"`
	Payload     interface{} `json:"payload,omitempty"`
	Error       string      `json:"error"`
	FailedAt    time.Time   `json:"failed_at"`
}

// TriggerHandler runs one scoring trigger
type TriggerHandler func(ctx context.Context, msg TriggerMessage) error

// publisher is the part of *amqp.Channel used for publishing
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitMQ consumes scoring triggers and publishes dead letters
type RabbitMQ struct {
	conn            *amqp.Connection
	channel         *amqp.Channel
	pub             publisher
	triggerQueue    string
	deadLetterQueue string
	logger          *zap.Logger
}

// NewRabbitMQ connects and declares the trigger and dead-letter queues
func NewRabbitMQ(cfg *config.RabbitMQConfig, logger *zap.Logger) (*RabbitMQ, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	for _, name := range []string{cfg.TriggerQueue, cfg.DeadLetterQueue} {
		if _, err := ch.QueueDeclare(
			name,  // queue name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // args
		); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to declare queue %s: %w", name, err)
		}
	}

	if cfg.Prefetch > 0 {
		if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set prefetch: %w", err)
		}
	}

	logger.Info("✅ Connected to RabbitMQ",
		zap.String("trigger_queue", cfg.TriggerQueue),
		zap.String("dead_letter_queue", cfg.DeadLetterQueue),
	)

	return &RabbitMQ{
		conn:            conn,
		channel:         ch,
		pub:             ch,
		triggerQueue:    cfg.TriggerQueue,
		deadLetterQueue: cfg.DeadLetterQueue,
		logger:          logger,
	}, nil
}

// PublishTrigger queues a scoring trigger
func (r *RabbitMQ) PublishTrigger(ctx context.Context, msg TriggerMessage) error {
	return r.publishJSON(ctx, r.triggerQueue, msg)
}

// DeadLetter implements dispatch.DeadLetterSink
func (r *RabbitMQ) DeadLetter(ctx context.Context, task dispatch.Task, cause error) error {
	letter := DeadLetter{
		TaskID:      task.ID,
		Task:        task.Name,
		InterviewID: task.InterviewID,
		Payload:     task.Payload,
		FailedAt:    time.Now().UTC(),
	}
	if cause != nil {
		letter.Error = cause.Error()
	}
	return r.publishJSON(ctx, r.deadLetterQueue, letter)
}

func (r *RabbitMQ) publishJSON(ctx context.Context, queue string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.pub.PublishWithContext(
		ctx,
		"",    // exchange
		queue, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// Consume runs handler for every trigger until ctx ends or the channel closes
func (r *RabbitMQ) Consume(ctx context.Context, handler TriggerHandler) error {
	msgs, err := r.channel.ConsumeWithContext(
		ctx,
		r.triggerQueue,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("trigger channel closed")
			}
			r.handle(ctx, d, handler)
		}
	}
}

// handle acks fatal outcomes and requeues a retryable failure once
func (r *RabbitMQ) handle(ctx context.Context, d amqp.Delivery, handler TriggerHandler) {
	var msg TriggerMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.InterviewID == uuid.Nil {
		r.logger.Warn("⚠️ Dropping malformed scoring trigger", zap.Error(err))
		if err := r.publishJSON(ctx, r.deadLetterQueue, DeadLetter{
			Task:     "scoring.trigger",
			Payload:  string(d.Body),
			Error:    "malformed trigger",
			FailedAt: time.Now().UTC(),
		}); err != nil {
			r.logger.Error("❌ Failed to dead-letter trigger", zap.Error(err))
		}
		_ = d.Ack(false)
		return
	}

	log := r.logger.With(zap.String("interview_id", msg.InterviewID.String()))
	err := handler(ctx, msg)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case Redeliverable(err) && !d.Redelivered:
		log.Warn("🔁 Scoring trigger failed, requeueing once", zap.Error(err))
		_ = d.Nack(false, true)
	default:
		log.Error("❌ Scoring trigger failed", zap.Bool("redelivered", d.Redelivered), zap.Error(err))
		_ = d.Ack(false)
	}
}

// Redeliverable reports whether a trigger failure may succeed later
func Redeliverable(err error) bool {
	return entities.IsRetryable(err) ||
		errors.Is(err, entities.ErrScoringInProgress) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Close closes the channel and the connection
func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		_ = r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
