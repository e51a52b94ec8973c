package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
	"github.com/johnquangdev/interview-scoring/internal/usecase/dispatch"
)

type fakeAck struct {
	acks    int
	nacks   int
	requeue bool
}

func (f *fakeAck) Ack(tag uint64, multiple bool) error { f.acks++; return nil }
func (f *fakeAck) Nack(tag uint64, multiple, requeue bool) error {
	f.nacks++
	f.requeue = requeue
	return nil
}
func (f *fakeAck) Reject(tag uint64, requeue bool) error { return nil }

type published struct {
	queue string
	body  []byte
}

type fakePublisher struct {
	msgs []published
}

func (f *fakePublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.msgs = append(f.msgs, published{queue: key, body: msg.Body})
	return nil
}

func newTestQueue() (*RabbitMQ, *fakePublisher) {
	pub := &fakePublisher{}
	return &RabbitMQ{
		pub:             pub,
		triggerQueue:    "triggers",
		deadLetterQueue: "dead",
		logger:          zap.NewNop(),
	}, pub
}

func delivery(t *testing.T, ack *fakeAck, msg interface{}, redelivered bool) amqp.Delivery {
	t.Helper()
	var body []byte
	switch v := msg.(type) {
	case []byte:
		body = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		body = b
	}
	return amqp.Delivery{Acknowledger: ack, Body: body, Redelivered: redelivered}
}

func TestHandle_Outcomes(t *testing.T) {
	trigger := TriggerMessage{InterviewID: uuid.New(), Context: entities.ScoringContext{RoleTitle: "SRE"}}
	unavailable := fmt.Errorf("%w: %w", entities.ErrAllUpstreamsFailed, entities.Unavailable("groq", 503, nil))

	cases := []struct {
		name        string
		err         error
		redelivered bool
		acks, nacks int
	}{
		{"success", nil, false, 1, 0},
		{"transient first delivery", unavailable, false, 0, 1},
		{"transient redelivery", unavailable, true, 1, 0},
		{"fatal", entities.ErrNoTranscript, false, 1, 0},
		{"locked", fmt.Errorf("%w: busy", entities.ErrScoringInProgress), false, 0, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			q, _ := newTestQueue()
			ack := &fakeAck{}
			var got TriggerMessage
			q.handle(context.Background(), delivery(t, ack, trigger, c.redelivered), func(ctx context.Context, msg TriggerMessage) error {
				got = msg
				return c.err
			})
			if got.InterviewID != trigger.InterviewID || got.Context.RoleTitle != "SRE" {
				t.Fatalf("handler got %+v", got)
			}
			if ack.acks != c.acks || ack.nacks != c.nacks {
				t.Fatalf("acks=%d nacks=%d, want %d/%d", ack.acks, ack.nacks, c.acks, c.nacks)
			}
			if c.nacks > 0 && !ack.requeue {
				t.Fatalf("nack must requeue")
			}
		})
	}
}

func TestHandle_MalformedIsDeadLettered(t *testing.T) {
	q, pub := newTestQueue()
	ack := &fakeAck{}
	called := false
	q.handle(context.Background(), delivery(t, ack, []byte("{not json"), false), func(ctx context.Context, msg TriggerMessage) error {
		called = true
		return nil
	})
	if called {
		t.Fatalf("handler must not run for malformed messages")
	}
	if ack.acks != 1 || len(pub.msgs) != 1 || pub.msgs[0].queue != "dead" {
		t.Fatalf("expected ack and dead letter, got acks=%d msgs=%+v", ack.acks, pub.msgs)
	}
}

func TestDeadLetterSink(t *testing.T) {
	q, pub := newTestQueue()
	task := dispatch.Task{ID: uuid.New(), Name: "report.publish", InterviewID: uuid.New(), Payload: map[string]string{"k": "v"}}

	if err := q.DeadLetter(context.Background(), task, errors.New("bucket missing")); err != nil {
		t.Fatalf("dead letter: %v", err)
	}
	var letter DeadLetter
	if err := json.Unmarshal(pub.msgs[0].body, &letter); err != nil {
		t.Fatal(err)
	}
	if letter.Task != "report.publish" || letter.Error != "bucket missing" || letter.InterviewID != task.InterviewID {
		t.Fatalf("unexpected letter %+v", letter)
	}
}

func TestRedeliverable(t *testing.T) {
	if Redeliverable(entities.InvalidResponse("groq", nil)) {
		t.Fatalf("invalid responses are final")
	}
	if !Redeliverable(context.DeadlineExceeded) {
		t.Fatalf("deadline is transient")
	}
}
