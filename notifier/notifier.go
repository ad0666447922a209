package notifier

import (
	"context"

	"github.com/Shopify/sarama"
	jsoniter "github.com/json-iterator/go"
)

// TopicName is where lifecycle notifications are published. The delivery
// workers own everything past this topic.
const TopicName = "topic.requests.notifications"

// Notifier publishes lifecycle events. Delivery is fire-and-forget from the
// caller's point of view: callers log returned errors and move on, a failed
// notification never fails the transition that triggered it.
type Notifier interface {
	RequestCreated(ctx context.Context, e RequestCreatedEvent) error
	RequestApproved(ctx context.Context, e RequestApprovedEvent) error
	RequestCompleted(ctx context.Context, e RequestCompletedEvent) error
	NoteAdded(ctx context.Context, e NoteAddedEvent) error
	InterestMarked(ctx context.Context, e InterestMarkedEvent) error
}

// Noop is used when no broker is configured (local runs, tests).
type Noop struct{}

func (Noop) RequestCreated(context.Context, RequestCreatedEvent) error     { return nil }
func (Noop) RequestApproved(context.Context, RequestApprovedEvent) error   { return nil }
func (Noop) RequestCompleted(context.Context, RequestCompletedEvent) error { return nil }
func (Noop) NoteAdded(context.Context, NoteAddedEvent) error               { return nil }
func (Noop) InterestMarked(context.Context, InterestMarkedEvent) error     { return nil }

// Kafka publishes events to the notifications topic through a sync producer,
// keyed by request id so one request's events stay ordered.
type Kafka struct {
	producer sarama.SyncProducer
}

func NewKafka(producer sarama.SyncProducer) *Kafka {
	return &Kafka{producer: producer}
}

type envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func (k *Kafka) publish(eventType, key string, payload interface{}) error {
	value, err := jsoniter.Marshal(envelope{Type: eventType, Payload: payload})
	if err != nil {
		return err
	}
	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: TopicName,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	})
	return err
}

func (k *Kafka) RequestCreated(_ context.Context, e RequestCreatedEvent) error {
	return k.publish("request.created", e.RequestID, e)
}

func (k *Kafka) RequestApproved(_ context.Context, e RequestApprovedEvent) error {
	return k.publish("request.approved", e.RequestID, e)
}

func (k *Kafka) RequestCompleted(_ context.Context, e RequestCompletedEvent) error {
	return k.publish("request.completed", e.RequestID, e)
}

func (k *Kafka) NoteAdded(_ context.Context, e NoteAddedEvent) error {
	return k.publish("request.note_added", e.RequestID, e)
}

func (k *Kafka) InterestMarked(_ context.Context, e InterestMarkedEvent) error {
	return k.publish("request.interest_marked", e.RequestID, e)
}

var (
	_ Notifier = (*Kafka)(nil)
	_ Notifier = Noop{}
)
