// Package dispatch hands campaign intents (queued SMS, sent newsletters) to
// whatever delivers them. Nothing in this module delivers; it only publishes.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	applog "creativehub/internal/log"

	"github.com/segmentio/kafka-go"
)

const (
	KindSms        = "sms"
	KindNewsletter = "newsletter"
)

// Intent is the message written for every queued campaign.
type Intent struct {
	Kind       string    `json:"kind"`
	ID         string    `json:"id"`
	Target     string    `json:"target"` // phone number, or "subscribers"
	Subject    string    `json:"subject,omitempty"`
	Content    string    `json:"content"`
	Recipients int       `json:"recipients,omitempty"`
	CreatedBy  string    `json:"created_by,omitempty"`
	At         time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, in Intent) error
	Close() error
}

// KafkaPublisher writes intents as JSON onto one topic, keyed by target so a
// recipient's messages stay ordered.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		MaxAttempts:            3,
		WriteTimeout:           5 * time.Second,
	}
	applog.Event("dispatch.kafka.ready", nil, map[string]any{"brokers": brokers, "topic": topic})
	return &KafkaPublisher{writer: w, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, in Intent) error {
	if in.At.IsZero() {
		in.At = time.Now().UTC()
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal intent: %w", err)
	}
	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(in.Target),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(in.Kind)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s %s: %w", in.Kind, in.ID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// LogPublisher records intents in the application log only. Used when no
// brokers are configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, in Intent) error {
	applog.Event("dispatch.intent", nil, map[string]any{
		"kind": in.Kind, "id": in.ID, "target": in.Target, "recipients": in.Recipients,
	})
	return nil
}

func (LogPublisher) Close() error { return nil }

// New picks the Kafka publisher when brokers are configured.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return LogPublisher{}
	}
	return NewKafkaPublisher(brokers, topic)
}
