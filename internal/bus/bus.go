// Package bus publishes domain events to Kafka for downstream consumers.
// Publishing is fire-and-forget: failures are logged and never reach callers.
package bus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mommylounge/lounge-server/internal/config"
)

// Event types.
const (
	CommentCreated      = "comment.created"
	NotificationCreated = "notification.created"
)

const writeTimeout = 10 * time.Second

// Event is a domain event as it appears on the topic.
type Event struct {
	Type           string    `json:"type"`
	OccurredAt     time.Time `json:"occurred_at"`
	ActorID        string    `json:"actor_id,omitempty"`
	RecipientID    string    `json:"recipient_id,omitempty"`
	PostID         string    `json:"post_id,omitempty"`
	CommentID      string    `json:"comment_id,omitempty"`
	NotificationID string    `json:"notification_id,omitempty"`
}

// Publisher sends domain events.
type Publisher interface {
	Publish(ctx context.Context, event Event)
	Close() error
}

// Noop discards events. Used when no brokers are configured.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, Event) {}

// Close implements Publisher.
func (Noop) Close() error { return nil }

// messageWriter is the part of kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a single topic, keyed by post so events
// about one post stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
	wg     sync.WaitGroup
}

// New returns a Kafka publisher when cfg names brokers and a topic,
// otherwise a Noop.
func New(cfg config.BusConfig, logger *slog.Logger) Publisher {
	if !cfg.Enabled() {
		logger.Warn("Kafka was not configured, domain events will not be published")
		return Noop{}
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
	}
	logger.Info("Publishing domain events to Kafka", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return newKafkaPublisher(w, logger)
}

func newKafkaPublisher(w messageWriter, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, logger: logger}
}

// Publish sends the event in the background. The request context only
// contributes its values; the write outlives the request.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	msg, err := encode(event)
	if err != nil {
		p.logger.Error("failed to encode domain event", "type", event.Type, "error", err)
		return
	}

	p.wg.Go(func() {
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		defer cancel()

		if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
			p.logger.Warn("failed to publish domain event", "type", event.Type, "post_id", event.PostID, "error", err)
			return
		}
		p.logger.Debug("domain event published", "type", event.Type, "post_id", event.PostID)
	})
}

// Close waits for in-flight writes and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.wg.Wait()
	return p.writer.Close()
}

func encode(event Event) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.PostID),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}, nil
}
