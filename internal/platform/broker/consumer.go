package broker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"mesaYaBooking/internal/modules/booking/domain"
	"mesaYaBooking/internal/shared/normalization"
)

const (
	initialRetryDelay = 200 * time.Millisecond
	maxRetryDelay     = 10 * time.Second
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type KafkaConsumer struct {
	reader     messageReader
	retryDelay time.Duration
}

// NewKafkaConsumer starts a fresh group at the newest offset; availability is refetched
// on demand, so replaying old events adds nothing.
func NewKafkaConsumer(brokers []string, groupID string, topic string) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     brokers,
			GroupID:     groupID,
			Topic:       topic,
			StartOffset: kafka.LastOffset,
		}),
		retryDelay: initialRetryDelay,
	}
}

// Consume reads until ctx is cancelled, handing every decoded event to handler.
func (c *KafkaConsumer) Consume(ctx context.Context, handler func(domain.Event) error) error {
	defer c.reader.Close()
	delay := c.baseDelay()
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			slog.Warn("kafka read error", slog.Any("error", err), slog.Duration("retryIn", delay))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = min(delay*2, maxRetryDelay)
			continue
		}
		delay = c.baseDelay()
		event := decodeEvent(m)
		slog.Info("kafka message consumed",
			slog.String("topic", m.Topic),
			slog.Int("partition", m.Partition),
			slog.Int64("offset", m.Offset),
			slog.String("entity", event.Entity),
			slog.String("action", event.Action),
			slog.String("resourceId", event.ResourceID),
		)
		if err := handler(event); err != nil {
			slog.Warn("kafka handler error", slog.Any("error", err))
		}
	}
}

func (c *KafkaConsumer) baseDelay() time.Duration {
	if c.retryDelay <= 0 {
		return initialRetryDelay
	}
	return c.retryDelay
}

// decodeEvent turns a message into an event. Bodies that are not a JSON event keep the
// raw text as data and take entity and action from the topic name.
func decodeEvent(m kafka.Message) domain.Event {
	var event domain.Event
	if err := json.Unmarshal(m.Value, &event); err != nil {
		entity, action := inferEntityActionFromTopic(m.Topic)
		return domain.Event{
			Entity:    normalization.NormalizeEntity(entity),
			Action:    action,
			Data:      string(m.Value),
			Timestamp: messageTime(m),
		}
	}

	entity, action := inferEntityActionFromTopic(m.Topic)
	event.Entity = normalization.NormalizeEntity(firstNonEmpty(event.Entity, entity))
	event.Action = firstNonEmpty(event.Action, action)
	if event.Timestamp.IsZero() {
		event.Timestamp = messageTime(m)
	}
	return event
}

func messageTime(m kafka.Message) time.Time {
	if m.Time.IsZero() {
		return time.Now().UTC()
	}
	return m.Time.UTC()
}
