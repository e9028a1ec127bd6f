package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"

	"mesaYaBooking/internal/modules/booking/application/port"
	"mesaYaBooking/internal/modules/booking/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes booking events to "<prefix>.<entity>.<action>" topics.
type KafkaPublisher struct {
	writer    messageWriter
	prefix    string
	published *prometheus.CounterVec
}

func NewKafkaPublisher(brokers []string, prefix string, published *prometheus.CounterVec) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			BatchTimeout:           50 * time.Millisecond,
		},
		prefix:    prefix,
		published: published,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event domain.Event) error {
	msg, err := encodeEvent(p.prefix, event)
	if err != nil {
		p.observe(event.Topic(), "error")
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.observe(event.Topic(), "error")
		return fmt.Errorf("kafka publish %s: %w", msg.Topic, err)
	}
	p.observe(event.Topic(), "ok")
	slog.Debug("kafka message published", slog.String("topic", msg.Topic), slog.String("resourceId", event.ResourceID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) observe(topic, outcome string) {
	if p.published != nil {
		p.published.WithLabelValues(topic, outcome).Inc()
	}
}

func encodeEvent(prefix string, event domain.Event) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event %s: %w", event.Topic(), err)
	}
	return kafka.Message{
		Topic: TopicName(prefix, event.Topic()),
		Key:   []byte(event.ResourceID),
		Value: value,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "entity", Value: []byte(event.Entity)},
			{Key: "action", Value: []byte(event.Action)},
		},
	}, nil
}

var _ port.EventPublisher = (*KafkaPublisher)(nil)
