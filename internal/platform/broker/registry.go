package broker

import (
	"context"

	"mesaYaBooking/internal/modules/booking/domain"
	"mesaYaBooking/internal/modules/booking/infrastructure"
)

// StartKafkaConsumers runs one consumer per registered topic until ctx is cancelled.
func StartKafkaConsumers(
	ctx context.Context,
	registry *infrastructure.HandlerRegistry,
	brokers []string,
	groupID string,
	prefix string,
) {
	if len(brokers) == 0 {
		return
	}
	for _, topic := range TopicNames(prefix, registry.Topics()) {
		go func(tp string) {
			consumer := NewKafkaConsumer(brokers, groupID, tp)
			_ = consumer.Consume(ctx, func(event domain.Event) error {
				return registry.Dispatch(ctx, event)
			})
		}(topic)
	}
}
