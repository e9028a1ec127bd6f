package port

import (
	"context"

	"mesaYaBooking/internal/modules/booking/domain"
)

// TopicHandler reacts to one event topic ("<entity>.<action>") consumed from the broker.
type TopicHandler interface {
	Topic() string
	Handle(ctx context.Context, event domain.Event) error
}
