package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mesaYaBooking/internal/modules/booking/application/port"
	"mesaYaBooking/internal/modules/booking/domain"
	"mesaYaBooking/internal/shared/clock"
)

var (
	ErrInFlight          = errors.New("request already in flight")
	ErrSearchDisabled    = errors.New("search requires at least one filter")
	ErrFlowClosed        = errors.New("flow already completed")
	ErrUnknownRestaurant = errors.New("restaurant not in current results")
)

const (
	DefaultCloseDelay = 1500 * time.Millisecond
	DefaultBannerTTL  = 3 * time.Second
)

// Dependencies bundles the collaborators shared by every flow of a page session.
type Dependencies struct {
	Backend   port.BookingBackend
	Publisher port.EventPublisher
	Notifier  port.AvailabilityNotifier
	Clock     clock.Clock
	NewID     func() string
	// CloseDelay is how long a confirmation stays on screen before its modal closes.
	CloseDelay time.Duration
	// BannerTTL is the lifetime of registration banners.
	BannerTTL time.Duration
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Publisher == nil {
		d.Publisher = noopPublisher{}
	}
	if d.Notifier == nil {
		d.Notifier = noopNotifier{}
	}
	if d.Clock == nil {
		d.Clock = clock.Real()
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	if d.CloseDelay <= 0 {
		d.CloseDelay = DefaultCloseDelay
	}
	if d.BannerTTL <= 0 {
		d.BannerTTL = DefaultBannerTTL
	}
	return d
}

// publish emits an event without letting broker trouble leak into the user-facing result.
func (d Dependencies) publish(ctx context.Context, event domain.Event) {
	if err := d.Publisher.Publish(ctx, event); err != nil {
		slog.Warn("booking event publish failed", slog.String("topic", event.Topic()), slog.String("resourceId", event.ResourceID), slog.Any("error", err))
	}
}

// classify picks the banner text for a backend failure: server messages (or rejectedFallback)
// for rejections, networkMessage for everything else.
func classify(err error, rejectedFallback, networkMessage string) []string {
	if rejected, ok := port.AsRejected(err); ok {
		if len(rejected.Messages) > 0 {
			return append([]string(nil), rejected.Messages...)
		}
		return []string{rejectedFallback}
	}
	return []string{networkMessage}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, domain.Event) error { return nil }

type noopNotifier struct{}

func (noopNotifier) Invalidate(string) {}
