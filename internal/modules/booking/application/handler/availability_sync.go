package handler

import (
	"context"
	"log/slog"
	"strings"

	"mesaYaBooking/internal/modules/booking/application/port"
	"mesaYaBooking/internal/modules/booking/domain"
)

// AvailabilitySyncHandler refreshes live availability when another instance reports a
// write that changes a restaurant's slots.
type AvailabilitySyncHandler struct {
	topic    string
	notifier port.AvailabilityNotifier
}

func NewAvailabilitySyncHandler(topic string, notifier port.AvailabilityNotifier) *AvailabilitySyncHandler {
	return &AvailabilitySyncHandler{topic: strings.TrimSpace(topic), notifier: notifier}
}

func (h *AvailabilitySyncHandler) Topic() string { return h.topic }

func (h *AvailabilitySyncHandler) Handle(_ context.Context, event domain.Event) error {
	restaurantID := strings.TrimSpace(event.RestaurantID())
	if restaurantID == "" {
		slog.Debug("availability-sync skipped event without restaurant", slog.String("topic", event.Topic()), slog.String("resourceId", event.ResourceID))
		return nil
	}
	slog.Info("availability-sync refresh", slog.String("topic", event.Topic()), slog.String("restaurantId", restaurantID))
	h.notifier.Invalidate(restaurantID)
	return nil
}

// SyncTopics lists the event topics that change slot availability.
func SyncTopics() []string {
	return []string{
		domain.EntityBookings + "." + domain.ActionCreated,
		domain.EntitySlots + "." + domain.ActionCreated,
		domain.EntityRestaurants + "." + domain.ActionRegistered,
	}
}

var _ port.TopicHandler = (*AvailabilitySyncHandler)(nil)
