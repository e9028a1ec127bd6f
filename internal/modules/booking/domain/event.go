package domain

import (
	"time"

	"mesaYaBooking/internal/shared/normalization"
)

const (
	EntityRestaurants = "restaurants"
	EntitySlots       = "slots"
	EntityBookings    = "bookings"

	ActionCreated    = "created"
	ActionRegistered = "registered"
)

// Event describes a backend write that succeeded through this front end.
type Event struct {
	Entity     string            `json:"entity"`
	Action     string            `json:"action"`
	ResourceID string            `json:"resourceId,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Data       any               `json:"data,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// NewEvent builds an event with a canonical entity name.
func NewEvent(entity, action, resourceID string, metadata map[string]string, data any, at time.Time) Event {
	return Event{
		Entity:     normalization.NormalizeEntity(entity),
		Action:     action,
		ResourceID: resourceID,
		Metadata:   metadata,
		Data:       data,
		Timestamp:  at.UTC(),
	}
}

// Topic is the "<entity>.<action>" routing name of the event.
func (e Event) Topic() string {
	return e.Entity + "." + e.Action
}

// RestaurantID reports the restaurant whose availability the event affects.
func (e Event) RestaurantID() string {
	switch e.Entity {
	case EntityBookings:
		if e.Metadata != nil {
			return e.Metadata["restaurantId"]
		}
		return ""
	default:
		return e.ResourceID
	}
}
