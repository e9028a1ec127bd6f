package domain

import "time"

const AvailabilityTopic = "slots.availability"

// AvailabilityUpdate is pushed to live booking views whenever a restaurant's slot list
// is refetched.
type AvailabilityUpdate struct {
	Topic        string       `json:"topic"`
	RestaurantID string       `json:"restaurantId"`
	Options      []SlotOption `json:"options"`
	Timestamp    time.Time    `json:"timestamp"`
}

func NewAvailabilityUpdate(restaurantID string, slots []Slot, at time.Time) AvailabilityUpdate {
	return AvailabilityUpdate{
		Topic:        AvailabilityTopic,
		RestaurantID: restaurantID,
		Options:      DeriveSlotOptions(slots),
		Timestamp:    at.UTC(),
	}
}
