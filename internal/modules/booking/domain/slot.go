package domain

import (
	"strconv"
	"strings"

	"mesaYaBooking/internal/shared/normalization"
)

// Slot is a bookable hour at a restaurant with a fixed capacity and a running booked count.
type Slot struct {
	ID           string `json:"id"`
	RestaurantID string `json:"restaurant_id"`
	Date         string `json:"date"`
	Hour         int    `json:"hour"`
	Capacity     int    `json:"capacity"`
	Booked       int    `json:"booked"`
}

// Remaining is capacity minus booked, never below zero. The backend is expected to keep
// booked <= capacity but the client does not rely on it.
func (s Slot) Remaining() int {
	remaining := s.Capacity - s.Booked
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SlotOption is the rendered form of a slot in the booking selector.
type SlotOption struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Remaining int    `json:"remaining"`
	Disabled  bool   `json:"disabled"`
}

// DeriveSlotOptions computes the selector entries for a restaurant's slots, preserving order.
func DeriveSlotOptions(slots []Slot) []SlotOption {
	options := make([]SlotOption, 0, len(slots))
	for _, slot := range slots {
		remaining := slot.Remaining()
		options = append(options, SlotOption{
			ID:        slot.ID,
			Label:     strconv.Itoa(slot.Hour) + ":00 - Available: " + strconv.Itoa(remaining),
			Remaining: remaining,
			Disabled:  remaining <= 0,
		})
	}
	return options
}

// FindSlot looks a slot up by id.
func FindSlot(slots []Slot, id string) (Slot, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Slot{}, false
	}
	for _, slot := range slots {
		if slot.ID == id {
			return slot, true
		}
	}
	return Slot{}, false
}

// PartySizeBound is the upper bound of the party-size input: the selected slot's remaining
// capacity, or 1 when nothing (or a full slot) is selected.
func PartySizeBound(slots []Slot, selectedID string) int {
	slot, ok := FindSlot(slots, selectedID)
	if !ok {
		return 1
	}
	if remaining := slot.Remaining(); remaining > 0 {
		return remaining
	}
	return 1
}

// ClampPartySize lowers current to bound when it exceeds it. It never raises the value.
func ClampPartySize(current, bound int) int {
	if current > bound {
		return bound
	}
	return current
}

// ParsePartySize interprets the raw party-size input. An empty field yields 0 so submission
// fails validation; any other value below 1, or non-numeric text, snaps to 1.
func ParsePartySize(raw string) int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil || parsed < 1 {
		return 1
	}
	return parsed
}

// NormalizeSlot attempts to construct a Slot from an arbitrary map payload. Backends that
// answer with the add-slot shape ({time:"18:00", tables:4}) are accepted too.
func NormalizeSlot(raw map[string]any) (Slot, bool) {
	id := normalization.AsString(raw["id"])
	if id == "" {
		return Slot{}, false
	}
	slot := Slot{
		ID:           id,
		RestaurantID: normalization.AsString(raw["restaurant_id"]),
		Date:         normalization.AsString(raw["date"]),
		Hour:         normalization.AsInt(raw["hour"]),
		Capacity:     normalization.AsInt(raw["capacity"]),
		Booked:       normalization.AsInt(raw["booked"]),
	}
	if _, ok := raw["hour"]; !ok {
		slot.Hour = hourFromClock(normalization.AsString(raw["time"]))
	}
	if _, ok := raw["capacity"]; !ok {
		slot.Capacity = normalization.AsInt(raw["tables"])
	}
	return slot, true
}

// BuildSlotList projects a list payload into slots, skipping entries without an id.
func BuildSlotList(payload any) []Slot {
	rawItems := normalization.ItemsFromPayload(payload, "slots")
	result := make([]Slot, 0, len(rawItems))
	for _, item := range rawItems {
		if rawMap, ok := item.(map[string]any); ok {
			if slot, ok := NormalizeSlot(rawMap); ok {
				result = append(result, slot)
			}
		}
	}
	return result
}

func hourFromClock(value string) int {
	head, _, _ := strings.Cut(value, ":")
	hour, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0
	}
	return hour
}
