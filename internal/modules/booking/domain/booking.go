package domain

import (
	"strconv"
	"strings"
)

const (
	MsgSelectSlot       = "Please select a slot."
	MsgPartySizeMinimum = "Number of people must be at least 1."
	MsgBookingSuccess   = "Booking successful!"
	MsgBookingFailed    = "Failed to book the slot."
	MsgBookingNetwork   = "Error creating booking. Please try again."
	MsgSlotsFailed      = "Failed to fetch slots."
	MsgSlotsNetwork     = "Error fetching slots. Please try again later."
	MsgSlotFull         = "This slot is fully booked."
	MsgUnknownSlot      = "The selected slot is no longer available."
)

// BookingRequest is the body of POST /bookings.
type BookingRequest struct {
	SlotID         string `json:"slot_id"`
	NumberOfPeople int    `json:"number_of_people"`
}

// ValidateBooking applies the client-side best-effort checks against the current capacity
// snapshot. The backend remains authoritative.
func ValidateBooking(slotID string, partySize, bound int) (BookingRequest, error) {
	slotID = strings.TrimSpace(slotID)
	if slotID == "" {
		return BookingRequest{}, NewValidationError(MsgSelectSlot)
	}
	if partySize < 1 {
		return BookingRequest{}, NewValidationError(MsgPartySizeMinimum)
	}
	if bound > 0 && partySize > bound {
		return BookingRequest{}, NewValidationError(seatsLeftMessage(bound))
	}
	return BookingRequest{SlotID: slotID, NumberOfPeople: partySize}, nil
}

func seatsLeftMessage(bound int) string {
	if bound == 1 {
		return "Only 1 seat left in this slot."
	}
	return "Only " + strconv.Itoa(bound) + " seats left in this slot."
}
