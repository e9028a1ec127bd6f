package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	MsgSlotAdded      = "Slot added."
	MsgSlotAddFailed  = "Failed to add the slot."
	MsgSlotAddNetwork = "Error adding slot. Please try again."

	firstServiceHour = 10
	lastServiceHour  = 21
)

// AddSlotRequest is the body of POST /restaurants/{id}/slots.
type AddSlotRequest struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Tables int    `json:"tables"`
}

// SlotTimeOptions lists the selectable service hours ("10:00" through "21:00").
func SlotTimeOptions() []string {
	options := make([]string, 0, lastServiceHour-firstServiceHour+1)
	for hour := firstServiceHour; hour <= lastServiceHour; hour++ {
		options = append(options, fmt.Sprintf("%d:00", hour))
	}
	return options
}

// ValidateAddSlot checks the add-slot form and builds the request.
func ValidateAddSlot(date, clock, tables string) (AddSlotRequest, error) {
	var messages []string
	date = strings.TrimSpace(date)
	if _, err := time.Parse(slotDateLayout, date); err != nil {
		messages = append(messages, "Date is required (YYYY-MM-DD).")
	}
	clock = strings.TrimSpace(clock)
	if !validSlotTime(clock) {
		messages = append(messages, fmt.Sprintf("Time must be between %d:00 and %d:00.", firstServiceHour, lastServiceHour))
	}
	count, err := strconv.Atoi(strings.TrimSpace(tables))
	if err != nil || count < 1 {
		messages = append(messages, "Number of tables must be at least 1.")
	}
	if len(messages) > 0 {
		return AddSlotRequest{}, NewValidationError(messages...)
	}
	return AddSlotRequest{Date: date, Time: clock, Tables: count}, nil
}

func validSlotTime(value string) bool {
	for _, option := range SlotTimeOptions() {
		if option == value {
			return true
		}
	}
	return false
}
