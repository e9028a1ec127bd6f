package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"mesaYaBooking/internal/shared/normalization"
)

const (
	MsgRegistrationSuccess = "Restaurant registered successfully!"
	MsgRegistrationFailed  = "Restaurant registration failed."
	MsgRegistrationNetwork = "An unexpected error occurred. Please try again."

	slotDateLayout   = "2006-01-02"
	recordDateLayout = "2006-01-02T15:04:05"
	minTextLength    = 3
)

// SlotField enumerates the editable columns of a draft slot row.
type SlotField int

const (
	SlotFieldDate SlotField = iota
	SlotFieldHour
	SlotFieldCapacity
)

func (f SlotField) String() string {
	switch f {
	case SlotFieldDate:
		return "date"
	case SlotFieldHour:
		return "hour"
	case SlotFieldCapacity:
		return "capacity"
	default:
		return "unknown"
	}
}

// ParseSlotField maps a form column name onto its SlotField.
func ParseSlotField(raw string) (SlotField, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "date":
		return SlotFieldDate, nil
	case "hour":
		return SlotFieldHour, nil
	case "capacity":
		return SlotFieldCapacity, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, raw)
	}
}

// SlotRow is one slot line of the registration form, kept as typed text.
type SlotRow struct {
	Date     string
	Hour     string
	Capacity string
}

// Set returns a copy of the row with field replaced by value.
func (r SlotRow) Set(field SlotField, value string) (SlotRow, error) {
	switch field {
	case SlotFieldDate:
		r.Date = value
	case SlotFieldHour:
		r.Hour = value
	case SlotFieldCapacity:
		r.Capacity = value
	default:
		return r, fmt.Errorf("%w: %d", ErrUnknownField, field)
	}
	return r, nil
}

// RegistrationDraft is the dynamically sized slot table of the registration form. Rows are
// addressed by position.
type RegistrationDraft struct {
	rows []SlotRow
}

// NewRegistrationDraft returns a draft holding a single empty row.
func NewRegistrationDraft() *RegistrationDraft {
	return &RegistrationDraft{rows: []SlotRow{{}}}
}

// DraftFromRows returns a draft holding a copy of rows.
func DraftFromRows(rows []SlotRow) *RegistrationDraft {
	return &RegistrationDraft{rows: append([]SlotRow(nil), rows...)}
}

func (d *RegistrationDraft) Rows() []SlotRow {
	return append([]SlotRow(nil), d.rows...)
}

func (d *RegistrationDraft) Len() int { return len(d.rows) }

func (d *RegistrationDraft) AddRow() {
	d.rows = append(d.rows, SlotRow{})
}

func (d *RegistrationDraft) RemoveRow(index int) error {
	if index < 0 || index >= len(d.rows) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}
	d.rows = append(d.rows[:index:index], d.rows[index+1:]...)
	return nil
}

func (d *RegistrationDraft) UpdateRow(index int, field SlotField, value string) error {
	if index < 0 || index >= len(d.rows) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}
	updated, err := d.rows[index].Set(field, value)
	if err != nil {
		return err
	}
	d.rows[index] = updated
	return nil
}

// Reset empties the slot table, matching the form state after a submit.
func (d *RegistrationDraft) Reset() {
	d.rows = nil
}

// RestaurantForm holds the static registration fields as typed.
type RestaurantForm struct {
	Name       string
	City       string
	Area       string
	Cuisine    string
	Rating     string
	CostForTwo string
	IsVeg      bool
}

// SlotRecord is an expanded slot inside the composite registration record.
type SlotRecord struct {
	ID           string `json:"id"`
	RestaurantID string `json:"restaurant_id"`
	Date         string `json:"date"`
	Hour         int    `json:"hour"`
	Capacity     int    `json:"capacity"`
	Booked       int    `json:"booked"`
}

// RegistrationRecord is the composite body of POST /restaurants.
type RegistrationRecord struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	City       string       `json:"city"`
	Area       string       `json:"area"`
	Cuisine    string       `json:"cuisine"`
	Rating     float64      `json:"rating"`
	CostForTwo float64      `json:"cost_for_two"`
	IsVeg      bool         `json:"is_veg"`
	Slots      []SlotRecord `json:"slots"`
}

// Validate applies the form constraints (minimum lengths, numeric ranges) before any
// request is built. All failures are reported together.
func (f RestaurantForm) Validate(rows []SlotRow) error {
	var messages []string
	for _, field := range []struct{ label, value string }{
		{"Name", f.Name}, {"City", f.City}, {"Area", f.Area}, {"Cuisine", f.Cuisine},
	} {
		if len([]rune(strings.TrimSpace(field.value))) < minTextLength {
			messages = append(messages, fmt.Sprintf("%s must be at least %d characters.", field.label, minTextLength))
		}
	}
	if cost, err := strconv.ParseFloat(strings.TrimSpace(f.CostForTwo), 64); err != nil || cost < 1 {
		messages = append(messages, "Cost for two must be at least 1.")
	}
	if rating, err := strconv.ParseFloat(strings.TrimSpace(f.Rating), 64); err != nil || rating < 0 || rating > 5 {
		messages = append(messages, "Rating must be between 0 and 5.")
	}
	for i, row := range rows {
		position := i + 1
		if _, err := NormalizeSlotDate(row.Date); err != nil {
			messages = append(messages, fmt.Sprintf("Slot %d: date is required (YYYY-MM-DD).", position))
		}
		if hour, err := strconv.Atoi(strings.TrimSpace(row.Hour)); err != nil || hour < 0 || hour > 23 {
			messages = append(messages, fmt.Sprintf("Slot %d: hour must be between 0 and 23.", position))
		}
		if capacity, err := strconv.Atoi(strings.TrimSpace(row.Capacity)); err != nil || capacity < 1 {
			messages = append(messages, fmt.Sprintf("Slot %d: capacity must be at least 1.", position))
		}
	}
	if len(messages) > 0 {
		return NewValidationError(messages...)
	}
	return nil
}

// ExpandRegistration builds the composite record. newID is called once for the restaurant
// and once per slot; every slot carries the restaurant id as its back-reference.
func ExpandRegistration(form RestaurantForm, rows []SlotRow, newID func() string) (RegistrationRecord, error) {
	restaurantID := newID()
	record := RegistrationRecord{
		ID:         restaurantID,
		Name:       strings.TrimSpace(form.Name),
		City:       strings.TrimSpace(form.City),
		Area:       strings.TrimSpace(form.Area),
		Cuisine:    strings.TrimSpace(form.Cuisine),
		Rating:     normalization.AsFloat64(form.Rating),
		CostForTwo: normalization.AsFloat64(form.CostForTwo),
		IsVeg:      form.IsVeg,
		Slots:      make([]SlotRecord, 0, len(rows)),
	}
	for _, row := range rows {
		date, err := NormalizeSlotDate(row.Date)
		if err != nil {
			return RegistrationRecord{}, err
		}
		record.Slots = append(record.Slots, SlotRecord{
			ID:           newID(),
			RestaurantID: restaurantID,
			Date:         date,
			Hour:         normalization.AsInt(row.Hour),
			Capacity:     normalization.AsInt(row.Capacity),
			Booked:       0,
		})
	}
	return record, nil
}

// NormalizeSlotDate converts a form date into the backend's date-time form
// ("2006-01-02T15:04:05", UTC, no fractional seconds or zone suffix).
func NormalizeSlotDate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidSlotDate
	}
	for _, layout := range []string{slotDateLayout, recordDateLayout, time.RFC3339Nano, "2006-01-02T15:04"} {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC().Format(recordDateLayout), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSlotDate, raw)
}
