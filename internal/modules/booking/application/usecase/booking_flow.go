package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"mesaYaBooking/internal/modules/booking/application/port"
	"mesaYaBooking/internal/modules/booking/domain"
)

// BookingFlow is the "Book a Table" modal for one restaurant: it loads slots, keeps the
// party-size bound in sync with the selected slot, and submits the reservation.
type BookingFlow struct {
	deps       Dependencies
	restaurant domain.Restaurant

	mu         sync.Mutex
	slots      []domain.Slot
	loaded     bool
	loading    bool
	selectedID string
	partySize  int
	banner     domain.Banner
	closeAt    time.Time
	submitting bool
}

// BookingSnapshot is the render model of the booking modal.
type BookingSnapshot struct {
	Restaurant   domain.Restaurant
	Options      []domain.SlotOption
	Loaded       bool
	SelectedID   string
	PartySize    int
	MaxPartySize int
	CanSubmit    bool
	Submitting   bool
	Banner       domain.Banner
	Closed       bool
}

func NewBookingFlow(restaurant domain.Restaurant, deps Dependencies) *BookingFlow {
	return &BookingFlow{deps: deps.withDefaults(), restaurant: restaurant, partySize: 1}
}

func (f *BookingFlow) Restaurant() domain.Restaurant { return f.restaurant }

// Load fetches the restaurant's slots. Failures are kept as an error banner.
func (f *BookingFlow) Load(ctx context.Context) error {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return ErrInFlight
	}
	f.loading = true
	f.mu.Unlock()

	slog.Info("booking slots fetch start", slog.String("restaurantId", f.restaurant.ID))
	slots, err := f.deps.Backend.ListSlots(ctx, f.restaurant.ID)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	if err != nil {
		slog.Warn("booking slots fetch failed", slog.String("restaurantId", f.restaurant.ID), slog.Any("error", err))
		f.banner = domain.NewBanner(domain.BannerError, f.deps.Clock.Now(), 0, classifySlotLoad(err))
		return err
	}
	f.applySlotsLocked(slots)
	f.loaded = true
	slog.Info("booking slots fetched", slog.String("restaurantId", f.restaurant.ID), slog.Int("slots", len(slots)))
	return nil
}

func classifySlotLoad(err error) string {
	if _, ok := port.AsRejected(err); ok {
		return domain.MsgSlotsFailed
	}
	return domain.MsgSlotsNetwork
}

// ApplySlots replaces the slot snapshot, e.g. from the live availability feed. The party
// size is re-clamped against the selected slot's new remaining capacity.
func (f *BookingFlow) ApplySlots(slots []domain.Slot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applySlotsLocked(slots)
	f.loaded = true
}

func (f *BookingFlow) applySlotsLocked(slots []domain.Slot) {
	f.slots = append([]domain.Slot(nil), slots...)
	if f.selectedID == "" {
		return
	}
	slot, ok := domain.FindSlot(f.slots, f.selectedID)
	if !ok {
		f.selectedID = ""
		return
	}
	remaining := slot.Remaining()
	if remaining <= 0 {
		f.selectedID = ""
		f.banner = domain.NewBanner(domain.BannerError, f.deps.Clock.Now(), 0, domain.MsgSlotFull)
		return
	}
	f.partySize = domain.ClampPartySize(f.partySize, remaining)
}

// HasSlot reports whether slotID is part of the current slot snapshot.
func (f *BookingFlow) HasSlot(slotID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := domain.FindSlot(f.slots, strings.TrimSpace(slotID))
	return ok
}

// Select changes the selected slot. The party size is clamped down to the new slot's
// remaining capacity and never raised. An empty id clears the selection.
func (f *BookingFlow) Select(slotID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	slotID = strings.TrimSpace(slotID)
	if slotID == "" {
		f.selectedID = ""
		return nil
	}
	slot, ok := domain.FindSlot(f.slots, slotID)
	if !ok {
		err := domain.NewValidationError(domain.MsgUnknownSlot)
		f.banner = domain.NewBanner(domain.BannerError, f.deps.Clock.Now(), 0, err.Messages...)
		return err
	}
	remaining := slot.Remaining()
	if remaining <= 0 {
		err := domain.NewValidationError(domain.MsgSlotFull)
		f.banner = domain.NewBanner(domain.BannerError, f.deps.Clock.Now(), 0, err.Messages...)
		return err
	}
	f.selectedID = slot.ID
	f.partySize = domain.ClampPartySize(f.partySize, remaining)
	if f.banner.Kind == domain.BannerError {
		f.banner = domain.Banner{}
	}
	return nil
}

// SetPartySize stores the raw party-size input as typed.
func (f *BookingFlow) SetPartySize(raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.partySize = domain.ParsePartySize(raw)
}

// Submit validates locally and sends the reservation. Local failures never reach the
// backend. On success the modal closes after the configured delay.
func (f *BookingFlow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrInFlight
	}
	if !f.closeAt.IsZero() {
		f.mu.Unlock()
		return ErrFlowClosed
	}
	bound := domain.PartySizeBound(f.slots, f.selectedID)
	req, err := domain.ValidateBooking(f.selectedID, f.partySize, bound)
	if err != nil {
		if validation, ok := domain.AsValidation(err); ok {
			f.banner = domain.NewBanner(domain.BannerError, f.deps.Clock.Now(), 0, validation.Messages...)
		}
		f.mu.Unlock()
		return err
	}
	f.submitting = true
	f.mu.Unlock()

	slog.Info("booking submit start", slog.String("restaurantId", f.restaurant.ID), slog.String("slotId", req.SlotID), slog.Int("people", req.NumberOfPeople))
	err = f.deps.Backend.CreateBooking(ctx, req)

	f.mu.Lock()
	f.submitting = false
	now := f.deps.Clock.Now()
	if err != nil {
		f.banner = domain.NewBanner(domain.BannerError, now, 0, classify(err, domain.MsgBookingFailed, domain.MsgBookingNetwork)[0])
		f.mu.Unlock()
		slog.Warn("booking submit failed", slog.String("slotId", req.SlotID), slog.Any("error", err))
		return err
	}
	f.banner = domain.NewBanner(domain.BannerSuccess, now, 0, domain.MsgBookingSuccess)
	f.closeAt = now.Add(f.deps.CloseDelay)
	f.mu.Unlock()

	slog.Info("booking submit accepted", slog.String("slotId", req.SlotID), slog.Int("people", req.NumberOfPeople))
	f.deps.Notifier.Invalidate(f.restaurant.ID)
	f.deps.publish(ctx, domain.NewEvent(domain.EntityBookings, domain.ActionCreated, req.SlotID, map[string]string{
		"restaurantId":   f.restaurant.ID,
		"numberOfPeople": strconv.Itoa(req.NumberOfPeople),
	}, req, now))
	return nil
}

// Closed reports whether the confirmation delay has elapsed at now.
func (f *BookingFlow) Closed(now time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closedLocked(now)
}

func (f *BookingFlow) closedLocked(now time.Time) bool {
	return !f.closeAt.IsZero() && !now.Before(f.closeAt)
}

// CloseAt is the instant the modal closes after a successful booking, or zero.
func (f *BookingFlow) CloseAt() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeAt
}

func (f *BookingFlow) Snapshot(now time.Time) BookingSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return BookingSnapshot{
		Restaurant:   f.restaurant,
		Options:      domain.DeriveSlotOptions(f.slots),
		Loaded:       f.loaded,
		SelectedID:   f.selectedID,
		PartySize:    f.partySize,
		MaxPartySize: domain.PartySizeBound(f.slots, f.selectedID),
		CanSubmit:    f.selectedID != "" && !f.submitting && f.closeAt.IsZero(),
		Submitting:   f.submitting,
		Banner:       f.banner.At(now),
		Closed:       f.closedLocked(now),
	}
}
