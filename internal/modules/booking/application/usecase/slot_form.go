package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"mesaYaBooking/internal/modules/booking/domain"
)

// SlotFormFlow is the owner's "Add Time Slots" modal for an existing restaurant.
type SlotFormFlow struct {
	deps         Dependencies
	restaurantID string

	mu         sync.Mutex
	banner     domain.Banner
	closeAt    time.Time
	submitting bool
}

type SlotFormSnapshot struct {
	RestaurantID string
	TimeOptions  []string
	Banner       domain.Banner
	Submitting   bool
	Closed       bool
}

func NewSlotFormFlow(restaurantID string, deps Dependencies) *SlotFormFlow {
	return &SlotFormFlow{deps: deps.withDefaults(), restaurantID: restaurantID}
}

func (f *SlotFormFlow) RestaurantID() string { return f.restaurantID }

// Submit validates and posts one slot. A success closes the modal after CloseDelay.
func (f *SlotFormFlow) Submit(ctx context.Context, date, clock, tables string) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrInFlight
	}
	if !f.closeAt.IsZero() {
		f.mu.Unlock()
		return ErrFlowClosed
	}
	req, err := domain.ValidateAddSlot(date, clock, tables)
	if err != nil {
		if validation, ok := domain.AsValidation(err); ok {
			f.banner = domain.NewBanner(domain.BannerError, f.deps.Clock.Now(), 0, validation.Messages...)
		}
		f.mu.Unlock()
		return err
	}
	f.submitting = true
	f.mu.Unlock()

	slog.Info("slot add start", slog.String("restaurantId", f.restaurantID), slog.String("date", req.Date), slog.String("time", req.Time), slog.Int("tables", req.Tables))
	err = f.deps.Backend.AddSlot(ctx, f.restaurantID, req)

	f.mu.Lock()
	f.submitting = false
	now := f.deps.Clock.Now()
	if err != nil {
		f.banner = domain.NewBanner(domain.BannerError, now, 0, classify(err, domain.MsgSlotAddFailed, domain.MsgSlotAddNetwork)...)
		f.mu.Unlock()
		slog.Warn("slot add failed", slog.String("restaurantId", f.restaurantID), slog.Any("error", err))
		return err
	}
	f.banner = domain.NewBanner(domain.BannerSuccess, now, 0, domain.MsgSlotAdded)
	f.closeAt = now.Add(f.deps.CloseDelay)
	f.mu.Unlock()

	f.deps.Notifier.Invalidate(f.restaurantID)
	f.deps.publish(ctx, domain.NewEvent(domain.EntitySlots, domain.ActionCreated, f.restaurantID, map[string]string{
		"date":   req.Date,
		"time":   req.Time,
		"tables": strconv.Itoa(req.Tables),
	}, req, now))
	return nil
}

func (f *SlotFormFlow) Closed(now time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closeAt.IsZero() && !now.Before(f.closeAt)
}

// CloseAt is the instant the modal closes after a successful submit, or zero.
func (f *SlotFormFlow) CloseAt() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeAt
}

func (f *SlotFormFlow) Snapshot(now time.Time) SlotFormSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return SlotFormSnapshot{
		RestaurantID: f.restaurantID,
		TimeOptions:  domain.SlotTimeOptions(),
		Banner:       f.banner.At(now),
		Submitting:   f.submitting,
		Closed:       !f.closeAt.IsZero() && !now.Before(f.closeAt),
	}
}
