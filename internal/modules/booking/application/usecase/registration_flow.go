package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mesaYaBooking/internal/modules/booking/domain"
)

// RegistrationFlow is the owner-side "Register Restaurant" form: static fields plus a
// positional slot table submitted as one composite record.
type RegistrationFlow struct {
	deps Dependencies

	mu             sync.Mutex
	draft          *domain.RegistrationDraft
	banner         domain.Banner
	submitting     bool
	lastRegistered string
}

// RegistrationSnapshot is the render model of the registration form.
type RegistrationSnapshot struct {
	Rows       []domain.SlotRow
	Banner     domain.Banner
	Submitting bool
	// LastRegisteredID is the id of the most recent accepted registration, used to offer
	// the add-slot modal.
	LastRegisteredID string
}

func NewRegistrationFlow(deps Dependencies) *RegistrationFlow {
	return &RegistrationFlow{deps: deps.withDefaults(), draft: domain.NewRegistrationDraft()}
}

func (f *RegistrationFlow) AddSlotRow() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.AddRow()
}

func (f *RegistrationFlow) RemoveSlotRow(index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.RemoveRow(index)
}

func (f *RegistrationFlow) UpdateSlotRow(index int, field domain.SlotField, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.UpdateRow(index, field, value)
}

// ReplaceRows overwrites the slot table with the rows posted by a form, keeping the row count.
func (f *RegistrationFlow) ReplaceRows(rows []domain.SlotRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft = domain.DraftFromRows(rows)
}

// Submit validates the form, expands it into the composite record and sends it. Every
// outcome is reported through a banner that expires after BannerTTL.
func (f *RegistrationFlow) Submit(ctx context.Context, form domain.RestaurantForm) (domain.RegistrationRecord, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return domain.RegistrationRecord{}, ErrInFlight
	}
	now := f.deps.Clock.Now()
	rows := f.draft.Rows()
	if err := form.Validate(rows); err != nil {
		if validation, ok := domain.AsValidation(err); ok {
			f.banner = domain.NewBanner(domain.BannerError, now, f.deps.BannerTTL, validation.Messages...)
		}
		f.mu.Unlock()
		return domain.RegistrationRecord{}, err
	}
	record, err := domain.ExpandRegistration(form, rows, f.deps.NewID)
	if err != nil {
		f.banner = domain.NewBanner(domain.BannerError, now, f.deps.BannerTTL, err.Error())
		f.mu.Unlock()
		return domain.RegistrationRecord{}, err
	}
	f.draft.Reset()
	f.submitting = true
	f.mu.Unlock()

	slog.Info("registration submit start", slog.String("restaurantId", record.ID), slog.String("name", record.Name), slog.Int("slots", len(record.Slots)))
	err = f.deps.Backend.RegisterRestaurant(ctx, record)

	f.mu.Lock()
	f.submitting = false
	now = f.deps.Clock.Now()
	if err != nil {
		f.banner = domain.NewBanner(domain.BannerError, now, f.deps.BannerTTL,
			classify(err, domain.MsgRegistrationFailed, domain.MsgRegistrationNetwork)...)
		f.mu.Unlock()
		slog.Warn("registration submit failed", slog.String("restaurantId", record.ID), slog.Any("error", err))
		return record, err
	}
	f.banner = domain.NewBanner(domain.BannerSuccess, now, f.deps.BannerTTL, domain.MsgRegistrationSuccess)
	f.lastRegistered = record.ID
	f.mu.Unlock()

	slog.Info("registration accepted", slog.String("restaurantId", record.ID))
	f.deps.publish(ctx, domain.NewEvent(domain.EntityRestaurants, domain.ActionRegistered, record.ID, map[string]string{
		"name": record.Name,
		"city": record.City,
	}, record, now))
	return record, nil
}

func (f *RegistrationFlow) Snapshot(now time.Time) RegistrationSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return RegistrationSnapshot{
		Rows:             f.draft.Rows(),
		Banner:           f.banner.At(now),
		Submitting:       f.submitting,
		LastRegisteredID: f.lastRegistered,
	}
}
