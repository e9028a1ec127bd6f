package usecase

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Tab is one of the two top-level views of the shell.
type Tab string

const (
	TabCustomer Tab = "customer"
	TabOwner    Tab = "owner"
)

// ParseTab maps a path segment onto a Tab, defaulting to the customer view.
func ParseTab(raw string) Tab {
	if strings.EqualFold(strings.TrimSpace(raw), string(TabOwner)) {
		return TabOwner
	}
	return TabCustomer
}

// Shell is the per-page-session state: the active tab, the directory and registration
// forms that live on the tabs, and at most one open modal of each kind.
type Shell struct {
	deps Dependencies

	directory    *DirectoryView
	registration *RegistrationFlow

	mu       sync.Mutex
	tab      Tab
	booking  *BookingFlow
	slotForm *SlotFormFlow
}

func NewShell(deps Dependencies) *Shell {
	deps = deps.withDefaults()
	return &Shell{
		deps:         deps,
		directory:    NewDirectoryView(deps),
		registration: NewRegistrationFlow(deps),
		tab:          TabCustomer,
	}
}

func (s *Shell) Now() time.Time { return s.deps.Clock.Now() }

func (s *Shell) Directory() *DirectoryView { return s.directory }

func (s *Shell) Registration() *RegistrationFlow { return s.registration }

func (s *Shell) SwitchTab(tab Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab = tab
}

func (s *Shell) Tab() Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tab
}

// OpenBooking opens the booking modal for a restaurant of the current result set and loads
// its slots. A load failure leaves the modal open with its error banner.
func (s *Shell) OpenBooking(ctx context.Context, restaurantID string) (*BookingFlow, error) {
	restaurant, ok := s.directory.Find(strings.TrimSpace(restaurantID))
	if !ok {
		return nil, ErrUnknownRestaurant
	}
	flow := NewBookingFlow(restaurant, s.deps)
	s.mu.Lock()
	s.booking = flow
	s.mu.Unlock()
	_ = flow.Load(ctx)
	return flow, nil
}

// Booking returns the open booking modal. A modal whose confirmation delay elapsed is
// closed on observation.
func (s *Shell) Booking() *BookingFlow {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.booking != nil && s.booking.Closed(s.deps.Clock.Now()) {
		s.booking = nil
	}
	return s.booking
}

// BookingFor returns the open booking modal only if it belongs to restaurantID.
func (s *Shell) BookingFor(restaurantID string) *BookingFlow {
	flow := s.Booking()
	if flow == nil || flow.Restaurant().ID != restaurantID {
		return nil
	}
	return flow
}

func (s *Shell) CloseBooking() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.booking = nil
}

// OpenSlotForm opens the add-slot modal for restaurantID, replacing any open one.
func (s *Shell) OpenSlotForm(restaurantID string) (*SlotFormFlow, error) {
	restaurantID = strings.TrimSpace(restaurantID)
	if restaurantID == "" {
		return nil, ErrUnknownRestaurant
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slotForm == nil || s.slotForm.RestaurantID() != restaurantID || s.slotForm.Closed(s.deps.Clock.Now()) {
		s.slotForm = NewSlotFormFlow(restaurantID, s.deps)
	}
	return s.slotForm, nil
}

func (s *Shell) SlotForm() *SlotFormFlow {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slotForm != nil && s.slotForm.Closed(s.deps.Clock.Now()) {
		s.slotForm = nil
	}
	return s.slotForm
}

func (s *Shell) CloseSlotForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slotForm = nil
}
