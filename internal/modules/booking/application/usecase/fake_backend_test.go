package usecase

import (
	"context"
	"strconv"
	"sync"
	"time"

	"mesaYaBooking/internal/modules/booking/domain"
	"mesaYaBooking/internal/shared/clock"
)

type fakeBackend struct {
	mu sync.Mutex

	restaurants []domain.Restaurant
	slots       []domain.Slot
	err         error
	// gate, when set, blocks each call until it is closed.
	gate chan struct{}

	searches      []domain.SearchFilters
	registrations []domain.RegistrationRecord
	addedSlots    []domain.AddSlotRequest
	bookings      []domain.BookingRequest
	slotFetches   int
}

func (b *fakeBackend) wait() {
	if b.gate != nil {
		<-b.gate
	}
}

func (b *fakeBackend) SearchRestaurants(_ context.Context, filters domain.SearchFilters) ([]domain.Restaurant, error) {
	b.wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.searches = append(b.searches, filters)
	if b.err != nil {
		return nil, b.err
	}
	return append([]domain.Restaurant(nil), b.restaurants...), nil
}

func (b *fakeBackend) RegisterRestaurant(_ context.Context, record domain.RegistrationRecord) error {
	b.wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registrations = append(b.registrations, record)
	return b.err
}

func (b *fakeBackend) AddSlot(_ context.Context, _ string, req domain.AddSlotRequest) error {
	b.wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addedSlots = append(b.addedSlots, req)
	return b.err
}

func (b *fakeBackend) ListSlots(_ context.Context, _ string) ([]domain.Slot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.slotFetches++
	if b.err != nil {
		return nil, b.err
	}
	return append([]domain.Slot(nil), b.slots...), nil
}

func (b *fakeBackend) CreateBooking(_ context.Context, req domain.BookingRequest) error {
	b.wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bookings = append(b.bookings, req)
	return b.err
}

func (b *fakeBackend) setErr(err error) {
	b.mu.Lock()
	b.err = err
	b.mu.Unlock()
}

func (b *fakeBackend) bookingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.bookings)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type recordingNotifier struct {
	mu          sync.Mutex
	invalidated []string
}

func (n *recordingNotifier) Invalidate(restaurantID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invalidated = append(n.invalidated, restaurantID)
}

var testStart = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestDeps(backend *fakeBackend) (Dependencies, *clock.FakeClock, *recordingPublisher) {
	fake := clock.Fake(testStart)
	publisher := &recordingPublisher{}
	n := 0
	return Dependencies{
		Backend:   backend,
		Publisher: publisher,
		Clock:     fake,
		NewID: func() string {
			n++
			return "uuid-" + strconv.Itoa(n)
		},
	}, fake, publisher
}
