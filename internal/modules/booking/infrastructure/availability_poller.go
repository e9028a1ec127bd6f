package infrastructure

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"mesaYaBooking/internal/modules/booking/application/port"
	"mesaYaBooking/internal/modules/booking/domain"
	"mesaYaBooking/internal/shared/clock"
)

// SlotLister is the slice of the backend the poller needs.
type SlotLister interface {
	ListSlots(ctx context.Context, restaurantID string) ([]domain.Slot, error)
}

// AvailabilityPoller refetches slots for every watched restaurant on an interval and
// on demand, broadcasting the derived options through the hub.
type AvailabilityPoller struct {
	hub      *AvailabilityHub
	lister   SlotLister
	interval time.Duration
	clock    clock.Clock
	pending  chan string

	mu        sync.Mutex
	listeners []func(restaurantID string, slots []domain.Slot)
}

func NewAvailabilityPoller(hub *AvailabilityHub, lister SlotLister, interval time.Duration, clk clock.Clock) *AvailabilityPoller {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if clk == nil {
		clk = clock.Real()
	}
	poller := &AvailabilityPoller{
		hub:      hub,
		lister:   lister,
		interval: interval,
		clock:    clk,
		pending:  make(chan string, 64),
	}
	hub.OnRefresh(poller.Invalidate)
	return poller
}

// OnSlots registers fn to receive every successfully refetched slot list, so server-side
// state can follow what the stream shows.
func (p *AvailabilityPoller) OnSlots(fn func(restaurantID string, slots []domain.Slot)) {
	if fn == nil {
		return
	}
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

// Invalidate queues an immediate refetch for the restaurant. It never blocks; when the
// queue is full the next tick covers the restaurant anyway.
func (p *AvailabilityPoller) Invalidate(restaurantID string) {
	restaurantID = strings.TrimSpace(restaurantID)
	if restaurantID == "" {
		return
	}
	select {
	case p.pending <- restaurantID:
	default:
		slog.Debug("availability refresh queue full", slog.String("restaurantId", restaurantID))
	}
}

// Run serves refresh requests until ctx is cancelled.
func (p *AvailabilityPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	slog.Info("availability poller started", slog.Duration("interval", p.interval))

	for {
		select {
		case <-ctx.Done():
			slog.Info("availability poller stopped")
			return
		case restaurantID := <-p.pending:
			p.Refresh(ctx, restaurantID)
		case <-ticker.C:
			for _, restaurantID := range p.hub.Topics() {
				p.Refresh(ctx, restaurantID)
			}
		}
	}
}

// Refresh fetches and broadcasts one restaurant's availability. Restaurants nobody
// watches are skipped; a failed fetch keeps the last broadcast in place.
func (p *AvailabilityPoller) Refresh(ctx context.Context, restaurantID string) bool {
	if !p.hub.Watched(restaurantID) {
		return false
	}
	slots, err := p.lister.ListSlots(ctx, restaurantID)
	if err != nil {
		slog.Warn("availability refresh failed", slog.String("restaurantId", restaurantID), slog.Any("error", err))
		return false
	}
	p.hub.Broadcast(domain.NewAvailabilityUpdate(restaurantID, slots, p.clock.Now()))

	p.mu.Lock()
	listeners := append([]func(string, []domain.Slot){}, p.listeners...)
	p.mu.Unlock()
	for _, fn := range listeners {
		fn(restaurantID, slots)
	}
	return true
}

var _ port.AvailabilityNotifier = (*AvailabilityPoller)(nil)
