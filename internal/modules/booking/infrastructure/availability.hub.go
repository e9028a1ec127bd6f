package infrastructure

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"mesaYaBooking/internal/modules/booking/domain"
)

// AvailabilityHub fans slot availability out to the booking views watching a restaurant.
// The topic of a client is the restaurant id it was opened for.
type AvailabilityHub struct {
	topics  map[string]map[*StreamClient]struct{}
	latest  map[string][]byte
	refresh func(restaurantID string)
	metrics *Metrics
	mu      sync.RWMutex
}

func NewAvailabilityHub(metrics *Metrics) *AvailabilityHub {
	return &AvailabilityHub{
		topics:  make(map[string]map[*StreamClient]struct{}),
		latest:  make(map[string][]byte),
		metrics: metrics,
	}
}

// OnRefresh installs the callback used when a client asks for fresh availability.
func (h *AvailabilityHub) OnRefresh(fn func(restaurantID string)) {
	h.mu.Lock()
	h.refresh = fn
	h.mu.Unlock()
}

// Attach subscribes the client to its restaurant, replays the last known update and
// requests a refetch.
func (h *AvailabilityHub) Attach(c *StreamClient) {
	h.mu.Lock()
	if h.topics[c.restaurantID] == nil {
		h.topics[c.restaurantID] = make(map[*StreamClient]struct{})
	}
	h.topics[c.restaurantID][c] = struct{}{}
	cached := h.latest[c.restaurantID]
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.StreamClients.Inc()
	}
	slog.Info("availability client attached", slog.String("restaurantId", c.restaurantID), slog.String("sessionId", c.sessionID))

	if cached != nil {
		c.enqueue(cached)
	}
	h.requestRefresh(c.restaurantID)
}

func (h *AvailabilityHub) detach(c *StreamClient) {
	if c == nil {
		return
	}
	h.mu.Lock()
	subs, ok := h.topics[c.restaurantID]
	if ok {
		if _, present := subs[c]; !present {
			ok = false
		}
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.topics, c.restaurantID)
			delete(h.latest, c.restaurantID)
		}
	}
	h.mu.Unlock()

	c.close()
	if !ok {
		return
	}
	if h.metrics != nil {
		h.metrics.StreamClients.Dec()
	}
	slog.Info("availability client detached", slog.String("restaurantId", c.restaurantID), slog.String("sessionId", c.sessionID))
}

// Broadcast delivers the update to every client of its restaurant. Clients whose send
// buffer is full are dropped.
func (h *AvailabilityHub) Broadcast(update domain.AvailabilityUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		slog.Error("availability marshal error", slog.Any("error", err))
		return
	}

	h.mu.Lock()
	subs := h.topics[update.RestaurantID]
	if len(subs) == 0 {
		h.mu.Unlock()
		return
	}
	h.latest[update.RestaurantID] = data
	clients := make([]*StreamClient, 0, len(subs))
	for c := range subs {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		select {
		case c.send <- data:
		default:
			slog.Warn("availability send buffer full", slog.String("restaurantId", c.restaurantID), slog.String("sessionId", c.sessionID))
			go h.detach(c)
		}
	}
}

// Topics lists the restaurants that currently have at least one live client.
func (h *AvailabilityHub) Topics() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	topics := make([]string, 0, len(h.topics))
	for topic := range h.topics {
		topics = append(topics, topic)
	}
	return topics
}

func (h *AvailabilityHub) Watched(restaurantID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[strings.TrimSpace(restaurantID)]) > 0
}

func (h *AvailabilityHub) requestRefresh(restaurantID string) {
	h.mu.RLock()
	fn := h.refresh
	h.mu.RUnlock()
	if fn != nil {
		fn(restaurantID)
	}
}
