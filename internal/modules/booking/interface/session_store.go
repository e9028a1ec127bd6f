package transport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"mesaYaBooking/internal/modules/booking/application/usecase"
	"mesaYaBooking/internal/modules/booking/domain"
	"mesaYaBooking/internal/shared/clock"
)

const SessionCookie = "mesaya_session"

// Session is the state of one browser: its shell and the last values typed into the
// registration form, which the server-rendered page echoes back.
type Session struct {
	ID    string
	Shell *usecase.Shell

	mu       sync.Mutex
	form     domain.RestaurantForm
	lastSeen time.Time
}

func (s *Session) Form() domain.RestaurantForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

func (s *Session) SetForm(form domain.RestaurantForm) {
	s.mu.Lock()
	s.form = form
	s.mu.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionStore keeps sessions in memory, keyed by the session cookie, and evicts the ones
// idle for longer than ttl.
type SessionStore struct {
	ttl      time.Duration
	clock    clock.Clock
	newShell func() *usecase.Shell
	gauge    prometheus.Gauge

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore(ttl time.Duration, clk clock.Clock, newShell func() *usecase.Shell, gauge prometheus.Gauge) *SessionStore {
	if clk == nil {
		clk = clock.Real()
	}
	return &SessionStore{
		ttl:      ttl,
		clock:    clk,
		newShell: newShell,
		gauge:    gauge,
		sessions: make(map[string]*Session),
	}
}

// Resolve returns the session of the request, creating it and setting the cookie when
// the browser has none or carries an evicted id.
func (s *SessionStore) Resolve(c echo.Context) *Session {
	now := s.clock.Now()
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		if session := s.lookup(strings.TrimSpace(cookie.Value), now); session != nil {
			return session
		}
	}

	session := &Session{ID: uuid.NewString(), Shell: s.newShell(), lastSeen: now}
	s.mu.Lock()
	s.sessions[session.ID] = session
	count := len(s.sessions)
	s.mu.Unlock()
	s.report(count)

	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	slog.Debug("session created", slog.String("sessionId", session.ID))
	return session
}

// Peek returns an existing session without creating one.
func (s *SessionStore) Peek(c echo.Context) (*Session, bool) {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}
	session := s.lookup(strings.TrimSpace(cookie.Value), s.clock.Now())
	return session, session != nil
}

func (s *SessionStore) lookup(id string, now time.Time) *Session {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	session, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	if s.expired(session, now) {
		s.evict(id)
		return nil
	}
	session.touch(now)
	return session
}

func (s *SessionStore) expired(session *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(session.idleSince()) > s.ttl
}

func (s *SessionStore) evict(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	count := len(s.sessions)
	s.mu.Unlock()
	s.report(count)
}

// Sweep drops every idle session and returns how many were removed.
func (s *SessionStore) Sweep() int {
	now := s.clock.Now()
	s.mu.Lock()
	removed := 0
	for id, session := range s.sessions {
		if s.expired(session, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()
	s.report(count)
	if removed > 0 {
		slog.Info("sessions evicted", slog.Int("removed", removed), slog.Int("active", count))
	}
	return removed
}

// RunJanitor sweeps on every interval until ctx is cancelled.
func (s *SessionStore) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// ApplySlots hands a fresh slot list to every open booking modal of restaurantID and
// returns how many were updated.
func (s *SessionStore) ApplySlots(restaurantID string, slots []domain.Slot) int {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.Unlock()

	updated := 0
	for _, session := range sessions {
		if flow := session.Shell.BookingFor(restaurantID); flow != nil {
			flow.ApplySlots(slots)
			updated++
		}
	}
	if updated > 0 {
		slog.Debug("open bookings refreshed", slog.String("restaurantId", restaurantID), slog.Int("sessions", updated))
	}
	return updated
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) report(count int) {
	if s.gauge != nil {
		s.gauge.Set(float64(count))
	}
}
