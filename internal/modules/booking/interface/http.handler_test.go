package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"mesaYaBooking/internal/modules/booking/application/port"
	"mesaYaBooking/internal/modules/booking/application/usecase"
	"mesaYaBooking/internal/modules/booking/domain"
	"mesaYaBooking/internal/modules/booking/infrastructure"
	"mesaYaBooking/internal/shared/clock"
)

type stubBackend struct {
	mu           sync.Mutex
	restaurants  []domain.Restaurant
	slots        []domain.Slot
	bookingErr   error
	bookings     []domain.BookingRequest
	registered   []domain.RegistrationRecord
	addedSlots   []domain.AddSlotRequest
	searchFilter domain.SearchFilters
}

func (b *stubBackend) SearchRestaurants(_ context.Context, filters domain.SearchFilters) ([]domain.Restaurant, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.searchFilter = filters
	return append([]domain.Restaurant(nil), b.restaurants...), nil
}

func (b *stubBackend) RegisterRestaurant(_ context.Context, record domain.RegistrationRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registered = append(b.registered, record)
	return nil
}

func (b *stubBackend) AddSlot(_ context.Context, _ string, req domain.AddSlotRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addedSlots = append(b.addedSlots, req)
	return nil
}

func (b *stubBackend) ListSlots(context.Context, string) ([]domain.Slot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Slot(nil), b.slots...), nil
}

func (b *stubBackend) CreateBooking(_ context.Context, req domain.BookingRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bookingErr != nil {
		return b.bookingErr
	}
	b.bookings = append(b.bookings, req)
	return nil
}

var _ port.BookingBackend = (*stubBackend)(nil)

type testServer struct {
	echo     *echo.Echo
	sessions *SessionStore
	clock    *clock.FakeClock
	cookie   *http.Cookie
}

func newTestServer(t *testing.T, backend *stubBackend) *testServer {
	t.Helper()
	fake := clock.Fake(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	registry := prometheus.NewRegistry()
	metrics := infrastructure.NewMetrics(registry)
	ids := 0
	deps := usecase.Dependencies{
		Backend: backend,
		Clock:   fake,
		NewID: func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		},
	}
	sessions := NewSessionStore(time.Minute, fake, func() *usecase.Shell { return usecase.NewShell(deps) }, metrics.ActiveSessions)

	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("unexpected renderer error: %v", err)
	}
	e := echo.New()
	e.Renderer = renderer
	e.Use(MetricsMiddleware(metrics))
	NewHandler(sessions, infrastructure.NewAvailabilityHub(metrics)).Register(e)
	RegisterOps(e, registry)
	return &testServer{echo: e, sessions: sessions, clock: fake}
}

func (s *testServer) do(t *testing.T, method, path string, form url.Values, asJSON bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if asJSON {
		req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	}
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == SessionCookie {
			s.cookie = cookie
		}
	}
	return rec
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) pageView {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var page pageView
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	return page
}

func pizzaBackend() *stubBackend {
	return &stubBackend{
		restaurants: []domain.Restaurant{{ID: "r1", Name: "Pizza Place", City: "Pune", Area: "Baner", Rating: 4.5, CostForTwo: 800}},
		slots: []domain.Slot{
			{ID: "s1", Hour: 18, Capacity: 4, Booked: 1},
			{ID: "s2", Hour: 20, Capacity: 2, Booked: 2},
		},
	}
}

func TestRootRedirectsToCustomer(t *testing.T) {
	server := newTestServer(t, &stubBackend{})
	rec := server.do(t, http.MethodGet, "/", nil, false)
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/customer" {
		t.Fatalf("expected redirect to /customer, got %d %s", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestRootRedirectHonoursTab(t *testing.T) {
	server := newTestServer(t, &stubBackend{})
	rec := server.do(t, http.MethodGet, "/?tab=OWNER", nil, false)
	if rec.Header().Get(echo.HeaderLocation) != "/owner" {
		t.Fatalf("expected redirect to /owner, got %s", rec.Header().Get(echo.HeaderLocation))
	}
	rec = server.do(t, http.MethodGet, "/?tab=kitchen", nil, false)
	if rec.Header().Get(echo.HeaderLocation) != "/customer" {
		t.Fatalf("expected unknown tab to fall back to /customer, got %s", rec.Header().Get(echo.HeaderLocation))
	}
}

func TestCustomerPageRendersHTMLAndSetsSession(t *testing.T) {
	server := newTestServer(t, &stubBackend{})
	rec := server.do(t, http.MethodGet, "/customer", nil, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Find a Restaurant") {
		t.Fatal("expected directory section in page")
	}
	if server.cookie == nil {
		t.Fatal("expected session cookie")
	}
	if server.sessions.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", server.sessions.Len())
	}

	server.do(t, http.MethodGet, "/customer", nil, false)
	if server.sessions.Len() != 1 {
		t.Fatalf("expected session reuse, got %d sessions", server.sessions.Len())
	}
}

func TestSearchShowsResultsAndEmptyState(t *testing.T) {
	backend := pizzaBackend()
	server := newTestServer(t, backend)

	page := decodePage(t, server.do(t, http.MethodPost, "/customer/search", url.Values{"name": {"Pizza"}, "city": {""}, "area": {""}}, true))
	if backend.searchFilter.Name != "Pizza" {
		t.Fatalf("expected name filter sent, got %+v", backend.searchFilter)
	}
	if page.Directory == nil || len(page.Directory.Results) != 1 {
		t.Fatalf("expected 1 result, got %+v", page.Directory)
	}
	card := page.Directory.Results[0]
	if card.Headline != "Pizza Place Baner, Pune" || card.Rating != "Rating: 4.5★" || card.Cost != "₹800 for two" {
		t.Fatalf("unexpected card %+v", card)
	}

	backend.restaurants = nil
	page = decodePage(t, server.do(t, http.MethodPost, "/customer/search", url.Values{"name": {"Nothing"}}, true))
	if page.Directory.EmptyMessage != usecase.MsgNoRestaurants {
		t.Fatalf("expected empty message, got %q", page.Directory.EmptyMessage)
	}

	page = decodePage(t, server.do(t, http.MethodPost, "/customer/filters", url.Values{"name": {"Other"}}, true))
	if page.Directory.EmptyMessage != "" || len(page.Directory.Results) != 0 {
		t.Fatalf("expected filter change to clear results, got %+v", page.Directory)
	}
}

func TestSingleFilterChange(t *testing.T) {
	backend := pizzaBackend()
	server := newTestServer(t, backend)
	server.do(t, http.MethodPost, "/customer/search", url.Values{"name": {"Pizza"}}, true)

	page := decodePage(t, server.do(t, http.MethodPost, "/customer/filters", url.Values{"field": {"city"}, "value": {"Pune"}}, true))
	if page.Directory.Filters.Name != "Pizza" || page.Directory.Filters.City != "Pune" {
		t.Fatalf("expected city added to existing filters, got %+v", page.Directory.Filters)
	}
	if len(page.Directory.Results) != 0 {
		t.Fatal("expected filter change to clear results")
	}

	rec := server.do(t, http.MethodPost, "/customer/filters", url.Values{"field": {"cuisine"}, "value": {"x"}}, false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown filter field, got %d", rec.Code)
	}
}

func TestSearchWithoutFiltersRedirects(t *testing.T) {
	server := newTestServer(t, &stubBackend{})
	rec := server.do(t, http.MethodPost, "/customer/search", url.Values{"name": {"  "}}, false)
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/customer" {
		t.Fatalf("expected redirect back to customer tab, got %d", rec.Code)
	}
}

func TestBookingFlowOverHTTP(t *testing.T) {
	backend := pizzaBackend()
	server := newTestServer(t, backend)
	server.do(t, http.MethodPost, "/customer/search", url.Values{"city": {"Pune"}}, true)

	rec := server.do(t, http.MethodGet, "/customer/restaurants/r1/book", nil, false)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect after open, got %d", rec.Code)
	}
	html := server.do(t, http.MethodGet, "/customer", nil, false).Body.String()
	if !strings.Contains(html, "18:00 - Available: 3") || !strings.Contains(html, "/ws/restaurants/r1/slots") {
		t.Fatal("expected slot options and stream path in modal")
	}

	page := decodePage(t, server.do(t, http.MethodPost, "/customer/restaurants/r1/book", url.Values{"slot_id": {"s1"}, "number_of_people": {"2"}}, true))
	if len(backend.bookings) != 1 || backend.bookings[0].NumberOfPeople != 2 || backend.bookings[0].SlotID != "s1" {
		t.Fatalf("unexpected bookings %+v", backend.bookings)
	}
	if page.Booking == nil || page.Booking.Banner == nil || page.Booking.Banner.Messages[0] != domain.MsgBookingSuccess {
		t.Fatalf("expected success banner, got %+v", page.Booking)
	}
	if page.RefreshAfter != usecase.DefaultCloseDelay.Milliseconds() {
		t.Fatalf("expected refresh after close delay, got %d", page.RefreshAfter)
	}

	server.clock.Advance(usecase.DefaultCloseDelay)
	page = decodePage(t, server.do(t, http.MethodGet, "/customer", nil, true))
	if page.Booking != nil {
		t.Fatal("expected modal closed after confirmation delay")
	}
}

func TestBookingAcceptsSlotAddedAfterOpen(t *testing.T) {
	backend := pizzaBackend()
	server := newTestServer(t, backend)
	server.do(t, http.MethodPost, "/customer/search", url.Values{"city": {"Pune"}}, true)
	server.do(t, http.MethodGet, "/customer/restaurants/r1/book", nil, true)

	backend.mu.Lock()
	backend.slots = append(backend.slots, domain.Slot{ID: "s3", Hour: 21, Capacity: 5})
	backend.mu.Unlock()

	page := decodePage(t, server.do(t, http.MethodPost, "/customer/restaurants/r1/book", url.Values{"slot_id": {"s3"}, "number_of_people": {"4"}}, true))
	if len(backend.bookings) != 1 || backend.bookings[0].SlotID != "s3" || backend.bookings[0].NumberOfPeople != 4 {
		t.Fatalf("expected booking for the new slot, got %+v", backend.bookings)
	}
	if page.Booking == nil || len(page.Booking.Options) != 3 {
		t.Fatalf("expected reloaded options, got %+v", page.Booking)
	}
	if page.Booking.Banner == nil || page.Booking.Banner.Messages[0] != domain.MsgBookingSuccess {
		t.Fatalf("expected success banner, got %+v", page.Booking.Banner)
	}
}

func TestApplySlotsRefreshesOpenBookings(t *testing.T) {
	backend := pizzaBackend()
	server := newTestServer(t, backend)
	server.do(t, http.MethodPost, "/customer/search", url.Values{"city": {"Pune"}}, true)
	server.do(t, http.MethodGet, "/customer/restaurants/r1/book", nil, true)

	if n := server.sessions.ApplySlots("r9", nil); n != 0 {
		t.Fatalf("expected no session for r9, got %d", n)
	}
	fresh := []domain.Slot{{ID: "s1", Hour: 18, Capacity: 4, Booked: 4}, {ID: "s4", Hour: 22, Capacity: 2}}
	if n := server.sessions.ApplySlots("r1", fresh); n != 1 {
		t.Fatalf("expected 1 refreshed session, got %d", n)
	}
	page := decodePage(t, server.do(t, http.MethodGet, "/customer", nil, true))
	options := page.Booking.Options
	if len(options) != 2 || !options[0].Disabled || options[1].ID != "s4" {
		t.Fatalf("expected refreshed options, got %+v", options)
	}

	page = decodePage(t, server.do(t, http.MethodPost, "/customer/restaurants/r1/book", url.Values{"slot_id": {"s1"}, "number_of_people": {"1"}}, true))
	if len(backend.bookings) != 0 {
		t.Fatal("expected no booking for a slot the refresh reported full")
	}
	if page.Booking.Banner == nil || page.Booking.Banner.Messages[0] != domain.MsgSlotFull {
		t.Fatalf("expected slot full banner, got %+v", page.Booking.Banner)
	}
}

func TestBookingValidationStaysLocal(t *testing.T) {
	backend := pizzaBackend()
	server := newTestServer(t, backend)
	server.do(t, http.MethodPost, "/customer/search", url.Values{"city": {"Pune"}}, true)
	server.do(t, http.MethodGet, "/customer/restaurants/r1/book", nil, true)

	page := decodePage(t, server.do(t, http.MethodPost, "/customer/restaurants/r1/book", url.Values{"number_of_people": {"2"}}, true))
	if len(backend.bookings) != 0 {
		t.Fatal("expected no backend call without a slot")
	}
	if page.Booking.Banner == nil || page.Booking.Banner.Messages[0] != domain.MsgSelectSlot {
		t.Fatalf("expected select-slot banner, got %+v", page.Booking.Banner)
	}

	page = decodePage(t, server.do(t, http.MethodPost, "/customer/restaurants/r1/select", url.Values{"slot_id": {"s2"}}, true))
	if page.Booking.SelectedID != "" {
		t.Fatal("expected full slot to be refused")
	}
}

func TestBookingUnknownRestaurantIsNotFound(t *testing.T) {
	server := newTestServer(t, pizzaBackend())
	rec := server.do(t, http.MethodGet, "/customer/restaurants/r9/book", nil, false)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	rec = server.do(t, http.MethodPost, "/customer/restaurants/r9/book", url.Values{}, false)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without open modal, got %d", rec.Code)
	}
}

func registrationForm() url.Values {
	return url.Values{
		"name":          {"Curry House"},
		"city":          {"Mumbai"},
		"area":          {"Andheri"},
		"cuisine":       {"Indian"},
		"rating":        {"4.2"},
		"cost_for_two":  {"900"},
		"is_veg":        {"on"},
		"slot_date":     {"2024-05-01"},
		"slot_hour":     {"19"},
		"slot_capacity": {"6"},
	}
}

func TestRegisterRestaurantOverHTTP(t *testing.T) {
	backend := &stubBackend{}
	server := newTestServer(t, backend)

	page := decodePage(t, server.do(t, http.MethodPost, "/owner/register", registrationForm(), true))
	if len(backend.registered) != 1 {
		t.Fatalf("expected 1 registration, got %d", len(backend.registered))
	}
	record := backend.registered[0]
	if !record.IsVeg || len(record.Slots) != 1 || record.Slots[0].Hour != 19 || record.Slots[0].RestaurantID != record.ID {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.Slots[0].Date != "2024-05-01T00:00:00" {
		t.Fatalf("unexpected slot date %s", record.Slots[0].Date)
	}
	if page.Tab != string(usecase.TabOwner) || page.Registration.Banner == nil || page.Registration.Banner.Messages[0] != domain.MsgRegistrationSuccess {
		t.Fatalf("expected success banner, got %+v", page.Registration)
	}
	if page.Registration.Form.Name != "" {
		t.Fatal("expected form cleared after registration")
	}
}

func TestRegisterValidationBlocksRequest(t *testing.T) {
	backend := &stubBackend{}
	server := newTestServer(t, backend)

	form := registrationForm()
	form.Set("name", "ab")
	page := decodePage(t, server.do(t, http.MethodPost, "/owner/register", form, true))
	if len(backend.registered) != 0 {
		t.Fatal("expected no backend call on invalid form")
	}
	if page.Registration.Banner == nil || page.Registration.Banner.Kind != "error" {
		t.Fatalf("expected error banner, got %+v", page.Registration.Banner)
	}
	if page.Registration.Form.City != "Mumbai" {
		t.Fatal("expected typed values kept")
	}
}

func TestSlotRowsOverHTTP(t *testing.T) {
	server := newTestServer(t, &stubBackend{})
	server.do(t, http.MethodGet, "/owner", nil, true)

	page := decodePage(t, server.do(t, http.MethodPost, "/owner/slots/add", registrationForm(), true))
	if len(page.Registration.Rows) != 2 || page.Registration.Rows[0].Hour != "19" {
		t.Fatalf("expected posted row kept plus a new one, got %+v", page.Registration.Rows)
	}

	rec := server.do(t, http.MethodPost, "/owner/slots/7/remove", url.Values{}, false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out of range row, got %d", rec.Code)
	}
	page = decodePage(t, server.do(t, http.MethodPost, "/owner/slots/0/remove", url.Values{}, true))
	if len(page.Registration.Rows) != 1 {
		t.Fatalf("expected 1 row after removal, got %d", len(page.Registration.Rows))
	}
}

func TestSlotRowCellUpdate(t *testing.T) {
	server := newTestServer(t, &stubBackend{})
	server.do(t, http.MethodGet, "/owner", nil, true)

	page := decodePage(t, server.do(t, http.MethodPost, "/owner/slots/0/hour", url.Values{"value": {"20"}}, true))
	if page.Registration.Rows[0].Hour != "20" {
		t.Fatalf("expected hour updated, got %+v", page.Registration.Rows[0])
	}
	if rec := server.do(t, http.MethodPost, "/owner/slots/0/booked", url.Values{"value": {"1"}}, false); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
	if rec := server.do(t, http.MethodPost, "/owner/slots/3/date", url.Values{"value": {"2024-05-01"}}, false); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out of range row, got %d", rec.Code)
	}
}

func TestSlotFormOverHTTP(t *testing.T) {
	backend := &stubBackend{}
	server := newTestServer(t, backend)

	server.do(t, http.MethodGet, "/owner/restaurants/r1/slots", nil, false)
	page := decodePage(t, server.do(t, http.MethodPost, "/owner/restaurants/r1/slots", url.Values{"date": {"2024-05-01"}, "time": {"18:00"}, "tables": {"3"}}, true))
	if len(backend.addedSlots) != 1 || backend.addedSlots[0].Tables != 3 {
		t.Fatalf("unexpected added slots %+v", backend.addedSlots)
	}
	if page.SlotForm == nil || page.SlotForm.Banner == nil || page.SlotForm.Banner.Messages[0] != domain.MsgSlotAdded {
		t.Fatalf("expected slot added banner, got %+v", page.SlotForm)
	}

	page = decodePage(t, server.do(t, http.MethodPost, "/owner/restaurants/r1/slots/cancel", url.Values{}, true))
	if page.SlotForm != nil {
		t.Fatal("expected slot form closed")
	}
}

func TestStreamRequiresOpenBooking(t *testing.T) {
	server := newTestServer(t, pizzaBackend())
	rec := server.do(t, http.MethodGet, "/ws/restaurants/r1/slots", nil, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}
	server.do(t, http.MethodGet, "/customer", nil, false)
	rec = server.do(t, http.MethodGet, "/ws/restaurants/r1/slots", nil, false)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without open booking, got %d", rec.Code)
	}
}

func TestOpsEndpoints(t *testing.T) {
	server := newTestServer(t, &stubBackend{})
	server.do(t, http.MethodGet, "/customer", nil, false)

	rec := server.do(t, http.MethodGet, "/healthz", nil, false)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("unexpected healthz response %d %s", rec.Code, rec.Body.String())
	}
	rec = server.do(t, http.MethodGet, "/metrics", nil, false)
	body := rec.Body.String()
	if !strings.Contains(body, "mesaya_http_requests_total") || !strings.Contains(body, "mesaya_sessions_active 1") {
		t.Fatalf("expected shell metrics exported, got %s", body)
	}
}

func TestSessionSweepEvictsIdleSessions(t *testing.T) {
	server := newTestServer(t, &stubBackend{})
	server.do(t, http.MethodGet, "/customer", nil, false)
	first := server.cookie.Value

	server.clock.Advance(2 * time.Minute)
	if removed := server.sessions.Sweep(); removed != 1 {
		t.Fatalf("expected 1 evicted session, got %d", removed)
	}
	server.do(t, http.MethodGet, "/customer", nil, false)
	if server.cookie.Value == first {
		t.Fatal("expected a new session after eviction")
	}
}
