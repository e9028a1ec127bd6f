package transport

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"mesaYaBooking/internal/modules/booking/application/usecase"
	"mesaYaBooking/internal/modules/booking/infrastructure"
	"mesaYaBooking/internal/shared/httputil"
)

// Handler serves the booking shell: the customer and owner tabs, their modals and the
// live availability stream.
type Handler struct {
	sessions *SessionStore
	hub      *infrastructure.AvailabilityHub
	errors   *httputil.ErrorMapper
}

func NewHandler(sessions *SessionStore, hub *infrastructure.AvailabilityHub) *Handler {
	return &Handler{sessions: sessions, hub: hub, errors: newErrorMapper()}
}

// Register mounts every shell route on e.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/"+string(usecase.ParseTab(c.QueryParam("tab"))))
	})

	customer := e.Group("/customer")
	customer.GET("", h.showCustomer)
	customer.POST("/filters", h.applyFilters)
	customer.POST("/search", h.search)
	customer.GET("/restaurants/:id/book", h.openBooking)
	customer.POST("/restaurants/:id/select", h.selectSlot)
	customer.POST("/restaurants/:id/party", h.setPartySize)
	customer.POST("/restaurants/:id/book", h.submitBooking)
	customer.POST("/restaurants/:id/cancel", h.cancelBooking)

	owner := e.Group("/owner")
	owner.GET("", h.showOwner)
	owner.POST("/register", h.register)
	owner.POST("/slots/add", h.addSlotRow)
	owner.POST("/slots/:index/remove", h.removeSlotRow)
	owner.POST("/slots/:index/:field", h.updateSlotRow)
	owner.GET("/restaurants/:id/slots", h.openSlotForm)
	owner.POST("/restaurants/:id/slots", h.submitSlotForm)
	owner.POST("/restaurants/:id/slots/cancel", h.closeSlotForm)

	e.GET("/ws/restaurants/:id/slots", h.streamAvailability)
}

// render writes the page of the session, as JSON when the client asks for it.
func (h *Handler) render(c echo.Context, session *Session) error {
	page := buildPage(session)
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, page)
	}
	return c.Render(http.StatusOK, "shell", page)
}

// finish completes a form action. Errors already shown in a banner re-render the page
// through a redirect; anything else becomes an HTTP error.
func (h *Handler) finish(c echo.Context, session *Session, err error, target string) error {
	if !shownAsBanner(err) {
		info := h.errors.Map(err)
		slog.Warn("shell action failed", slog.String("path", c.Path()), slog.Int("status", info.Status), slog.Any("error", err))
		return echo.NewHTTPError(info.Status, info.Message)
	}
	if wantsJSON(c) {
		return h.render(c, session)
	}
	return c.Redirect(http.StatusSeeOther, target)
}

func wantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
