package transport

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"mesaYaBooking/internal/modules/booking/infrastructure"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamAvailability upgrades to a websocket that receives the restaurant's slot options
// on connect and whenever they are refetched. Only a session with that restaurant's
// booking modal open may subscribe.
func (h *Handler) streamAvailability(c echo.Context) error {
	restaurantID := strings.TrimSpace(c.Param("id"))
	if restaurantID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing restaurant")
	}
	session, ok := h.sessions.Peek(c)
	if !ok {
		slog.Warn("availability stream without session", slog.String("restaurantId", restaurantID), slog.String("ip", c.RealIP()))
		return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	if session.Shell.BookingFor(restaurantID) == nil {
		slog.Warn("availability stream without open booking", slog.String("restaurantId", restaurantID), slog.String("sessionId", session.ID))
		return echo.NewHTTPError(http.StatusNotFound, "restaurant not found")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("availability upgrade failed", slog.String("restaurantId", restaurantID), slog.Any("error", err))
		return err
	}

	client := infrastructure.NewStreamClient(h.hub, conn, restaurantID, session.ID, 8)
	h.hub.Attach(client)
	go client.WritePump()
	client.ReadPump()
	return nil
}
