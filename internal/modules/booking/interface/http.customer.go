package transport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"mesaYaBooking/internal/modules/booking/application/usecase"
	"mesaYaBooking/internal/modules/booking/domain"
)

const customerPath = "/customer"

// actionTimeout bounds a whole shell action; each backend call carries its own deadline.
const actionTimeout = 30 * time.Second

func (h *Handler) showCustomer(c echo.Context) error {
	session := h.sessions.Resolve(c)
	session.Shell.SwitchTab(usecase.TabCustomer)
	return h.render(c, session)
}

func filtersFromForm(c echo.Context) (domain.SearchFilters, bool) {
	form, err := c.FormParams()
	if err != nil {
		return domain.SearchFilters{}, false
	}
	_, hasName := form["name"]
	_, hasCity := form["city"]
	_, hasArea := form["area"]
	if !hasName && !hasCity && !hasArea {
		return domain.SearchFilters{}, false
	}
	return domain.SearchFilters{
		Name: form.Get("name"),
		City: form.Get("city"),
		Area: form.Get("area"),
	}, true
}

// applyFilters takes either a single {field, value} change or the whole filter form.
func (h *Handler) applyFilters(c echo.Context) error {
	session := h.sessions.Resolve(c)
	if raw := c.FormValue("field"); raw != "" {
		field, ok := domain.ParseFilterField(raw)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown filter field")
		}
		session.Shell.Directory().SetFilter(field, c.FormValue("value"))
		return h.finish(c, session, nil, customerPath)
	}
	if filters, ok := filtersFromForm(c); ok {
		session.Shell.Directory().SetFilters(filters)
	}
	return h.finish(c, session, nil, customerPath)
}

// search runs the directory search. Filters posted with the request replace the current
// ones first, but only when they differ, so an unchanged form keeps its results.
func (h *Handler) search(c echo.Context) error {
	session := h.sessions.Resolve(c)
	directory := session.Shell.Directory()
	if filters, ok := filtersFromForm(c); ok && filters != directory.Snapshot().Filters {
		directory.SetFilters(filters)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), actionTimeout)
	defer cancel()
	err := directory.Search(ctx)
	return h.finish(c, session, err, customerPath)
}

func (h *Handler) openBooking(c echo.Context) error {
	session := h.sessions.Resolve(c)
	session.Shell.SwitchTab(usecase.TabCustomer)
	restaurantID := strings.TrimSpace(c.Param("id"))
	if session.Shell.BookingFor(restaurantID) == nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), actionTimeout)
		defer cancel()
		if _, err := session.Shell.OpenBooking(ctx, restaurantID); err != nil {
			return h.finish(c, session, err, customerPath)
		}
		slog.Info("booking modal opened", slog.String("sessionId", session.ID), slog.String("restaurantId", restaurantID))
	}
	return h.finish(c, session, nil, customerPath)
}

func (h *Handler) bookingFlow(session *Session, c echo.Context) (*usecase.BookingFlow, error) {
	flow := session.Shell.BookingFor(strings.TrimSpace(c.Param("id")))
	if flow == nil {
		return nil, usecase.ErrUnknownRestaurant
	}
	return flow, nil
}

// reloadForSlot refetches the modal's slots when slotID is not among them, which happens
// when the slot was added after the modal opened.
func (h *Handler) reloadForSlot(c echo.Context, flow *usecase.BookingFlow, slotID string) error {
	if strings.TrimSpace(slotID) == "" || flow.HasSlot(slotID) {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), actionTimeout)
	defer cancel()
	return flow.Load(ctx)
}

func (h *Handler) selectSlot(c echo.Context) error {
	session := h.sessions.Resolve(c)
	flow, err := h.bookingFlow(session, c)
	if err != nil {
		return h.finish(c, session, err, customerPath)
	}
	slotID := c.FormValue("slot_id")
	if err := h.reloadForSlot(c, flow, slotID); err != nil {
		return h.finish(c, session, err, customerPath)
	}
	return h.finish(c, session, flow.Select(slotID), customerPath)
}

func (h *Handler) setPartySize(c echo.Context) error {
	session := h.sessions.Resolve(c)
	flow, err := h.bookingFlow(session, c)
	if err != nil {
		return h.finish(c, session, err, customerPath)
	}
	flow.SetPartySize(c.FormValue("number_of_people"))
	return h.finish(c, session, nil, customerPath)
}

// submitBooking accepts the whole modal form: a posted slot and party size are applied
// before the reservation is sent.
func (h *Handler) submitBooking(c echo.Context) error {
	session := h.sessions.Resolve(c)
	flow, err := h.bookingFlow(session, c)
	if err != nil {
		return h.finish(c, session, err, customerPath)
	}
	form, err := c.FormParams()
	if err != nil {
		return h.finish(c, session, err, customerPath)
	}
	if _, ok := form["slot_id"]; ok && strings.TrimSpace(form.Get("slot_id")) != flow.Snapshot(session.Shell.Now()).SelectedID {
		if err := h.reloadForSlot(c, flow, form.Get("slot_id")); err != nil {
			return h.finish(c, session, err, customerPath)
		}
		if err := flow.Select(form.Get("slot_id")); err != nil {
			return h.finish(c, session, err, customerPath)
		}
	}
	if _, ok := form["number_of_people"]; ok {
		flow.SetPartySize(form.Get("number_of_people"))
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), actionTimeout)
	defer cancel()
	return h.finish(c, session, flow.Submit(ctx), customerPath)
}

func (h *Handler) cancelBooking(c echo.Context) error {
	session := h.sessions.Resolve(c)
	session.Shell.CloseBooking()
	return h.finish(c, session, nil, customerPath)
}
