package transport

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"mesaYaBooking/internal/modules/booking/application/usecase"
	"mesaYaBooking/internal/modules/booking/domain"
	"mesaYaBooking/internal/shared/normalization"
)

const ownerPath = "/owner"

func (h *Handler) showOwner(c echo.Context) error {
	session := h.sessions.Resolve(c)
	session.Shell.SwitchTab(usecase.TabOwner)
	return h.render(c, session)
}

func restaurantFormFrom(values url.Values) domain.RestaurantForm {
	return domain.RestaurantForm{
		Name:       values.Get("name"),
		City:       values.Get("city"),
		Area:       values.Get("area"),
		Cuisine:    values.Get("cuisine"),
		Rating:     values.Get("rating"),
		CostForTwo: values.Get("cost_for_two"),
		IsVeg:      normalization.AsBool(values.Get("is_veg")),
	}
}

// slotRowsFrom zips the positional slot_date/slot_hour/slot_capacity columns. The
// longest column decides the row count; missing cells are empty.
func slotRowsFrom(values url.Values) []domain.SlotRow {
	dates, hours, capacities := values["slot_date"], values["slot_hour"], values["slot_capacity"]
	count := max(len(dates), len(hours), len(capacities))
	rows := make([]domain.SlotRow, count)
	for i := range rows {
		rows[i] = domain.SlotRow{Date: cell(dates, i), Hour: cell(hours, i), Capacity: cell(capacities, i)}
	}
	return rows
}

func cell(column []string, i int) string {
	if i < len(column) {
		return column[i]
	}
	return ""
}

// captureOwnerForm stores whatever the registration form posted so that a row edit does
// not lose the values typed so far.
func (h *Handler) captureOwnerForm(c echo.Context, session *Session) (domain.RestaurantForm, error) {
	values, err := c.FormParams()
	if err != nil {
		return domain.RestaurantForm{}, err
	}
	form := restaurantFormFrom(values)
	session.SetForm(form)
	if len(values["slot_date"])+len(values["slot_hour"])+len(values["slot_capacity"]) > 0 {
		session.Shell.Registration().ReplaceRows(slotRowsFrom(values))
	}
	return form, nil
}

func (h *Handler) register(c echo.Context) error {
	session := h.sessions.Resolve(c)
	session.Shell.SwitchTab(usecase.TabOwner)
	form, err := h.captureOwnerForm(c, session)
	if err != nil {
		return h.finish(c, session, err, ownerPath)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), actionTimeout)
	defer cancel()
	record, err := session.Shell.Registration().Submit(ctx, form)
	if err == nil {
		session.SetForm(domain.RestaurantForm{})
		slog.Info("restaurant registered", slog.String("sessionId", session.ID), slog.String("restaurantId", record.ID), slog.Int("slots", len(record.Slots)))
	}
	return h.finish(c, session, err, ownerPath)
}

func (h *Handler) addSlotRow(c echo.Context) error {
	session := h.sessions.Resolve(c)
	if _, err := h.captureOwnerForm(c, session); err != nil {
		return h.finish(c, session, err, ownerPath)
	}
	session.Shell.Registration().AddSlotRow()
	return h.finish(c, session, nil, ownerPath)
}

func (h *Handler) removeSlotRow(c echo.Context) error {
	session := h.sessions.Resolve(c)
	index, err := strconv.Atoi(strings.TrimSpace(c.Param("index")))
	if err != nil {
		return h.finish(c, session, domain.ErrRowOutOfRange, ownerPath)
	}
	if _, err := h.captureOwnerForm(c, session); err != nil {
		return h.finish(c, session, err, ownerPath)
	}
	return h.finish(c, session, session.Shell.Registration().RemoveSlotRow(index), ownerPath)
}

// updateSlotRow edits one cell of the slot table.
func (h *Handler) updateSlotRow(c echo.Context) error {
	session := h.sessions.Resolve(c)
	index, err := strconv.Atoi(strings.TrimSpace(c.Param("index")))
	if err != nil {
		return h.finish(c, session, domain.ErrRowOutOfRange, ownerPath)
	}
	field, err := domain.ParseSlotField(c.Param("field"))
	if err != nil {
		return h.finish(c, session, err, ownerPath)
	}
	return h.finish(c, session, session.Shell.Registration().UpdateSlotRow(index, field, c.FormValue("value")), ownerPath)
}

func (h *Handler) openSlotForm(c echo.Context) error {
	session := h.sessions.Resolve(c)
	session.Shell.SwitchTab(usecase.TabOwner)
	_, err := session.Shell.OpenSlotForm(c.Param("id"))
	return h.finish(c, session, err, ownerPath)
}

func (h *Handler) submitSlotForm(c echo.Context) error {
	session := h.sessions.Resolve(c)
	flow, err := session.Shell.OpenSlotForm(c.Param("id"))
	if err != nil {
		return h.finish(c, session, err, ownerPath)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), actionTimeout)
	defer cancel()
	err = flow.Submit(ctx, c.FormValue("date"), c.FormValue("time"), c.FormValue("tables"))
	return h.finish(c, session, err, ownerPath)
}

func (h *Handler) closeSlotForm(c echo.Context) error {
	session := h.sessions.Resolve(c)
	session.Shell.CloseSlotForm()
	return h.finish(c, session, nil, ownerPath)
}
