package transport

import (
	"errors"
	"net/http"

	"mesaYaBooking/internal/modules/booking/application/port"
	"mesaYaBooking/internal/modules/booking/application/usecase"
	"mesaYaBooking/internal/modules/booking/domain"
	"mesaYaBooking/internal/shared/httputil"
)

func newErrorMapper() *httputil.ErrorMapper {
	return httputil.NewErrorMapper().
		WithMapping(usecase.ErrUnknownRestaurant, http.StatusNotFound, "restaurant not found").
		WithMapping(usecase.ErrInFlight, http.StatusConflict, "request already in progress").
		WithMapping(usecase.ErrFlowClosed, http.StatusConflict, "already completed").
		WithMapping(domain.ErrRowOutOfRange, http.StatusBadRequest, "slot row out of range").
		WithMapping(domain.ErrUnknownField, http.StatusBadRequest, "unknown slot field").
		WithMapping(port.ErrNetwork, http.StatusBadGateway, "backend unavailable").
		WithMatcher(func(err error) bool {
			_, ok := port.AsRejected(err)
			return ok
		}, http.StatusUnprocessableEntity, "backend rejected request")
}

// shownAsBanner reports whether a flow already surfaced err to the user through a banner,
// in which case the page is rendered normally.
func shownAsBanner(err error) bool {
	if err == nil {
		return true
	}
	if _, ok := domain.AsValidation(err); ok {
		return true
	}
	if _, ok := port.AsRejected(err); ok {
		return true
	}
	return errors.Is(err, port.ErrNetwork) || errors.Is(err, usecase.ErrSearchDisabled)
}
