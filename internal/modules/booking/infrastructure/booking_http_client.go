package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mesaYaBooking/internal/modules/booking/application/port"
	"mesaYaBooking/internal/modules/booking/domain"
)

const (
	opSearchRestaurants  = "search_restaurants"
	opRegisterRestaurant = "register_restaurant"
	opAddSlot            = "add_slot"
	opListSlots          = "list_slots"
	opCreateBooking      = "create_booking"

	restaurantsPath = "/restaurants"
	bookingsPath    = "/bookings"
)

// BookingHTTPClient implements port.BookingBackend against the booking REST API.
type BookingHTTPClient struct {
	rest    *RESTClient
	timeout time.Duration
	metrics *Metrics
}

func NewBookingHTTPClient(baseURL string, timeout time.Duration, client *http.Client, metrics *Metrics) *BookingHTTPClient {
	return &BookingHTTPClient{
		rest:    NewRESTClient(baseURL, timeout, client),
		timeout: timeoutOrDefault(timeout),
		metrics: metrics,
	}
}

func slotsPath(restaurantID string) (string, error) {
	identifier := strings.TrimSpace(restaurantID)
	if identifier == "" {
		return "", fmt.Errorf("missing restaurant id")
	}
	return restaurantsPath + "/" + url.PathEscape(identifier) + "/slots", nil
}

func (c *BookingHTTPClient) SearchRestaurants(ctx context.Context, filters domain.SearchFilters) ([]domain.Restaurant, error) {
	var restaurants []domain.Restaurant
	err := c.call(ctx, opSearchRestaurants, http.MethodGet, restaurantsPath, filters.Values(), nil, func(body io.Reader) error {
		payload, err := decodePayload(body)
		if err != nil {
			return err
		}
		restaurants = domain.BuildRestaurantList(payload)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return restaurants, nil
}

func (c *BookingHTTPClient) RegisterRestaurant(ctx context.Context, record domain.RegistrationRecord) error {
	return c.call(ctx, opRegisterRestaurant, http.MethodPost, restaurantsPath, nil, record, nil)
}

func (c *BookingHTTPClient) AddSlot(ctx context.Context, restaurantID string, req domain.AddSlotRequest) error {
	path, err := slotsPath(restaurantID)
	if err != nil {
		return err
	}
	return c.call(ctx, opAddSlot, http.MethodPost, path, nil, req, nil)
}

func (c *BookingHTTPClient) ListSlots(ctx context.Context, restaurantID string) ([]domain.Slot, error) {
	path, err := slotsPath(restaurantID)
	if err != nil {
		return nil, err
	}
	var slots []domain.Slot
	err = c.call(ctx, opListSlots, http.MethodGet, path, nil, nil, func(body io.Reader) error {
		payload, err := decodePayload(body)
		if err != nil {
			return err
		}
		slots = domain.BuildSlotList(payload)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (c *BookingHTTPClient) CreateBooking(ctx context.Context, req domain.BookingRequest) error {
	return c.call(ctx, opCreateBooking, http.MethodPost, bookingsPath, nil, req, nil)
}

// call performs one request under the client timeout. Non-2xx responses become
// *port.RejectedError; transport failures, deadlines and undecodable success bodies wrap
// port.ErrNetwork. onSuccess, when set, reads the body before the deadline is released.
func (c *BookingHTTPClient) call(ctx context.Context, operation, method, path string, query url.Values, payload any, onSuccess func(io.Reader) error) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.rest.NewJSONRequest(ctx, method, path, query, payload)
	if err != nil {
		slog.Error("backend request build failed", slog.String("operation", operation), slog.String("path", path), slog.Any("error", err))
		return fmt.Errorf("%s: %w", operation, err)
	}
	slog.Debug("backend request", slog.String("operation", operation), slog.String("method", method), slog.String("url", req.URL.String()))

	started := time.Now()
	res, err := c.rest.Do(req)
	if err != nil {
		c.metrics.ObserveBackend(operation, OutcomeNetwork, time.Since(started))
		slog.Error("backend request error", slog.String("operation", operation), slog.String("path", path), slog.Any("error", err))
		return fmt.Errorf("%w: %s: %w", port.ErrNetwork, operation, err)
	}
	defer res.Body.Close()
	slog.Debug("backend response", slog.String("operation", operation), slog.Int("status", res.StatusCode), slog.String("url", req.URL.String()))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		c.metrics.ObserveBackend(operation, OutcomeRejected, time.Since(started))
		messages := decodeErrorMessages(res.Body)
		slog.Warn("backend rejected request", slog.String("operation", operation), slog.Int("status", res.StatusCode), slog.Any("messages", messages))
		return &port.RejectedError{Status: res.StatusCode, Messages: messages}
	}

	if onSuccess != nil {
		if err := onSuccess(res.Body); err != nil {
			c.metrics.ObserveBackend(operation, OutcomeNetwork, time.Since(started))
			slog.Error("backend response decode failed", slog.String("operation", operation), slog.Any("error", err))
			return fmt.Errorf("%w: %s: %w", port.ErrNetwork, operation, err)
		}
	}
	c.metrics.ObserveBackend(operation, OutcomeOK, time.Since(started))
	return nil
}

func decodePayload(body io.Reader) (any, error) {
	var payload any
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return payload, nil
}

var _ port.BookingBackend = (*BookingHTTPClient)(nil)
