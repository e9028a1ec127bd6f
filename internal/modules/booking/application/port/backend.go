package port

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mesaYaBooking/internal/modules/booking/domain"
)

var (
	// ErrNetwork marks a request that produced no usable response: transport failure,
	// deadline, or an undecodable body.
	ErrNetwork = errors.New("booking backend unreachable")
)

// RejectedError is an application-level refusal from the backend carrying its messages.
type RejectedError struct {
	Status   int
	Messages []string
}

func (e *RejectedError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("booking backend rejected request with status %d", e.Status)
	}
	return fmt.Sprintf("booking backend rejected request with status %d: %s", e.Status, strings.Join(e.Messages, "; "))
}

// AsRejected unwraps err into a RejectedError when it is one.
func AsRejected(err error) (*RejectedError, bool) {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected, true
	}
	return nil, false
}

// BookingBackend is the remote API every flow talks to. Implementations must return
// *RejectedError for non-success responses and wrap ErrNetwork otherwise.
type BookingBackend interface {
	SearchRestaurants(ctx context.Context, filters domain.SearchFilters) ([]domain.Restaurant, error)
	RegisterRestaurant(ctx context.Context, record domain.RegistrationRecord) error
	AddSlot(ctx context.Context, restaurantID string, req domain.AddSlotRequest) error
	ListSlots(ctx context.Context, restaurantID string) ([]domain.Slot, error)
	CreateBooking(ctx context.Context, req domain.BookingRequest) error
}

// EventPublisher announces successful writes. Failures are logged by callers and never
// change the outcome shown to the user.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// AvailabilityNotifier is told when a restaurant's slot counts likely changed.
type AvailabilityNotifier interface {
	Invalidate(restaurantID string)
}
