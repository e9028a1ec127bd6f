package port

import (
	"errors"
	"fmt"
	"testing"
)

func TestAsRejectedThroughWrap(t *testing.T) {
	err := fmt.Errorf("create booking: %w", &RejectedError{Status: 409, Messages: []string{"Slot full"}})

	rejected, ok := AsRejected(err)
	if !ok {
		t.Fatalf("expected rejected error, got %v", err)
	}
	if rejected.Status != 409 || rejected.Messages[0] != "Slot full" {
		t.Fatalf("unexpected rejected error %+v", rejected)
	}
	if errors.Is(err, ErrNetwork) {
		t.Fatal("rejection must not be classified as network failure")
	}
}

func TestRejectedErrorMessage(t *testing.T) {
	err := &RejectedError{Status: 422}
	if err.Error() != "booking backend rejected request with status 422" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
