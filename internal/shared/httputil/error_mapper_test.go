package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

var errMissing = errors.New("missing")

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("status %d", e.code) }

func TestErrorMapperMatchesInOrder(t *testing.T) {
	mapper := NewErrorMapper().
		WithMapping(errMissing, http.StatusNotFound, "not found").
		WithMatcher(func(err error) bool {
			var target *statusError
			return errors.As(err, &target)
		}, http.StatusBadGateway, "upstream rejected").
		WithDefault(http.StatusTeapot, "unexpected")

	if info := mapper.Map(fmt.Errorf("lookup: %w", errMissing)); info.Status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", info.Status)
	}
	if info := mapper.Map(fmt.Errorf("call: %w", &statusError{code: 500})); info.Status != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", info.Status)
	}
	if info := mapper.Map(errors.New("other")); info.Status != http.StatusTeapot || info.Message != "unexpected" {
		t.Fatalf("expected default mapping, got %+v", info)
	}
	if info := mapper.Map(nil); info.Status != http.StatusOK {
		t.Fatalf("expected 200 for nil, got %d", info.Status)
	}
}

func TestErrorMapperContextFallbacks(t *testing.T) {
	mapper := NewErrorMapper()
	if info := mapper.Map(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)); info.Status != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", info.Status)
	}
	if info := mapper.Map(context.Canceled); info.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", info.Status)
	}
}
