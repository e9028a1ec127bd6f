package httputil

import (
	"context"
	"errors"
	"net/http"
)

// HTTPErrorInfo contains the HTTP status code and message for an error.
type HTTPErrorInfo struct {
	Status  int
	Message string
}

// ErrorMapping maps errors matching Match to a status and message.
type ErrorMapping struct {
	Match   func(error) bool
	Status  int
	Message string
}

// ErrorMapper maps domain errors to HTTP status codes and messages. Mappings are tried in
// registration order; the first match wins.
type ErrorMapper struct {
	mappings       []ErrorMapping
	defaultStatus  int
	defaultMessage string
}

func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{
		mappings:       make([]ErrorMapping, 0),
		defaultStatus:  http.StatusInternalServerError,
		defaultMessage: "internal server error",
	}
}

// WithMapping maps every error for which errors.Is(err, target) holds.
func (m *ErrorMapper) WithMapping(target error, status int, message string) *ErrorMapper {
	return m.WithMatcher(func(err error) bool { return errors.Is(err, target) }, status, message)
}

// WithMatcher maps errors selected by an arbitrary predicate, typically an errors.As check.
func (m *ErrorMapper) WithMatcher(match func(error) bool, status int, message string) *ErrorMapper {
	m.mappings = append(m.mappings, ErrorMapping{Match: match, Status: status, Message: message})
	return m
}

// WithDefault sets the default status and message for unmatched errors.
func (m *ErrorMapper) WithDefault(status int, message string) *ErrorMapper {
	m.defaultStatus = status
	m.defaultMessage = message
	return m
}

// Map converts an error to HTTP status and message.
func (m *ErrorMapper) Map(err error) HTTPErrorInfo {
	if err == nil {
		return HTTPErrorInfo{Status: http.StatusOK}
	}

	// Check registered mappings
	for _, mapping := range m.mappings {
		if mapping.Match != nil && mapping.Match(err) {
			return HTTPErrorInfo{Status: mapping.Status, Message: mapping.Message}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return HTTPErrorInfo{Status: http.StatusGatewayTimeout, Message: "request timeout"}
	}
	if errors.Is(err, context.Canceled) {
		return HTTPErrorInfo{Status: http.StatusServiceUnavailable, Message: "request cancelled"}
	}
	return HTTPErrorInfo{Status: m.defaultStatus, Message: m.defaultMessage}
}
