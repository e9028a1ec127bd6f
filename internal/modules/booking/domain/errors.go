package domain

import (
	"errors"
	"strings"
)

var (
	ErrRowOutOfRange   = errors.New("slot row index out of range")
	ErrUnknownField    = errors.New("unknown slot field")
	ErrInvalidSlotDate = errors.New("invalid slot date")
)

// ValidationError is a local input failure. It blocks submission and no request is sent.
type ValidationError struct {
	Messages []string
}

func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// AsValidation unwraps err into a ValidationError when it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation, true
	}
	return nil, false
}
