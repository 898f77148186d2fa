package services

import (
	"errors"
	"fmt"
)

// ErrTaskNotFound is returned when a referenced task id does not exist.
var ErrTaskNotFound = errors.New("task not found")

// ValidationError reports malformed or missing input. Handlers map it to a
// 400 response with the message as the error body.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
