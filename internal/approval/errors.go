package approval

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrForbidden is returned when the actor may not touch the booking, or a
// customer attempts an admin-only action.
var ErrForbidden = errors.New("forbidden")

func invalid(message string) error {
	return ValidationError{Code: "VALIDATION_FAILED", Message: message}
}
