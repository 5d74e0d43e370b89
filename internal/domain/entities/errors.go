package entities

import (
	"errors"
	"strings"
)

// Common errors
var (
	ErrSeriesNotFound = errors.New("series not found")
)

// ValidationError reports a request whose fields are missing or cannot be
// coerced. Fields echoes what the caller submitted.
type ValidationError struct {
	Message string
	Fields  map[string]any
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.Missing) > 0 {
		b.WriteString(": missing ")
		b.WriteString(strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		b.WriteString(": invalid ")
		b.WriteString(strings.Join(e.Invalid, ", "))
	}
	return b.String()
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
