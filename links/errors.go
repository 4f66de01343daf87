package links

import "fmt"

// ConfigError is returned when required configuration is missing or malformed.
//
// Configuration errors are never the caller's fault and never retried.
type ConfigError struct {
	// Message is a short summary, e.g. "Service Account not configured".
	Message string

	// Details tells the operator how to fix the problem.
	Details string
}

func (e *ConfigError) Error() string {
	if e.Details == "" {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.Message, e.Details)
}

// ValidationError is returned when caller input is rejected.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError returns a ValidationError for a missing required field.
func NewValidationError(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: field + " required",
	}
}

func (e *ValidationError) Error() string {
	return e.Message
}
