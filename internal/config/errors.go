package config

import "fmt"

// ConfigurationError marks a missing or invalid configuration value. It is
// fatal and raised before any remote call is attempted.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return e.Reason
}

func missingFieldError(field string) *ConfigurationError {
	return &ConfigurationError{
		Field:  field,
		Reason: fmt.Sprintf("%v is required", field),
	}
}
