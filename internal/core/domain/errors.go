package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown integration type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Configuration Errors.

	// ErrInvalidConfig indicates an integration configuration failed validation.
	// The sync never starts.
	ErrInvalidConfig = errors.New("invalid configuration")

	// Connectivity Errors.

	// ErrConnection indicates the authenticated client could not be built
	// or the identity-confirming call failed.
	ErrConnection = errors.New("connection failed")

	// ErrAuthInvalid indicates the authentication credentials are invalid.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// ConfigError names the configuration field that violated a validation rule.
type ConfigError struct {
	// Field is the dotted configuration key, e.g. "role_arn" or "services.s3".
	Field string
	// Message describes the violated rule.
	Message string
}

// NewConfigError builds a ConfigError for field.
func NewConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidConfig.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// ConfigField returns the offending field of a configuration error, if any.
func ConfigField(err error) string {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Field
	}
	return ""
}

// ConnectionError wraps a failure to reach or authenticate against a provider.
type ConnectionError struct {
	Provider string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: connection failed: %v", e.Provider, e.Err)
}

// Unwrap exposes the cause.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is matches ErrConnection.
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}
