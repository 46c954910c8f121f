package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// MapExternal maps provider/transport errors into the intake taxonomy.
// Context cancellation propagates as-is; everything else that touched the
// network becomes ErrExternalService so callers can absorb it uniformly.
func MapExternal(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timeout: %w", ErrExternalService)
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "not found"), strings.Contains(errStr, "does not exist"):
		return fmt.Errorf("resource not found: %w", ErrNotFound)

	case strings.Contains(errStr, "invalid input"), strings.Contains(errStr, "invalid request"), strings.Contains(errStr, "bad request"):
		return fmt.Errorf("invalid request: %w", ErrInvalidInput)

	case strings.Contains(errStr, "rate limit"), strings.Contains(errStr, "quota"), strings.Contains(errStr, "too many requests"),
		strings.Contains(errStr, "timeout"), strings.Contains(errStr, "deadline exceeded"),
		strings.Contains(errStr, "network"), strings.Contains(errStr, "connection"), strings.Contains(errStr, "unreachable"),
		strings.Contains(errStr, "circuit breaker"):
		return fmt.Errorf("model call failed: %w", ErrExternalService)

	default:
		return fmt.Errorf("model call failed: %w", ErrExternalService)
	}
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", message, err)
}

// WrapWithCategory wraps an error with a specific intake error category
func WrapWithCategory(err error, message string, category error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", message, category)
}

// IsCategory checks if error belongs to specific category
func IsCategory(err error, category error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, category)
}

// NotFound wraps a message as not found
func NotFound(message string) error {
	return fmt.Errorf("%s: %w", message, ErrNotFound)
}

// InvalidInput wraps a message as invalid input
func InvalidInput(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInvalidInput)
}

// ExternalService wraps a message as an external service failure
func ExternalService(message string) error {
	return fmt.Errorf("%s: %w", message, ErrExternalService)
}

// Parse wraps a message as a soft parse failure
func Parse(message string) error {
	return fmt.Errorf("%s: %w", message, ErrParse)
}

// Transient wraps a message as transient
func Transient(message string) error {
	return fmt.Errorf("%s: %w", message, ErrTransient)
}

// Internal wraps a message as internal
func Internal(message string) error {
	return fmt.Errorf("%s: %w", message, ErrInternal)
}
