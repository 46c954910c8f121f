package errors

import (
	"errors"
)

// Sentinel errors for different categories
var (
	// ErrNotFound - a referenced agent type or session id is not registered.
	// Session-layer callers surface this; routing callers with an unfound
	// preferred agent fall through to normal routing instead.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput - malformed caller input (empty user id, unknown channel)
	ErrInvalidInput = errors.New("invalid input")

	// ErrExternalService - downstream model call failed (network, non-2xx,
	// timeout, breaker open). Always recoverable locally with a fallback.
	ErrExternalService = errors.New("external service error")

	// ErrParse - a model response section could not be decomposed into the
	// expected structure. Soft: callers degrade the section to empty.
	ErrParse = errors.New("parse error")

	// ErrTransient - retryable infrastructure error
	ErrTransient = errors.New("transient error")

	// ErrInternal - internal error
	ErrInternal = errors.New("internal error")
)
