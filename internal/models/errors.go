package models

import (
	"fmt"
	"time"
)

// ValidationError reports malformed submission input. Always recoverable by
// the caller correcting input; never logged as a system fault.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RateLimitError reports a throttled submission or login attempt
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry in %s", e.RetryAfter.Round(time.Second))
}

// GenerationError reports that the generator exhausted its retries or
// returned a structurally invalid payload. The cause is logged server-side;
// callers get a generic message.
type GenerationError struct {
	Cause error
}

func (e *GenerationError) Error() string {
	return "comparison generation failed"
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// PersistenceError reports a store read/write failure
type PersistenceError struct {
	Op    string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store %s failed", e.Op)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// AuthorizationError reports a missing or invalid reviewer session. The
// message is deliberately generic and never reveals whether a record exists.
type AuthorizationError struct{}

func (e *AuthorizationError) Error() string {
	return "unauthorized"
}

// NotFoundError reports an approve/reject against a record that does not
// exist or is already in a terminal state.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return "comparison not found or already moderated"
}
