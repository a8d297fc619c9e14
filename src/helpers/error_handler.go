package helpers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type DashboardError struct {
	Message string
	Cause   error
}

func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// Distinct error kinds, matched with errors.As at the HTTP boundary.
type ConfigurationError struct{ DashboardError }
type CredentialError struct{ DashboardError }
type UpstreamError struct{ DashboardError }
type NotFoundError struct{ DashboardError }
type ValidationError struct{ DashboardError }
type PersistenceError struct{ DashboardError }

func NewConfigurationError(msg string) error {
	return &ConfigurationError{DashboardError{Message: msg}}
}

func NewCredentialError(msg string) error {
	return &CredentialError{DashboardError{Message: msg}}
}

func NewUpstreamError(msg string, cause error) error {
	return &UpstreamError{DashboardError{Message: msg, Cause: cause}}
}

func NewNotFoundError(msg string) error {
	return &NotFoundError{DashboardError{Message: msg}}
}

func NewValidationError(msg string) error {
	return &ValidationError{DashboardError{Message: msg}}
}

func NewPersistenceError(msg string, cause error) error {
	return &PersistenceError{DashboardError{Message: msg, Cause: cause}}
}

// -----------------------------------------------------------------------------

// StatusCode maps an error kind to the HTTP status surfaced to the UI.
func StatusCode(err error) int {
	var (
		cfgErr  *ConfigurationError
		credErr *CredentialError
		upErr   *UpstreamError
		nfErr   *NotFoundError
		valErr  *ValidationError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &cfgErr), errors.As(err, &valErr):
		return http.StatusBadRequest
	case errors.As(err, &nfErr):
		return http.StatusNotFound
	case errors.As(err, &credErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &upErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// -----------------------------------------------------------------------------

var authErrorMarkers = []string{"token", "auth", "unauthorized", "invalid", "expired"}

// IsAuthError reports whether an upstream message looks credential related.
func IsAuthError(msg string) bool {
	lower := strings.ToLower(msg)
	for _, m := range authErrorMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff runs fn up to maxAttempts times with exponential backoff.
// retryable decides whether a failure is worth another attempt.
func RetryWithBackoff[T any](
	ctx context.Context,
	maxAttempts int,
	baseDelay time.Duration,
	retryable func(error) bool,
	fn func() (T, error),
) (T, error) {
	var zero T
	var lastErr error
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}
		lastErr = err
		if attempt == maxAttempts-1 || (retryable != nil && !retryable(err)) {
			break
		}

		delay := baseDelay * (1 << attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	return zero, lastErr
}
