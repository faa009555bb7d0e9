// Package upstream classifies failures of calls to external services
// (delivery relays, the talent registry) so callers can decide on retry,
// refresh or fallback without inspecting raw errors.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Category is the normalized failure taxonomy for upstream calls.
type Category string

const (
	CategoryTimeout        Category = "timeout"
	CategoryBadData        Category = "bad_data"
	CategoryAuthentication Category = "authentication"
	CategoryOutage         Category = "outage"
	CategoryNotFound       Category = "not_found"
	CategoryRateLimited    Category = "rate_limited"
	CategoryRejected       Category = "rejected"
	CategoryInternal       Category = "internal"
)

// Error wraps an upstream failure with its category.
type Error struct {
	Category  Category
	Target    string
	Message   string
	Err       error
	Retryable bool
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s [%s]: %s: %v", e.Target, e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("upstream %s [%s]: %s", e.Target, e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a categorized error. Timeouts, outages and rate limiting are
// retryable.
func New(category Category, target, message string, err error) *Error {
	return &Error{
		Category:  category,
		Target:    target,
		Message:   message,
		Err:       err,
		Retryable: category == CategoryTimeout || category == CategoryOutage || category == CategoryRateLimited,
	}
}

// FromTransport classifies an error returned by an HTTP client Do call.
func FromTransport(ctx context.Context, target string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return New(CategoryTimeout, target, "request timeout", err)
	}
	return New(CategoryOutage, target, "request failed", err)
}

// FromStatus classifies a non-2xx response. It returns nil for 2xx.
func FromStatus(target string, status int) *Error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return New(CategoryAuthentication, target, fmt.Sprintf("authentication failed: %d", status), nil)
	case status == http.StatusNotFound:
		return New(CategoryNotFound, target, "not found", nil)
	case status == http.StatusTooManyRequests:
		return New(CategoryRateLimited, target, "rate limit exceeded", nil)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return New(CategoryTimeout, target, fmt.Sprintf("upstream timeout: %d", status), nil)
	case status >= 500:
		return New(CategoryOutage, target, fmt.Sprintf("upstream unavailable: %d", status), nil)
	default:
		return New(CategoryRejected, target, fmt.Sprintf("request rejected: %d", status), nil)
	}
}

// CategoryOf extracts the category, defaulting to CategoryInternal.
func CategoryOf(err error) Category {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Category
	}
	return CategoryInternal
}

// IsRetryable reports whether err is a transient upstream failure.
func IsRetryable(err error) bool {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Retryable
	}
	return false
}
