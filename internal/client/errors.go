package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ConnectionError means the API could not be reached at all.
type ConnectionError struct {
	BaseURL string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("could not connect to the API at %s; check that it is running", e.BaseURL)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TimeoutError means the API did not answer within the client timeout.
type TimeoutError struct {
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("the API took longer than %s to respond; check that it is reachable", e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// APIError is a failure reported by the API itself (status >= 400).
type APIError struct {
	StatusCode int
	Message    string
	Campos     map[string]any
	Missing    []string
	Invalid    []string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "api error %d: %s", e.StatusCode, msg)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, " (missing: %s)", strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		fmt.Fprintf(&b, " (invalid: %s)", strings.Join(e.Invalid, ", "))
	}
	return b.String()
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// classifyTransportError turns an error from http.Client.Do or from reading
// the response body into a TimeoutError or ConnectionError. Timeouts are
// checked first, since a timed out dial is also a network error.
func (c *Client) classifyTransportError(ctx context.Context, start time.Time, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TimeoutError{Timeout: c.timeoutBudget(ctx, start), Err: err}
	}

	// Caller gave up; that is neither a timeout nor an unreachable API.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &ConnectionError{BaseURL: c.baseURL, Err: urlErr.Err}
	}
	return &ConnectionError{BaseURL: c.baseURL, Err: err}
}

// timeoutBudget is the time the request was allowed: the caller's deadline
// when that is what expired, the client timeout otherwise.
func (c *Client) timeoutBudget(ctx context.Context, start time.Time) time.Duration {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		if deadline, ok := ctx.Deadline(); ok {
			if budget := deadline.Sub(start); budget > 0 {
				return budget.Round(time.Millisecond)
			}
			return 0
		}
	}
	return c.httpClient.Timeout
}
