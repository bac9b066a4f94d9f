// Package homeassistant provides error types for Home Assistant API failures.
package homeassistant

import "fmt"

// APIError represents a non-2xx response from the Home Assistant API.
// It carries the HTTP status and the upstream response body.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Home Assistant API error (status %d): %s", e.StatusCode, e.Body)
}

// NotFoundError indicates an entity or resource that does not exist upstream.
type NotFoundError struct {
	EntityID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("entity not found: %s", e.EntityID)
}

// TimeoutError indicates a request that did not complete within the client timeout.
type TimeoutError struct {
	URL string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out: %v", e.URL, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// ValidationError indicates malformed caller input, detected before any
// upstream request is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
