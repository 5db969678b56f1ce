package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnknownTool is returned when a tool identifier is outside the closed set.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrGeneration marks a text-generation failure that survived retries.
	ErrGeneration = errors.New("text generation failed")
	// ErrEmptyResponse is returned by adapters when a backend answers with no body.
	ErrEmptyResponse = errors.New("empty response body")
	// ErrMalformedPayload is returned when a backend payload does not have the expected shape.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrCircuitOpen is returned while a backend's circuit breaker rejects calls.
	ErrCircuitOpen = errors.New("circuit open")
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
