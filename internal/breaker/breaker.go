package breaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/amishk599/jobscout/internal/model"
)

// JobSearcher is a decorator that stops calling a failing job-search backend
// for a cooldown period after consecutive failures.
type JobSearcher struct {
	inner model.JobSearcher
	cb    *gobreaker.CircuitBreaker
}

// NewJobSearcher wraps inner. The breaker opens after failures consecutive
// errors and lets one trial request through after cooldown.
func NewJobSearcher(inner model.JobSearcher, failures uint32, cooldown time.Duration, logger *slog.Logger) *JobSearcher {
	if failures == 0 {
		failures = 3
	}
	settings := gobreaker.Settings{
		Name:        "jsearch",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "backend", name, "from", from.String(), "to", to.String())
		},
		// A cancelled run says nothing about the backend's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	return &JobSearcher{inner: inner, cb: gobreaker.NewCircuitBreaker(settings)}
}

// SearchJobs delegates through the breaker. Rejected calls return an error
// wrapping model.ErrCircuitOpen.
func (s *JobSearcher) SearchJobs(ctx context.Context, query, location string) ([]model.JobListing, error) {
	out, err := s.cb.Execute(func() (interface{}, error) {
		listings, err := s.inner.SearchJobs(ctx, query, location)
		return listings, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", model.ErrCircuitOpen, err)
	}
	if err != nil {
		return nil, err
	}
	listings, _ := out.([]model.JobListing)
	return listings, nil
}

// State returns the breaker's current state name.
func (s *JobSearcher) State() string {
	return s.cb.State().String()
}
