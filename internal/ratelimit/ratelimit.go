package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

// Backend names used as limiter keys.
const (
	BackendJobs  = "jsearch"
	BackendPosts = "cse"
)

// BackendRateLimiter enforces a minimum delay between requests to the same search backend.
type BackendRateLimiter struct {
	mu        sync.Mutex
	lastCall  map[string]time.Time
	minDelay  time.Duration
	overrides map[string]time.Duration
}

// NewBackendRateLimiter creates a limiter that spaces consecutive requests to
// the same backend by minDelay, or by the backend's entry in overrides.
func NewBackendRateLimiter(minDelay time.Duration, overrides map[string]time.Duration) *BackendRateLimiter {
	return &BackendRateLimiter{
		lastCall:  make(map[string]time.Time),
		minDelay:  minDelay,
		overrides: overrides,
	}
}

func (r *BackendRateLimiter) delayFor(backend string) time.Duration {
	if d, ok := r.overrides[backend]; ok {
		return d
	}
	return r.minDelay
}

// Wait blocks until enough time has passed since the last request to backend.
// Returns an error if the context is cancelled while waiting.
func (r *BackendRateLimiter) Wait(ctx context.Context, backend string) error {
	r.mu.Lock()
	last, ok := r.lastCall[backend]
	now := time.Now()
	delay := r.delayFor(backend)

	if !ok || now.Sub(last) >= delay {
		r.lastCall[backend] = now
		r.mu.Unlock()
		return nil
	}

	remaining := delay - now.Sub(last)
	// Reserve the slot so concurrent callers queue behind this one.
	r.lastCall[backend] = now.Add(remaining)
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", backend, ctx.Err())
	case <-time.After(remaining):
	}
	return nil
}

// RateLimitedJobSearcher waits on the limiter before delegating to the wrapped JobSearcher.
type RateLimitedJobSearcher struct {
	inner   model.JobSearcher
	limiter *BackendRateLimiter
}

func NewRateLimitedJobSearcher(inner model.JobSearcher, limiter *BackendRateLimiter) *RateLimitedJobSearcher {
	return &RateLimitedJobSearcher{inner: inner, limiter: limiter}
}

func (s *RateLimitedJobSearcher) SearchJobs(ctx context.Context, query, location string) ([]model.JobListing, error) {
	if err := s.limiter.Wait(ctx, BackendJobs); err != nil {
		return nil, err
	}
	return s.inner.SearchJobs(ctx, query, location)
}

// RateLimitedPostSearcher waits on the limiter before delegating to the wrapped PostSearcher.
// The post ladder issues several queries back to back, so this is where spacing matters most.
type RateLimitedPostSearcher struct {
	inner   model.PostSearcher
	limiter *BackendRateLimiter
}

func NewRateLimitedPostSearcher(inner model.PostSearcher, limiter *BackendRateLimiter) *RateLimitedPostSearcher {
	return &RateLimitedPostSearcher{inner: inner, limiter: limiter}
}

func (s *RateLimitedPostSearcher) SearchPosts(ctx context.Context, query string) ([]model.Post, error) {
	if err := s.limiter.Wait(ctx, BackendPosts); err != nil {
		return nil, err
	}
	return s.inner.SearchPosts(ctx, query)
}
