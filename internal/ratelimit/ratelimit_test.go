package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

func TestWait_SameBackend_EnforcesMinDelay(t *testing.T) {
	limiter := NewBackendRateLimiter(100*time.Millisecond, nil)
	ctx := context.Background()

	if err := limiter.Wait(ctx, BackendPosts); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, BackendPosts); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Allow 20ms of timer slack.
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentBackends_NoCrossBlocking(t *testing.T) {
	limiter := NewBackendRateLimiter(200*time.Millisecond, nil)
	ctx := context.Background()

	if err := limiter.Wait(ctx, BackendPosts); err != nil {
		t.Fatalf("posts wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, BackendJobs); err != nil {
		t.Fatalf("jobs wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected jobs wait to be near-instant, got %v", elapsed)
	}
}

func TestWait_OverrideReplacesMinDelay(t *testing.T) {
	limiter := NewBackendRateLimiter(5*time.Second, map[string]time.Duration{BackendJobs: 0})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(ctx, BackendJobs); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("zero override should not block, took %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	limiter := NewBackendRateLimiter(5*time.Second, nil)

	if err := limiter.Wait(context.Background(), BackendPosts); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Wait(ctx, BackendPosts); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}

type recordingPostSearcher struct {
	queries []string
}

func (s *recordingPostSearcher) SearchPosts(_ context.Context, query string) ([]model.Post, error) {
	s.queries = append(s.queries, query)
	return nil, nil
}

func TestRateLimitedPostSearcher_WaitsBeforeDelegating(t *testing.T) {
	limiter := NewBackendRateLimiter(100*time.Millisecond, nil)
	inner := &recordingPostSearcher{}
	searcher := NewRateLimitedPostSearcher(inner, limiter)
	ctx := context.Background()

	if _, err := searcher.SearchPosts(ctx, "a"); err != nil {
		t.Fatalf("first search: %v", err)
	}

	start := time.Now()
	if _, err := searcher.SearchPosts(ctx, "b"); err != nil {
		t.Fatalf("second search: %v", err)
	}
	elapsed := time.Since(start)

	if len(inner.queries) != 2 || inner.queries[1] != "b" {
		t.Fatalf("queries = %v", inner.queries)
	}
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait on second search, got %v", elapsed)
	}
}

type recordingJobSearcher struct {
	called bool
}

func (s *recordingJobSearcher) SearchJobs(_ context.Context, _, _ string) ([]model.JobListing, error) {
	s.called = true
	return nil, nil
}

func TestRateLimitedJobSearcher_CancelledContextSkipsInner(t *testing.T) {
	limiter := NewBackendRateLimiter(time.Second, nil)
	inner := &recordingJobSearcher{}
	searcher := NewRateLimitedJobSearcher(inner, limiter)

	if _, err := searcher.SearchJobs(context.Background(), "pilot", ""); err != nil {
		t.Fatalf("first search: %v", err)
	}
	inner.called = false

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := searcher.SearchJobs(ctx, "pilot", ""); err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if inner.called {
		t.Error("inner searcher should not be called after cancellation")
	}
}
