package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

// RetryGenerator is a decorator that retries transient text-generation
// failures with exponential backoff and jitter. After the last attempt the
// error is returned to the caller unchanged.
type RetryGenerator struct {
	inner      model.TextGenerator
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewRetryGenerator wraps a TextGenerator with retry logic.
// maxRetries is the number of additional attempts after the first failure.
// baseDelay is the delay before the first retry, doubled on each subsequent retry.
func NewRetryGenerator(inner model.TextGenerator, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *RetryGenerator {
	return &RetryGenerator{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// Complete calls the wrapped generator, retrying on transient errors.
func (g *RetryGenerator) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	text, err := g.inner.Complete(ctx, prompt, maxTokens)
	if err == nil {
		return text, nil
	}
	if !isRetryable(ctx, err) {
		return "", err
	}

	lastErr := err
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		delay := g.backoffDelay(attempt, lastErr)

		g.logger.Warn("retrying llm call after transient error",
			"attempt", attempt,
			"max_retries", g.maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		text, err = g.inner.Complete(ctx, prompt, maxTokens)
		if err == nil {
			return text, nil
		}
		if !isRetryable(ctx, err) {
			return "", err
		}
		lastErr = err
	}

	return "", lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// A Retry-After duration on the error takes precedence.
func (g *RetryGenerator) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := g.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// isRetryable reports whether err is a transient failure worth retrying.
// A deadline on the caller's ctx is final; a per-request client timeout is not.
func isRetryable(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == http.StatusTooManyRequests {
			return true
		}
		return httpErr.StatusCode >= 500
	}

	// Network, DNS and decoding errors.
	return true
}
