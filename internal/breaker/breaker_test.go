package breaker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobscout/internal/model"
)

type fakeSearcher struct {
	calls int
	err   error
}

func (f *fakeSearcher) SearchJobs(_ context.Context, query, _ string) ([]model.JobListing, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []model.JobListing{{Title: query}}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJobSearcher_PassesThroughOnSuccess(t *testing.T) {
	inner := &fakeSearcher{}
	s := NewJobSearcher(inner, 3, time.Minute, discardLogger())

	got, err := s.SearchJobs(context.Background(), "pilot", "")
	require.NoError(t, err)
	assert.Equal(t, []model.JobListing{{Title: "pilot"}}, got)
	assert.Equal(t, "closed", s.State())
}

func TestJobSearcher_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &fakeSearcher{err: &model.HTTPError{StatusCode: 503}}
	s := NewJobSearcher(inner, 2, time.Minute, discardLogger())

	for i := 0; i < 2; i++ {
		_, err := s.SearchJobs(context.Background(), "pilot", "")
		require.Error(t, err)
		assert.False(t, errors.Is(err, model.ErrCircuitOpen))
	}
	assert.Equal(t, "open", s.State())

	_, err := s.SearchJobs(context.Background(), "pilot", "")
	assert.ErrorIs(t, err, model.ErrCircuitOpen)
	assert.Equal(t, 2, inner.calls, "open breaker must not call the backend")
}

func TestJobSearcher_CancellationDoesNotTrip(t *testing.T) {
	inner := &fakeSearcher{err: context.Canceled}
	s := NewJobSearcher(inner, 1, time.Minute, discardLogger())

	for i := 0; i < 3; i++ {
		_, err := s.SearchJobs(context.Background(), "pilot", "")
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, "closed", s.State())
	assert.Equal(t, 3, inner.calls)
}

func TestJobSearcher_HalfOpenTrialRecovers(t *testing.T) {
	inner := &fakeSearcher{err: errors.New("connection refused")}
	s := NewJobSearcher(inner, 1, 20*time.Millisecond, discardLogger())

	_, err := s.SearchJobs(context.Background(), "pilot", "")
	require.Error(t, err)
	assert.Equal(t, "open", s.State())

	time.Sleep(40 * time.Millisecond)
	inner.err = nil

	got, err := s.SearchJobs(context.Background(), "pilot", "")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "closed", s.State())
}
