package adapter

import (
	"context"
	"fmt"

	"github.com/amishk599/jobscout/internal/model"
)

var (
	_ model.JobSearcher  = Unavailable{}
	_ model.PostSearcher = Unavailable{}
)

// Unavailable stands in for a search backend that has no credentials.
// Every call fails, which the tools layer turns into its usual fallbacks.
type Unavailable struct {
	Backend string
	Reason  string
}

func (u Unavailable) err() error {
	return fmt.Errorf("%s unavailable: %s", u.Backend, u.Reason)
}

func (u Unavailable) SearchJobs(_ context.Context, _, _ string) ([]model.JobListing, error) {
	return nil, u.err()
}

func (u Unavailable) SearchPosts(_ context.Context, _ string) ([]model.Post, error) {
	return nil, u.err()
}
