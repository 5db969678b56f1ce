package tools

import (
	"context"
	"errors"

	"github.com/amishk599/jobscout/internal/model"
)

// MaxJobListings caps the listings kept from one search.
const MaxJobListings = 10

// SearchJobs queries the job backend and never fails: any error or an empty
// result becomes the single placeholder listing, with the reason attached.
func (d *Dispatcher) SearchJobs(ctx context.Context, goal, location string) model.JobSearchOutcome {
	listings, err := d.jobs.SearchJobs(ctx, goal, location)
	if err != nil {
		reason := classifyJobError(err)
		d.logger.Warn("job search failed, using placeholder",
			"goal", goal,
			"location", location,
			"reason", reason,
			"error", err,
		)
		return fallbackOutcome(goal, location, reason, err)
	}

	if len(listings) == 0 {
		d.logger.Info("job search returned no listings", "goal", goal, "location", location)
		return fallbackOutcome(goal, location, model.FallbackNoResults, nil)
	}

	if len(listings) > MaxJobListings {
		listings = listings[:MaxJobListings]
	}
	return model.JobSearchOutcome{Listings: listings}
}

func fallbackOutcome(goal, location string, reason model.FallbackReason, err error) model.JobSearchOutcome {
	return model.JobSearchOutcome{
		Listings: []model.JobListing{model.NoJobsListing(goal, location)},
		Fallback: &model.JobFallback{Reason: reason, Err: err},
	}
}

func classifyJobError(err error) model.FallbackReason {
	var httpErr *model.HTTPError
	switch {
	case errors.Is(err, model.ErrCircuitOpen):
		return model.FallbackBreakerOpen
	case errors.As(err, &httpErr):
		return model.FallbackStatus
	case errors.Is(err, model.ErrEmptyResponse):
		return model.FallbackEmptyBody
	case errors.Is(err, model.ErrMalformedPayload):
		return model.FallbackMalformed
	default:
		return model.FallbackTransport
	}
}
