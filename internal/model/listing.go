package model

import (
	"fmt"
	"strings"
)

// noJobsPrefix starts the title of every NoJobsListing.
const noJobsPrefix = "No jobs found for '"

// JobListing is one job posting returned by the job-search backend.
type JobListing struct {
	Title       string
	Company     string
	Location    string
	Description string
	URL         string // apply link
	DatePosted  string // raw string as reported by the backend
}

// Post is a web result discussing a job title or company.
type Post struct {
	Title   string `validate:"required"`
	Link    string `validate:"required"`
	Snippet string
}

// FallbackReason explains why a job search produced the sentinel listing.
type FallbackReason string

const (
	FallbackTransport   FallbackReason = "transport"
	FallbackStatus      FallbackReason = "status"
	FallbackEmptyBody   FallbackReason = "empty_body"
	FallbackMalformed   FallbackReason = "malformed_payload"
	FallbackBreakerOpen FallbackReason = "breaker_open"
	FallbackNoResults   FallbackReason = "no_results"
)

// JobFallback is attached to a JobSearchOutcome when the search did not succeed.
type JobFallback struct {
	Reason FallbackReason
	Err    error // nil for FallbackNoResults
}

// JobSearchOutcome is the result of the jobs tool: either real listings
// (Fallback == nil) or the single sentinel listing plus the reason.
type JobSearchOutcome struct {
	Listings []JobListing
	Fallback *JobFallback
}

// OK reports whether the search returned real listings.
func (o JobSearchOutcome) OK() bool {
	return o.Fallback == nil
}

// NoJobsListing builds the placeholder listing stored when a search yields nothing.
func NoJobsListing(goal, location string) JobListing {
	title := fmt.Sprintf("%s%s'", noJobsPrefix, goal)
	if location != "" {
		title += " in " + location
	}
	return JobListing{Title: title}
}

// IsPlaceholder reports whether l was produced by NoJobsListing.
func (l JobListing) IsPlaceholder() bool {
	return strings.HasPrefix(l.Title, noJobsPrefix) &&
		l.Company == "" && l.URL == "" && l.Description == "" && l.Location == "" && l.DatePosted == ""
}
