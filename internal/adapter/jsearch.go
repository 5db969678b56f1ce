package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/amishk599/jobscout/internal/model"
)

const (
	DefaultJSearchBaseURL = "https://jsearch.p.rapidapi.com"
	DefaultJSearchHost    = "jsearch.p.rapidapi.com"
	defaultJSearchMax     = 10
)

// jsearchSchema is the minimal shape a usable search response must have.
const jsearchSchema = `{
	"type": "object",
	"required": ["data"],
	"properties": {
		"data": {"type": "array", "items": {"type": "object"}}
	}
}`

var jsearchSchemaLoader = gojsonschema.NewStringLoader(jsearchSchema)

// jsearchJob is one entry of the JSearch "data" array. Older payloads carry
// job_location and posted_at; current ones split the location and use a UTC timestamp.
type jsearchJob struct {
	JobTitle          string `json:"job_title"`
	EmployerName      string `json:"employer_name"`
	JobLocation       string `json:"job_location"`
	JobCity           string `json:"job_city"`
	JobState          string `json:"job_state"`
	JobCountry        string `json:"job_country"`
	JobDescription    string `json:"job_description"`
	JobApplyLink      string `json:"job_apply_link"`
	PostedAt          string `json:"posted_at"`
	PostedAtTimestamp string `json:"job_posted_at_datetime_utc"`
}

type jsearchResponse struct {
	Data []jsearchJob `json:"data"`
}

// JSearchOptions configures the RapidAPI JSearch adapter.
type JSearchOptions struct {
	BaseURL    string
	Host       string
	APIKey     string
	Country    string
	MaxResults int
	Timeout    time.Duration
}

// JSearchAdapter searches job listings through the RapidAPI JSearch endpoint.
type JSearchAdapter struct {
	opts   JSearchOptions
	schema *gojsonschema.Schema
	client *http.Client
}

// NewJSearchAdapter creates an adapter. Zero-valued options fall back to the public defaults.
func NewJSearchAdapter(opts JSearchOptions, client *http.Client) (*JSearchAdapter, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultJSearchBaseURL
	}
	if opts.Host == "" {
		opts.Host = DefaultJSearchHost
	}
	if opts.Country == "" {
		opts.Country = "us"
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = defaultJSearchMax
	}

	schema, err := gojsonschema.NewSchema(jsearchSchemaLoader)
	if err != nil {
		return nil, fmt.Errorf("compile jsearch schema: %w", err)
	}
	return &JSearchAdapter{opts: opts, schema: schema, client: client}, nil
}

// SearchJobs queries JSearch for query, narrowed to location when non-empty,
// and returns at most MaxResults listings. An empty result is not an error.
func (a *JSearchAdapter) SearchJobs(ctx context.Context, query, location string) ([]model.JobListing, error) {
	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	search := query
	if location != "" {
		search += " in " + location
	}

	params := url.Values{}
	params.Set("query", search)
	params.Set("page", "1")
	params.Set("num_pages", "1")
	params.Set("country", a.opts.Country)
	params.Set("date_posted", "all")
	endpoint := strings.TrimRight(a.opts.BaseURL, "/") + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("jsearch request for %q: %w", search, err)
	}
	req.Header.Set("x-rapidapi-key", a.opts.APIKey)
	req.Header.Set("x-rapidapi-host", a.opts.Host)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jsearch request for %q: %w", search, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("jsearch request for %q: unexpected status", search),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("jsearch read body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("jsearch request for %q: %w", search, model.ErrEmptyResponse)
	}

	if err := a.checkShape(body); err != nil {
		return nil, fmt.Errorf("jsearch request for %q: %w", search, err)
	}

	var js jsearchResponse
	if err := json.Unmarshal(body, &js); err != nil {
		return nil, fmt.Errorf("jsearch request for %q: %w: %v", search, model.ErrMalformedPayload, err)
	}

	listings := make([]model.JobListing, 0, min(len(js.Data), a.opts.MaxResults))
	for _, j := range js.Data {
		if len(listings) == a.opts.MaxResults {
			break
		}
		listings = append(listings, j.toListing())
	}
	return listings, nil
}

func (a *JSearchAdapter) checkShape(body []byte) error {
	result, err := a.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrMalformedPayload, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", model.ErrMalformedPayload, strings.Join(msgs, "; "))
	}
	return nil
}

func (j jsearchJob) toListing() model.JobListing {
	loc := j.JobLocation
	if loc == "" {
		var parts []string
		for _, p := range []string{j.JobCity, j.JobState, j.JobCountry} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		loc = strings.Join(parts, ", ")
	}

	posted := j.PostedAt
	if posted == "" {
		posted = j.PostedAtTimestamp
	}

	return model.JobListing{
		Title:       j.JobTitle,
		Company:     j.EmployerName,
		Location:    loc,
		Description: j.JobDescription,
		URL:         j.JobApplyLink,
		DatePosted:  posted,
	}
}
