package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/amishk599/jobscout/internal/model"
)

const defaultCSENum = 5

// CSEAdapter searches the web for posts through Google Programmable Search.
type CSEAdapter struct {
	svc     *customsearch.Service
	cx      string
	num     int64
	timeout time.Duration
}

// NewCSEAdapter creates an adapter for the search engine cx.
// Extra client options (endpoint, HTTP client) are appended after the API key.
func NewCSEAdapter(ctx context.Context, apiKey, cx string, num int, timeout time.Duration, opts ...option.ClientOption) (*CSEAdapter, error) {
	if cx == "" {
		return nil, fmt.Errorf("cse: search engine id is required")
	}
	if num <= 0 {
		num = defaultCSENum
	}

	svc, err := customsearch.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("cse: create service: %w", err)
	}
	return &CSEAdapter{svc: svc, cx: cx, num: int64(num), timeout: timeout}, nil
}

// SearchPosts runs one query and returns the result items as posts.
// Items are returned as-is; callers decide which ones are usable.
func (a *CSEAdapter) SearchPosts(ctx context.Context, query string) ([]model.Post, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	resp, err := a.svc.Cse.List().Cx(a.cx).Q(query).Num(a.num).Context(ctx).Do()
	if err != nil {
		var gErr *googleapi.Error
		if errors.As(err, &gErr) {
			return nil, &model.HTTPError{
				StatusCode: gErr.Code,
				RetryAfter: ParseRetryAfter(gErr.Header.Get("Retry-After")),
				Err:        fmt.Errorf("cse search %q: %w", query, err),
			}
		}
		return nil, fmt.Errorf("cse search %q: %w", query, err)
	}

	posts := make([]model.Post, 0, len(resp.Items))
	for _, item := range resp.Items {
		snippet := item.Snippet
		if snippet == "" && item.HtmlSnippet != "" {
			snippet = extractText(item.HtmlSnippet)
		}
		posts = append(posts, model.Post{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: snippet,
		})
	}
	return posts, nil
}
