package tools

import (
	"context"
	"strings"

	"github.com/amishk599/jobscout/internal/model"
)

// postKinds widens every post query to discussion-style pages.
const postKinds = "(news OR discussion OR forum OR blog OR review OR post)"

// PostQueries returns the search ladder for a title, most specific first.
// Attempts that would need an empty company or location are skipped.
func PostQueries(title, company, location string) []string {
	var attempts [][]string
	if company != "" && location != "" {
		attempts = append(attempts, []string{title, company, location})
	}
	if company != "" {
		attempts = append(attempts, []string{title, company})
	}
	if location != "" {
		attempts = append(attempts, []string{title, location})
	}
	attempts = append(attempts, []string{title})

	queries := make([]string, 0, len(attempts))
	for _, terms := range attempts {
		queries = append(queries, strings.Join(append(terms, postKinds), " "))
	}
	return queries
}

// SearchPosts walks the query ladder and returns the valid posts of the first
// query that yields any. Failed queries are logged and skipped. The result is
// empty, never nil, when nothing is found.
func (d *Dispatcher) SearchPosts(ctx context.Context, goal, company, location string) []model.Post {
	if goal == "" {
		return []model.Post{}
	}

	for i, q := range PostQueries(goal, company, location) {
		if ctx.Err() != nil {
			break
		}

		posts, err := d.posts.SearchPosts(ctx, q)
		if err != nil {
			d.logger.Warn("post search failed, trying broader query", "attempt", i+1, "query", q, "error", err)
			continue
		}

		valid := d.validPosts(posts)
		if len(valid) > 0 {
			d.logger.Debug("post search matched", "attempt", i+1, "query", q, "posts", len(valid))
			return valid
		}
	}
	return []model.Post{}
}

func (d *Dispatcher) validPosts(posts []model.Post) []model.Post {
	out := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if err := d.validate.Struct(p); err != nil {
			d.logger.Debug("dropping incomplete post", "title", p.Title, "link", p.Link)
			continue
		}
		out = append(out, p)
	}
	return out
}
