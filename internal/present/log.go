package present

import (
	"context"
	"log/slog"
)

// Ensure LogPublisher implements Publisher.
var _ Publisher = (*LogPublisher)(nil)

// LogPublisher writes job listings to the given logger as structured messages.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher returns a publisher that logs each listing via slog.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs each listing with company, title, location, URL and posted date.
// Returns nil (logging does not fail).
func (p *LogPublisher) Publish(_ context.Context, r *Report) error {
	for _, j := range r.Jobs {
		if j.Placeholder {
			p.logger.Info("no jobs", "goal", r.Goal, "title", j.Title)
			continue
		}
		args := []any{"goal", r.Goal, "company", j.Company, "title", j.Title, "location", j.Location, "url", j.URL}
		if j.Posted != "" {
			args = append(args, "posted", j.Posted)
		}
		p.logger.Info("job", args...)
	}
	return nil
}
