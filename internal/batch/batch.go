// Package batch runs the agent for a list of job titles, one after another.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/amishk599/jobscout/internal/agent"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/present"
)

// Runner executes one agent run.
type Runner interface {
	RunRequest(ctx context.Context, req agent.Request, trace agent.TraceFunc) (*model.Memory, error)
}

// Sink receives the memory of every successful run.
type Sink interface {
	Write(ctx context.Context, goal string, mem *model.Memory) error
}

// Summary lists which titles completed and which failed.
type Summary struct {
	Succeeded []string
	Failed    []string
}

// Batch owns the batch loop: it runs each title sequentially with a pause in between.
type Batch struct {
	runner Runner
	sink   Sink
	pause  time.Duration
	logger *slog.Logger
}

// New creates a batch that hands each finished run to sink.
func New(runner Runner, sink Sink, pause time.Duration, logger *slog.Logger) *Batch {
	return &Batch{
		runner: runner,
		sink:   sink,
		pause:  pause,
		logger: logger,
	}
}

// Run executes the agent once per title. base supplies the location and
// company hints shared by every run. A failed title is logged and skipped.
// Run stops early only when ctx is cancelled.
func (b *Batch) Run(ctx context.Context, titles []string, base agent.Request) (Summary, error) {
	b.logger.Info("starting batch", "titles", len(titles), "pause", b.pause.String())

	var sum Summary
	for i, title := range titles {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		req := base
		req.Goal = title
		if err := b.runOne(ctx, req); err != nil {
			b.logger.Error("batch run failed", "title", title, "error", err)
			sum.Failed = append(sum.Failed, title)
		} else {
			sum.Succeeded = append(sum.Succeeded, title)
		}

		// Pause between runs to be polite to the backends, except after the last one.
		if i < len(titles)-1 && b.pause > 0 {
			select {
			case <-ctx.Done():
				return sum, ctx.Err()
			case <-time.After(b.pause):
			}
		}
	}

	b.logger.Info("batch complete", "succeeded", len(sum.Succeeded), "failed", len(sum.Failed))
	return sum, nil
}

func (b *Batch) runOne(ctx context.Context, req agent.Request) error {
	mem, err := b.runner.RunRequest(ctx, req, func(line string) {
		b.logger.Debug("trace", "title", req.Goal, "line", line)
	})
	if err != nil {
		return err
	}
	if b.sink == nil {
		return nil
	}
	if err := b.sink.Write(ctx, req.Goal, mem); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// ReadTitles reads one title per line. Blank lines and lines starting with
// '#' are skipped, as are repeated titles.
func ReadTitles(r io.Reader) ([]string, error) {
	var titles []string
	seen := make(map[string]bool)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || seen[line] {
			continue
		}
		seen[line] = true
		titles = append(titles, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read titles: %w", err)
	}
	return titles, nil
}

// DirSink writes one Markdown report per title into a directory and hands
// the report to any extra publishers.
type DirSink struct {
	dir        string
	publishers []present.Publisher
	logger     *slog.Logger
}

// NewDirSink creates dir if needed.
func NewDirSink(dir string, logger *slog.Logger, publishers ...present.Publisher) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &DirSink{dir: dir, publishers: publishers, logger: logger}, nil
}

// Write renders the run as <slug>.md.
func (s *DirSink) Write(ctx context.Context, goal string, mem *model.Memory) error {
	report := present.BuildReport(goal, mem)
	out, err := present.Markdown(report)
	if err != nil {
		return err
	}

	path := filepath.Join(s.dir, Slug(goal)+".md")
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	s.logger.Info("report written", "title", goal, "path", path)

	for _, p := range s.publishers {
		if err := p.Publish(ctx, report); err != nil {
			s.logger.Warn("publish failed", "title", goal, "error", err)
		}
	}
	return nil
}

// Slug lowercases title and replaces every run of non-alphanumeric characters with '-'.
func Slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "untitled"
	}
	return s
}
