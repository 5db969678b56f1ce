package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/amishk599/jobscout/internal/model"
)

// LLMFailurePolicy decides what the text tools do once generation has failed
// after retries.
type LLMFailurePolicy string

const (
	// PolicyPropagate returns the error and aborts the run.
	PolicyPropagate LLMFailurePolicy = "propagate"
	// PolicyPlaceholder stores an empty value and lets the run continue.
	PolicyPlaceholder LLMFailurePolicy = "placeholder"
)

// ParseLLMFailurePolicy parses a config value. Empty selects PolicyPropagate.
func ParseLLMFailurePolicy(s string) (LLMFailurePolicy, error) {
	switch LLMFailurePolicy(s) {
	case "", PolicyPropagate:
		return PolicyPropagate, nil
	case PolicyPlaceholder:
		return PolicyPlaceholder, nil
	}
	return "", fmt.Errorf("unknown llm failure policy %q", s)
}

// Drafter produces the LLM-backed tool outputs.
type Drafter interface {
	Skills(ctx context.Context, job string) ([]string, error)
	Resume(ctx context.Context, job string, skills []string) (string, error)
	Cover(ctx context.Context, job string, skills []string) (string, error)
}

// Options tunes dispatcher behavior.
type Options struct {
	// CacheDerivedSkills stores skills computed on demand by the resume or
	// cover tool under the skills key. Off by default.
	CacheDerivedSkills bool
	OnLLMFailure       LLMFailurePolicy
}

// Dispatcher runs a single tool against the shared memory.
type Dispatcher struct {
	drafter  Drafter
	jobs     model.JobSearcher
	posts    model.PostSearcher
	validate *validator.Validate
	opts     Options
	logger   *slog.Logger
}

// NewDispatcher wires a dispatcher with its collaborators.
func NewDispatcher(drafter Drafter, jobs model.JobSearcher, posts model.PostSearcher, opts Options, logger *slog.Logger) *Dispatcher {
	if opts.OnLLMFailure == "" {
		opts.OnLLMFailure = PolicyPropagate
	}
	return &Dispatcher{
		drafter:  drafter,
		jobs:     jobs,
		posts:    posts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		opts:     opts,
		logger:   logger,
	}
}

// UseTool runs tool for goal, stores the result in mem under the tool's
// identifier and returns it. The stored value is []string for skills, string
// for resume and cover, []model.JobListing for jobs and []model.Post for posts.
func (d *Dispatcher) UseTool(ctx context.Context, tool model.ToolID, mem *model.Memory, goal string) (any, error) {
	var (
		result any
		err    error
	)

	switch tool {
	case model.ToolSkills:
		result, err = d.runSkills(ctx, goal)
	case model.ToolResume:
		result, err = d.runResume(ctx, mem, goal)
	case model.ToolCover:
		result, err = d.runCover(ctx, mem, goal)
	case model.ToolJobs:
		result = d.SearchJobs(ctx, goal, mem.String(model.KeyLocation)).Listings
	case model.ToolPosts:
		result = d.SearchPosts(ctx, goal, mem.String(model.KeyCompany), mem.String(model.KeyLocation))
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownTool, tool)
	}
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", tool, err)
	}

	mem.Set(string(tool), result)
	return result, nil
}

func (d *Dispatcher) runSkills(ctx context.Context, goal string) ([]string, error) {
	skills, err := d.drafter.Skills(ctx, goal)
	if err != nil {
		if d.tolerate(model.ToolSkills, err) {
			return []string{}, nil
		}
		return nil, err
	}
	return skills, nil
}

func (d *Dispatcher) runResume(ctx context.Context, mem *model.Memory, goal string) (string, error) {
	skills, err := d.skillsFor(ctx, mem, goal)
	if err != nil {
		return "", err
	}
	text, err := d.drafter.Resume(ctx, goal, skills)
	if err != nil {
		if d.tolerate(model.ToolResume, err) {
			return "", nil
		}
		return "", err
	}
	return text, nil
}

func (d *Dispatcher) runCover(ctx context.Context, mem *model.Memory, goal string) (string, error) {
	skills, err := d.skillsFor(ctx, mem, goal)
	if err != nil {
		return "", err
	}
	text, err := d.drafter.Cover(ctx, goal, skills)
	if err != nil {
		if d.tolerate(model.ToolCover, err) {
			return "", nil
		}
		return "", err
	}
	return text, nil
}

// skillsFor returns the skills already in memory, or computes them when the
// skills tool has not run or produced nothing.
func (d *Dispatcher) skillsFor(ctx context.Context, mem *model.Memory, goal string) ([]string, error) {
	if skills, ok := mem.Skills(); ok && len(skills) > 0 {
		return skills, nil
	}

	d.logger.Debug("skills missing from memory, deriving", "goal", goal)
	skills, err := d.runSkills(ctx, goal)
	if err != nil {
		return nil, err
	}
	if d.opts.CacheDerivedSkills && len(skills) > 0 {
		mem.Set(string(model.ToolSkills), skills)
	}
	return skills, nil
}

// tolerate reports whether a generation failure should be replaced by an
// empty value instead of aborting the run.
func (d *Dispatcher) tolerate(tool model.ToolID, err error) bool {
	if d.opts.OnLLMFailure != PolicyPlaceholder || errors.Is(err, context.Canceled) {
		return false
	}
	d.logger.Warn("text generation failed, storing empty result", "tool", tool, "error", err)
	return true
}
