package ai

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/amishk599/jobscout/internal/model"
)

// Token ceilings per drafting call.
const (
	SkillsMaxTokens = 120
	ResumeMaxTokens = 600
	CoverMaxTokens  = 350
)

// Drafter renders the drafting prompts and sends them to a TextGenerator.
type Drafter struct {
	gen     model.TextGenerator
	prompts Prompts
	logger  *slog.Logger
}

// NewDrafter creates a Drafter. A zero Prompts value selects DefaultPrompts.
func NewDrafter(gen model.TextGenerator, prompts Prompts, logger *slog.Logger) *Drafter {
	if prompts.Skills == nil || prompts.Resume == nil || prompts.Cover == nil {
		prompts = DefaultPrompts
	}
	return &Drafter{gen: gen, prompts: prompts, logger: logger}
}

// Skills asks for the core skills of a role and splits the answer into a list.
func (d *Drafter) Skills(ctx context.Context, job string) ([]string, error) {
	raw, err := d.generate(ctx, d.prompts.Skills, promptData{Job: job}, SkillsMaxTokens)
	if err != nil {
		return nil, err
	}
	return SplitSkills(raw), nil
}

// Resume drafts a Markdown resume focused on skills.
func (d *Drafter) Resume(ctx context.Context, job string, skills []string) (string, error) {
	return d.generate(ctx, d.prompts.Resume, promptData{Job: job, Skills: skills}, ResumeMaxTokens)
}

// Cover drafts a short cover letter highlighting skills.
func (d *Drafter) Cover(ctx context.Context, job string, skills []string) (string, error) {
	return d.generate(ctx, d.prompts.Cover, promptData{Job: job, Skills: skills}, CoverMaxTokens)
}

func (d *Drafter) generate(ctx context.Context, tmpl *template.Template, data promptData, maxTokens int) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", tmpl.Name(), err)
	}

	d.logger.Debug("llm request", "prompt", tmpl.Name(), "max_tokens", maxTokens)
	text, err := d.gen.Complete(ctx, buf.String(), maxTokens)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", model.ErrGeneration, tmpl.Name(), err)
	}
	return strings.TrimSpace(text), nil
}

// SplitSkills splits raw LLM output on commas, newlines, bullets and hyphens,
// trims each fragment and drops the empty ones.
func SplitSkills(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		switch r {
		case ',', '\n', '•', '-':
			return true
		}
		return false
	})

	skills := make([]string, 0, len(fields))
	for _, f := range fields {
		if s := strings.TrimSpace(f); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}
