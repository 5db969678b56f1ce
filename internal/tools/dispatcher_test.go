package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobscout/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDrafter returns canned values and counts skills calls.
type fakeDrafter struct {
	skills      []string
	skillsErr   error
	resumeErr   error
	coverErr    error
	skillsCalls int
	gotSkills   []string
}

func (f *fakeDrafter) Skills(_ context.Context, _ string) ([]string, error) {
	f.skillsCalls++
	return f.skills, f.skillsErr
}

func (f *fakeDrafter) Resume(_ context.Context, job string, skills []string) (string, error) {
	f.gotSkills = skills
	if f.resumeErr != nil {
		return "", f.resumeErr
	}
	return "# Resume for " + job + "\n## Key Skills\n" + strings.Join(skills, ", "), nil
}

func (f *fakeDrafter) Cover(_ context.Context, job string, skills []string) (string, error) {
	f.gotSkills = skills
	if f.coverErr != nil {
		return "", f.coverErr
	}
	return "Dear hiring manager, I want to be a " + job, nil
}

type fakeJobs struct {
	listings    []model.JobListing
	err         error
	gotQuery    string
	gotLocation string
}

func (f *fakeJobs) SearchJobs(_ context.Context, query, location string) ([]model.JobListing, error) {
	f.gotQuery, f.gotLocation = query, location
	return f.listings, f.err
}

// fakePosts answers by query; unknown queries return no posts.
type fakePosts struct {
	results map[string][]model.Post
	errs    map[string]error
	queries []string
}

func (f *fakePosts) SearchPosts(_ context.Context, query string) ([]model.Post, error) {
	f.queries = append(f.queries, query)
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return f.results[query], nil
}

func newTestDispatcher(d Drafter, jobs model.JobSearcher, posts model.PostSearcher, opts Options) *Dispatcher {
	return NewDispatcher(d, jobs, posts, opts, discardLogger())
}

func TestUseTool_UnknownTool(t *testing.T) {
	d := newTestDispatcher(&fakeDrafter{}, &fakeJobs{}, &fakePosts{}, Options{})
	mem := model.NewMemory()

	_, err := d.UseTool(context.Background(), model.ToolID("weather"), mem, "pilot")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnknownTool))
	assert.Equal(t, 0, mem.Len(), "unknown tool must not touch memory")
}

func TestUseTool_SkillsStoredBeforeReturn(t *testing.T) {
	d := newTestDispatcher(&fakeDrafter{skills: []string{"SQL", "Python"}}, &fakeJobs{}, &fakePosts{}, Options{})
	mem := model.NewMemory()

	got, err := d.UseTool(context.Background(), model.ToolSkills, mem, "Data Analyst")
	require.NoError(t, err)
	assert.Equal(t, []string{"SQL", "Python"}, got)

	stored, ok := mem.Skills()
	require.True(t, ok)
	assert.Equal(t, got, stored)
}

func TestUseTool_ResumeUsesSkillsFromMemory(t *testing.T) {
	drafter := &fakeDrafter{skills: []string{"never used"}}
	d := newTestDispatcher(drafter, &fakeJobs{}, &fakePosts{}, Options{})
	mem := model.NewMemory()
	mem.Set(string(model.ToolSkills), []string{"Go", "SQL"})

	got, err := d.UseTool(context.Background(), model.ToolResume, mem, "Backend Engineer")
	require.NoError(t, err)
	assert.Contains(t, got, "Go, SQL")
	assert.Equal(t, 0, drafter.skillsCalls)
	assert.Equal(t, []string{"Go", "SQL"}, drafter.gotSkills)

	resume, ok := mem.Resume()
	require.True(t, ok)
	assert.Equal(t, got, resume)
}

func TestUseTool_CoverDerivesSkillsWithoutCaching(t *testing.T) {
	drafter := &fakeDrafter{skills: []string{"Navigation"}}
	d := newTestDispatcher(drafter, &fakeJobs{}, &fakePosts{}, Options{})
	mem := model.NewMemory()

	_, err := d.UseTool(context.Background(), model.ToolCover, mem, "pilot")
	require.NoError(t, err)
	assert.Equal(t, 1, drafter.skillsCalls)
	assert.Equal(t, []string{"Navigation"}, drafter.gotSkills)
	assert.False(t, mem.Has(string(model.ToolSkills)))
	assert.Equal(t, []string{"cover"}, mem.Keys())
}

func TestUseTool_EmptySkillsInMemoryAreRecomputed(t *testing.T) {
	drafter := &fakeDrafter{skills: []string{"Navigation"}}
	d := newTestDispatcher(drafter, &fakeJobs{}, &fakePosts{}, Options{CacheDerivedSkills: true})
	mem := model.NewMemory()
	mem.Set(string(model.ToolSkills), []string{})

	_, err := d.UseTool(context.Background(), model.ToolResume, mem, "pilot")
	require.NoError(t, err)
	assert.Equal(t, 1, drafter.skillsCalls)

	skills, _ := mem.Skills()
	assert.Equal(t, []string{"Navigation"}, skills, "derived skills are cached when enabled")
}

func TestUseTool_GenerationFailurePropagates(t *testing.T) {
	genErr := fmt.Errorf("%w: boom", model.ErrGeneration)
	d := newTestDispatcher(&fakeDrafter{resumeErr: genErr, skills: []string{"x"}}, &fakeJobs{}, &fakePosts{}, Options{})
	mem := model.NewMemory()

	_, err := d.UseTool(context.Background(), model.ToolResume, mem, "pilot")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrGeneration)
	assert.False(t, mem.Has(string(model.ToolResume)))
}

func TestUseTool_GenerationFailurePlaceholder(t *testing.T) {
	genErr := fmt.Errorf("%w: boom", model.ErrGeneration)
	drafter := &fakeDrafter{skillsErr: genErr, coverErr: genErr}
	d := newTestDispatcher(drafter, &fakeJobs{}, &fakePosts{}, Options{OnLLMFailure: PolicyPlaceholder})
	mem := model.NewMemory()

	got, err := d.UseTool(context.Background(), model.ToolSkills, mem, "pilot")
	require.NoError(t, err)
	assert.Equal(t, []string{}, got)

	got, err = d.UseTool(context.Background(), model.ToolCover, mem, "pilot")
	require.NoError(t, err)
	assert.Equal(t, "", got)
	assert.Equal(t, []string{"skills", "cover"}, mem.Keys())
}

func TestUseTool_PlaceholderStillHonoursCancellation(t *testing.T) {
	drafter := &fakeDrafter{skillsErr: fmt.Errorf("%w: %w", model.ErrGeneration, context.Canceled)}
	d := newTestDispatcher(drafter, &fakeJobs{}, &fakePosts{}, Options{OnLLMFailure: PolicyPlaceholder})

	_, err := d.UseTool(context.Background(), model.ToolSkills, model.NewMemory(), "pilot")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseLLMFailurePolicy(t *testing.T) {
	p, err := ParseLLMFailurePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyPropagate, p)

	p, err = ParseLLMFailurePolicy("placeholder")
	require.NoError(t, err)
	assert.Equal(t, PolicyPlaceholder, p)

	_, err = ParseLLMFailurePolicy("ignore")
	assert.Error(t, err)
}
