package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobscout/internal/markdown"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/present"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(t *testing.T, cmd tea.Cmd) bool {
	t.Helper()
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func sampleReport() *present.Report {
	return &present.Report{
		Goal: "Data Analyst",
		Jobs: []present.JobCard{
			{Title: "Analyst", Company: "Acme", Location: "Remote", URL: "https://acme.example/1", Description: "Crunch numbers..."},
			{Title: "Senior Analyst", Company: "Beta", Location: "NYC", URL: "https://beta.example/2"},
		},
		Posts: []model.Post{{Title: "Day in the life", Link: "https://blog.example/a", Snippet: "A look."}},
		Resume: &present.ResumeView{
			Contact:  []string{"Jane Doe"},
			Sections: markdown.Sections{{Name: "Summary", Body: "Five years of SQL."}},
		},
		Cover: &present.CoverView{Warning: present.NoCoverWarning},
	}
}

func sizedViewer(t *testing.T) viewerModel {
	t.Helper()
	m := newViewerModel(sampleReport(), []string{"PLAN: tasks for → Data Analyst", "FINISH."})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(viewerModel)
}

func TestViewer_TabsCycle(t *testing.T) {
	m := sizedViewer(t)
	assert.Contains(t, m.View(), "Jobs (2)")
	assert.Contains(t, m.vp.View(), "Analyst at Acme")

	for _, want := range []string{"Day in the life", "Five years of SQL.", present.NoCoverWarning, "FINISH."} {
		next, _ := m.Update(key("tab"))
		m = next.(viewerModel)
		assert.Contains(t, m.vp.View(), want)
	}

	next, _ := m.Update(key("tab"))
	m = next.(viewerModel)
	assert.Equal(t, tabJobs, m.tab)
}

func TestViewer_CursorAndDetail(t *testing.T) {
	m := sizedViewer(t)

	next, _ := m.Update(key("down"))
	m = next.(viewerModel)
	assert.Equal(t, 1, m.cursors[tabJobs])

	next, _ = m.Update(key("down"))
	m = next.(viewerModel)
	assert.Equal(t, 1, m.cursors[tabJobs], "cursor should clamp at last job")

	next, _ = m.Update(key("enter"))
	m = next.(viewerModel)
	require.Equal(t, viewDetail, m.view)
	assert.Contains(t, m.vp.View(), "Senior Analyst")
	assert.Contains(t, m.vp.View(), "https://beta.example/2")

	next, _ = m.Update(key("esc"))
	m = next.(viewerModel)
	assert.Equal(t, viewList, m.view)
}

func TestViewer_OpenSelectedURL(t *testing.T) {
	m := sizedViewer(t)
	var opened []string
	m.openFunc = func(u string) { opened = append(opened, u) }

	next, _ := m.Update(key("o"))
	m = next.(viewerModel)
	next, _ = m.Update(key("tab"))
	m = next.(viewerModel)
	m.Update(key("o"))

	assert.Equal(t, []string{"https://acme.example/1", "https://blog.example/a"}, opened)
}

func TestViewer_PlaceholderOnly(t *testing.T) {
	r := &present.Report{Goal: "pilot", Jobs: []present.JobCard{{Title: "No jobs found for 'pilot'", Placeholder: true}}}
	m := newViewerModel(r, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m = next.(viewerModel)

	assert.Contains(t, m.vp.View(), "No jobs found for 'pilot'")
	next, _ = m.Update(key("enter"))
	assert.Equal(t, viewList, next.(viewerModel).view)
}

func TestViewer_Quit(t *testing.T) {
	m := sizedViewer(t)
	_, cmd := m.Update(key("q"))
	assert.True(t, isQuit(t, cmd))
}

func TestLoader_CollectsTraceAndQuitsOnDone(t *testing.T) {
	events := make(chan tea.Msg, 1)
	m := newLoaderModel("pilot", events, nil)

	next, cmd := m.Update(traceLineMsg("THOUGHT: Research skills required"))
	m = next.(loaderModel)
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "THOUGHT: Research skills required")
	assert.Contains(t, m.View(), "Working on pilot")

	mem := model.NewMemory()
	next, cmd = m.Update(runDoneMsg{mem: mem})
	m = next.(loaderModel)
	assert.True(t, isQuit(t, cmd))
	assert.Same(t, mem, m.result)
	assert.Empty(t, m.View())
}

func TestLoader_CtrlCCancels(t *testing.T) {
	cancelled := false
	m := newLoaderModel("pilot", make(chan tea.Msg), func() { cancelled = true })

	next, cmd := m.Update(key("ctrl+c"))
	m = next.(loaderModel)
	assert.True(t, cancelled)
	assert.True(t, isQuit(t, cmd))
	assert.True(t, errors.Is(m.err, ErrCancelled))
}

func TestStartRun_ParentCancellationReachesRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	quit := make(chan struct{})
	defer close(quit)

	events := startRun(ctx, func(ctx context.Context, trace func(string)) (*model.Memory, error) {
		trace("PLAN: tasks for → pilot")
		<-ctx.Done()
		return model.NewMemory(), ctx.Err()
	}, quit)

	assert.Equal(t, traceLineMsg("PLAN: tasks for → pilot"), <-events)
	cancel()

	select {
	case msg := <-events:
		done, ok := msg.(runDoneMsg)
		require.True(t, ok, "expected runDoneMsg, got %T", msg)
		assert.ErrorIs(t, done.err, context.Canceled)
		assert.NotNil(t, done.mem)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not observe parent cancellation")
	}
}

func TestStartRun_QuitUnblocksSender(t *testing.T) {
	quit := make(chan struct{})
	finished := make(chan struct{})

	startRun(context.Background(), func(_ context.Context, trace func(string)) (*model.Memory, error) {
		defer close(finished)
		for i := 0; i < 100; i++ {
			trace("line")
		}
		return nil, nil
	}, quit)
	close(quit)

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("run blocked after the loader quit")
	}
}

func TestLoader_ShowsOnlyRecentLines(t *testing.T) {
	m := newLoaderModel("pilot", make(chan tea.Msg), nil)
	for i := 0; i < liveLines+3; i++ {
		next, _ := m.Update(traceLineMsg(strings.Repeat("x", i+1)))
		m = next.(loaderModel)
	}
	assert.Len(t, m.lines, liveLines+3)
	assert.NotContains(t, m.View(), "\n  x\n")
}

func TestPicker(t *testing.T) {
	m := pickerModel{titles: []string{"Data Analyst", "Pilot"}, chosen: -1}

	next, _ := m.Update(key("j"))
	m = next.(pickerModel)
	next, cmd := m.Update(key("enter"))
	m = next.(pickerModel)

	assert.True(t, isQuit(t, cmd))
	assert.Equal(t, 1, m.chosen)
	assert.Contains(t, m.View(), "> Pilot")
}

func TestWordWrap(t *testing.T) {
	assert.Equal(t, "aaa bbb\nccc", wordWrap("aaa bbb ccc", 7))
	assert.Equal(t, "", wordWrap("   ", 10))
	assert.Equal(t, "a\n\nb", wrapLines("a\n\nb", 10))
}
