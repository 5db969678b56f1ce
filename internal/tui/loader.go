package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobscout/internal/model"
)

// ErrCancelled is returned by RunLoader when the user presses ctrl+c.
var ErrCancelled = errors.New("cancelled")

// liveLines is the number of trace lines shown under the spinner.
const liveLines = 8

// RunFunc runs the agent, reporting each trace line through trace.
type RunFunc func(ctx context.Context, trace func(string)) (*model.Memory, error)

var (
	spinnerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	liveTraceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).PaddingLeft(2)
)

type traceLineMsg string

type runDoneMsg struct {
	mem *model.Memory
	err error
}

type loaderModel struct {
	goal    string
	spinner spinner.Model
	events  <-chan tea.Msg
	cancel  context.CancelFunc
	lines   []string
	result  *model.Memory
	err     error
	done    bool
}

func newLoaderModel(goal string, events <-chan tea.Msg, cancel context.CancelFunc) loaderModel {
	return loaderModel{
		goal:    goal,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		events:  events,
		cancel:  cancel,
	}
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case traceLineMsg:
		m.lines = append(m.lines, string(msg))
		return m, waitForEvent(m.events)
	case runDoneMsg:
		m.result = msg.mem
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.cancel != nil {
				m.cancel()
			}
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s Working on %s...\n", m.spinner.View(), m.goal)

	start := max(len(m.lines)-liveLines, 0)
	for _, l := range m.lines[start:] {
		b.WriteString(liveTraceStyle.Render(truncateLine(l, 120)))
		b.WriteByte('\n')
	}
	return b.String()
}

func truncateLine(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// RunLoader shows a spinner and the live agent trace while run executes.
// It renders inline (no alt screen) and returns the run's memory, every trace
// line received and the run's error. Cancelling ctx cancels the run.
func RunLoader(ctx context.Context, goal string, run RunFunc) (*model.Memory, []string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	quit := make(chan struct{})
	defer close(quit)
	events := startRun(ctx, run, quit)

	p := tea.NewProgram(newLoaderModel(goal, events, cancel))
	result, err := p.Run()
	if err != nil {
		return nil, nil, err
	}
	final := result.(loaderModel)
	return final.result, final.lines, final.err
}

// startRun executes run in a goroutine and delivers its trace lines and
// final runDoneMsg on the returned channel until quit is closed.
func startRun(ctx context.Context, run RunFunc, quit <-chan struct{}) <-chan tea.Msg {
	events := make(chan tea.Msg, 64)
	go func() {
		send := func(msg tea.Msg) {
			select {
			case events <- msg:
			case <-quit:
			}
		}
		mem, err := run(ctx, func(line string) { send(traceLineMsg(line)) })
		send(runDoneMsg{mem: mem, err: err})
	}()
	return events
}
