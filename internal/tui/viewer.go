// Package tui is the interactive terminal front end: a spinner with the live
// agent trace, a tabbed results viewer and a job title picker.
package tui

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobscout/internal/present"
)

type tab int

const (
	tabJobs tab = iota
	tabPosts
	tabResume
	tabCover
	tabTrace
)

var tabNames = []string{"Jobs", "Posts", "Resume", "Cover Letter", "Trace"}

// Lines per item in the jobs and posts lists (title + subtitle + blank separator).
const itemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	tabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("240"))

	activeTabStyle = tabStyle.
			Bold(true).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	itemTitleStyle = lipgloss.NewStyle().
			Bold(true)

	itemSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(12)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)
)

type viewerModel struct {
	report   *present.Report
	trace    []string
	tab      tab
	cursors  [2]int // jobs, posts
	vp       viewport.Model
	width    int
	height   int
	ready    bool
	view     viewState
	openFunc func(string)
}

func newViewerModel(r *present.Report, trace []string) viewerModel {
	return viewerModel{report: r, trace: trace, openFunc: openURL}
}

func (m viewerModel) Init() tea.Cmd {
	return nil
}

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m viewerModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "right", "l":
		m.tab = (m.tab + 1) % tab(len(tabNames))
		m.resetContent()
		return m, nil
	case "shift+tab", "left", "h":
		m.tab = (m.tab + tab(len(tabNames)) - 1) % tab(len(tabNames))
		m.resetContent()
		return m, nil
	case "up", "k":
		if m.isList() {
			m.moveCursor(-1)
			return m, nil
		}
	case "down", "j":
		if m.isList() {
			m.moveCursor(1)
			return m, nil
		}
	case "enter":
		if m.tab == tabJobs && len(m.realJobs()) > 0 {
			m.view = viewDetail
			m.vp.SetContent(m.renderJobDetail())
			m.vp.GotoTop()
		}
		return m, nil
	case "o":
		if url := m.selectedURL(); url != "" {
			m.openFunc(url)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m viewerModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		m.refreshContent()
		return m, nil
	case "o":
		if url := m.selectedURL(); url != "" {
			m.openFunc(url)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m viewerModel) isList() bool {
	return m.tab == tabJobs || m.tab == tabPosts
}

// realJobs excludes the "no jobs found" placeholder.
func (m viewerModel) realJobs() []present.JobCard {
	var out []present.JobCard
	for _, j := range m.report.Jobs {
		if !j.Placeholder {
			out = append(out, j)
		}
	}
	return out
}

func (m *viewerModel) moveCursor(delta int) {
	i := int(m.tab)
	n := len(m.realJobs())
	if m.tab == tabPosts {
		n = len(m.report.Posts)
	}
	m.cursors[i] = clamp(m.cursors[i]+delta, 0, max(n-1, 0))
	m.refreshContent()
	m.ensureCursorVisible()
}

func (m *viewerModel) ensureCursorVisible() {
	top := m.cursors[m.tab] * itemHeight
	bottom := top + itemHeight - 1
	if top < m.vp.YOffset {
		m.vp.SetYOffset(top)
	} else if bottom >= m.vp.YOffset+m.vp.Height {
		m.vp.SetYOffset(bottom - m.vp.Height + 1)
	}
}

func (m viewerModel) selectedURL() string {
	switch m.tab {
	case tabJobs:
		jobs := m.realJobs()
		if len(jobs) > 0 {
			return jobs[m.cursors[tabJobs]].URL
		}
	case tabPosts:
		if len(m.report.Posts) > 0 {
			return m.report.Posts[m.cursors[tabPosts]].Link
		}
	}
	return ""
}

func (m *viewerModel) recalcLayout() {
	// Tab row (1) + border top/bottom (2) + status bar (1).
	w := max(m.width-4, 20)
	h := max(m.height-4, 5)
	if !m.ready {
		m.vp = viewport.New(w, h)
		m.ready = true
	} else {
		m.vp.Width = w
		m.vp.Height = h
	}
	m.refreshContent()
}

func (m *viewerModel) resetContent() {
	m.refreshContent()
	m.vp.GotoTop()
}

func (m *viewerModel) refreshContent() {
	if m.view == viewDetail {
		m.vp.SetContent(m.renderJobDetail())
		return
	}
	m.vp.SetContent(m.renderTab())
}

func (m viewerModel) wrapWidth() int {
	return max(m.vp.Width-2, 20)
}

func (m viewerModel) renderTab() string {
	r := m.report
	switch m.tab {
	case tabJobs:
		jobs := m.realJobs()
		if len(jobs) == 0 {
			if len(r.Jobs) > 0 {
				return "  " + r.Jobs[0].Title
			}
			return "  (no jobs)"
		}
		items := make([][2]string, len(jobs))
		for i, j := range jobs {
			posted := j.Posted
			if posted == "" {
				posted = "n/a"
			}
			items[i] = [2]string{fmt.Sprintf("%s at %s", j.Title, j.Company), fmt.Sprintf("%s · %s", j.Location, posted)}
		}
		return renderItems(items, m.cursors[tabJobs])

	case tabPosts:
		if len(r.Posts) == 0 {
			return "  (no related posts)"
		}
		items := make([][2]string, len(r.Posts))
		for i, p := range r.Posts {
			items[i] = [2]string{p.Title, truncateLine(p.Snippet, m.wrapWidth())}
		}
		return renderItems(items, m.cursors[tabPosts])

	case tabResume:
		if r.Resume == nil {
			return "  (no resume)"
		}
		var b strings.Builder
		for _, c := range r.Resume.Contact {
			b.WriteString(itemTitleStyle.Render(c) + "\n")
		}
		for _, s := range r.Resume.Sections {
			b.WriteString("\n" + sectionStyle.Render(s.Name) + "\n")
			b.WriteString(wrapLines(s.Body, m.wrapWidth()) + "\n")
		}
		return b.String()

	case tabCover:
		c := r.Cover
		switch {
		case c == nil:
			return "  (no cover letter)"
		case c.Warning != "":
			return warningStyle.Render("⚠ " + c.Warning)
		case len(c.Sections) > 0:
			var b strings.Builder
			for _, s := range c.Sections {
				b.WriteString(sectionStyle.Render(s.Name) + "\n")
				b.WriteString(wrapLines(s.Body, m.wrapWidth()) + "\n\n")
			}
			return b.String()
		default:
			return wrapLines(c.Raw, m.wrapWidth())
		}

	case tabTrace:
		if len(m.trace) == 0 {
			return "  (no trace)"
		}
		return wrapLines(strings.Join(m.trace, "\n"), m.wrapWidth())
	}
	return ""
}

func (m viewerModel) renderJobDetail() string {
	jobs := m.realJobs()
	if len(jobs) == 0 {
		return ""
	}
	j := jobs[m.cursors[tabJobs]]

	var b strings.Builder
	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	b.WriteString(detailTitleStyle.Render(j.Title) + "\n")
	addField("Company", j.Company)
	addField("Location", j.Location)
	addField("Posted", j.Posted)
	b.WriteByte('\n')
	addField("Apply URL", j.URL)
	if j.Description != "" {
		b.WriteString("\n" + wordWrap(j.Description, m.wrapWidth()) + "\n")
	} else {
		b.WriteString("\n" + dimStyle.Render("  no description") + "\n")
	}
	return b.String()
}

func renderItems(items [][2]string, cursor int) string {
	var b strings.Builder
	for i, it := range items {
		titleSt, subSt, prefix := itemTitleStyle, itemSubtitleStyle, "  "
		if i == cursor {
			titleSt, subSt, prefix = selectedTitleStyle, selectedSubtitleStyle, "> "
		}
		b.WriteString(prefix + titleSt.Render(it[0]) + "\n")
		b.WriteString(prefix + subSt.Render(it[1]) + "\n")
		if i < len(items)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m viewerModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.view == viewDetail {
		title := detailTitleStyle.Render("Job Details")
		content := borderStyle.Width(m.width - 2).Render(m.vp.View())
		status := statusBarStyle.Width(m.width).Render(" o open URL  esc/backspace back  ↑/↓ scroll  q quit")
		return title + "\n" + content + "\n" + status
	}

	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := name
		switch tab(i) {
		case tabJobs:
			label = fmt.Sprintf("%s (%d)", name, len(m.realJobs()))
		case tabPosts:
			label = fmt.Sprintf("%s (%d)", name, len(m.report.Posts))
		}
		if tab(i) == m.tab {
			tabs[i] = activeTabStyle.Render(label)
		} else {
			tabs[i] = tabStyle.Render(label)
		}
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	content := borderStyle.Width(m.width - 2).Render(m.vp.View())

	hint := " ←/→/Tab switch  ↑/↓ scroll  q quit"
	switch m.tab {
	case tabJobs:
		hint = " ←/→/Tab switch  ↑/↓ cursor  Enter detail  o open  q quit"
	case tabPosts:
		hint = " ←/→/Tab switch  ↑/↓ cursor  o open  q quit"
	}
	status := statusBarStyle.Width(m.width).Render(fmt.Sprintf(" %s%s", m.report.Goal, hint))

	return tabRow + "\n" + content + "\n" + status
}

// wrapLines word-wraps each line of text separately, keeping blank lines.
func wrapLines(text string, width int) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = wordWrap(l, width)
	}
	return strings.Join(lines, "\n")
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// RunViewer launches the full-screen results viewer and blocks until the user quits.
func RunViewer(r *present.Report, trace []string) error {
	p := tea.NewProgram(newViewerModel(r, trace), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
