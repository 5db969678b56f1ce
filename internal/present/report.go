// Package present turns agent memory into something people read: a terminal
// or Markdown report, Slack messages, or log lines.
package present

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobscout/internal/markdown"
	"github.com/amishk599/jobscout/internal/model"
)

// DescriptionLimit is the number of characters of a job description shown in a card.
const DescriptionLimit = 300

// NoCoverWarning is shown when the cover letter tool ran but produced nothing.
const NoCoverWarning = "No cover letter was generated."

// resumeOrder lists the resume sections shown, in display order.
var resumeOrder = []string{"Summary", "Key Skills", "Experience", "Education"}

// Report is the rendered view of one agent run.
type Report struct {
	Goal   string
	Jobs   []JobCard
	Posts  []model.Post
	Resume *ResumeView
	Cover  *CoverView
}

// JobCard is a job listing cleaned up for display.
type JobCard struct {
	Title       string
	Company     string
	Location    string
	Posted      string
	Description string
	URL         string
	Placeholder bool
}

// ResumeView holds the contact block and the known sections of a resume.
type ResumeView struct {
	Contact  []string
	Sections markdown.Sections
}

// CoverView holds a cover letter split into sections. Raw is set instead when
// the letter has no "## " headers. Warning is set when the letter is empty.
type CoverView struct {
	Sections markdown.Sections
	Raw      string
	Warning  string
}

// BuildReport assembles a Report from the memory of a finished run.
func BuildReport(goal string, mem *model.Memory) *Report {
	r := &Report{Goal: goal}

	if jobs, ok := mem.Jobs(); ok {
		for _, j := range jobs {
			r.Jobs = append(r.Jobs, jobCard(j))
		}
	}
	if posts, ok := mem.Posts(); ok {
		r.Posts = posts
	}
	if resume, ok := mem.Resume(); ok && strings.TrimSpace(resume) != "" {
		r.Resume = resumeView(resume)
	}
	if cover, ok := mem.Cover(); ok {
		r.Cover = coverView(cover)
	}
	return r
}

func jobCard(j model.JobListing) JobCard {
	desc := ""
	if j.Description != "" {
		desc = CleanText(truncate(j.Description, DescriptionLimit) + "...")
	}
	return JobCard{
		Title:       CleanText(j.Title),
		Company:     CleanText(j.Company),
		Location:    CleanText(j.Location),
		Posted:      j.DatePosted,
		Description: desc,
		URL:         j.URL,
		Placeholder: j.IsPlaceholder(),
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// CleanText strips markup and collapses all whitespace runs to single spaces.
func CleanText(s string) string {
	if s == "" {
		return s
	}
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html.UnescapeString(s)))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

var sectionWords = map[string]bool{
	"summary":    true,
	"key skills": true,
	"experience": true,
	"education":  true,
	"---":        true,
}

// ContactLines returns the non-empty lines before the first "##" header,
// with "#" characters and code fence markers removed.
func ContactLines(resume string) []string {
	var lines []string
	for _, raw := range strings.Split(resume, "\n") {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "##") {
			break
		}
		if line == "" || sectionWords[strings.ToLower(line)] {
			continue
		}
		lines = append(lines, strings.TrimSpace(strings.ReplaceAll(line, "#", "")))
	}

	if len(lines) > 0 && strings.HasPrefix(lines[0], "```") {
		first := strings.ReplaceAll(lines[0], "```markdown", "")
		lines[0] = strings.TrimSpace(strings.ReplaceAll(first, "```", ""))
	}
	if n := len(lines); n > 0 && strings.HasSuffix(lines[n-1], "```") {
		lines[n-1] = strings.TrimSpace(strings.ReplaceAll(lines[n-1], "```", ""))
	}

	out := lines[:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func resumeView(resume string) *ResumeView {
	v := &ResumeView{Contact: ContactLines(resume)}
	all := markdown.SplitResume(resume)
	for _, name := range resumeOrder {
		body, ok := all.Get(name)
		if !ok {
			continue
		}
		if name == "Education" {
			body = cleanEducation(body)
		}
		v.Sections = append(v.Sections, markdown.Section{Name: name, Body: body})
	}
	return v
}

// cleanEducation drops boilerplate reference lines and trailing code fences.
func cleanEducation(body string) string {
	var kept []string
	for _, line := range strings.Split(body, "\n") {
		if strings.Contains(strings.ToLower(line), "references available upon request") {
			continue
		}
		kept = append(kept, line)
	}
	for len(kept) > 0 && strings.TrimSpace(kept[len(kept)-1]) == "```" {
		kept = kept[:len(kept)-1]
	}
	return strings.Join(kept, "\n")
}

func coverView(cover string) *CoverView {
	if strings.TrimSpace(cover) == "" {
		return &CoverView{Warning: NoCoverWarning}
	}
	if secs := markdown.Split(cover); len(secs) > 0 {
		return &CoverView{Sections: secs}
	}
	return &CoverView{Raw: cover}
}
