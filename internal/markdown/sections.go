// Package markdown splits generated Markdown documents into named sections.
package markdown

import "strings"

// ContactSection is the synthetic section opened by a level-1 header in a resume.
const ContactSection = "contact"

// Section is one named block of a document.
type Section struct {
	Name string
	Body string
}

// Sections is an ordered list of sections. Names are unique.
type Sections []Section

// Map returns the sections as name → body.
func (s Sections) Map() map[string]string {
	m := make(map[string]string, len(s))
	for _, sec := range s {
		m[sec.Name] = sec.Body
	}
	return m
}

// Get returns the body of the named section.
func (s Sections) Get(name string) (string, bool) {
	for _, sec := range s {
		if sec.Name == name {
			return sec.Body, true
		}
	}
	return "", false
}

// String serializes the sections back into level-2 Markdown.
func (s Sections) String() string {
	var b strings.Builder
	for i, sec := range s {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("## ")
		b.WriteString(sec.Name)
		b.WriteString("\n")
		b.WriteString(sec.Body)
	}
	return b.String()
}

// ParseSections splits doc on "## " headers. Text before the first header is dropped.
func ParseSections(doc string) map[string]string {
	return Split(doc).Map()
}

// ParseResume is ParseSections plus a "contact" section opened by a "# " header,
// whose first line is the header text.
func ParseResume(doc string) map[string]string {
	return SplitResume(doc).Map()
}

// Split is the ordered form of ParseSections.
func Split(doc string) Sections {
	return split(doc, false)
}

// SplitResume is the ordered form of ParseResume.
func SplitResume(doc string) Sections {
	return split(doc, true)
}

func split(doc string, resume bool) Sections {
	var (
		order   []string
		bodies  = make(map[string][]string)
		current string
		open    bool
	)

	start := func(name string, first ...string) {
		if _, seen := bodies[name]; !seen {
			order = append(order, name)
		}
		// Re-opening a name discards its earlier body.
		bodies[name] = append([]string(nil), first...)
		current, open = name, true
	}

	for _, raw := range strings.Split(doc, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "## "):
			start(strings.TrimSpace(strings.TrimPrefix(line, "## ")))
		case resume && strings.HasPrefix(line, "# "):
			start(ContactSection, strings.TrimSpace(strings.TrimPrefix(line, "# ")))
		case open:
			bodies[current] = append(bodies[current], line)
		}
	}

	out := make(Sections, 0, len(order))
	for _, name := range order {
		out = append(out, Section{
			Name: name,
			Body: strings.TrimSpace(strings.Join(bodies[name], "\n")),
		})
	}
	return out
}
