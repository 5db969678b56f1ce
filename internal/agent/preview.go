package agent

import (
	"fmt"
	"strings"

	"github.com/amishk599/jobscout/internal/model"
)

// Preview renders v as a single string cut to at most n runes.
func Preview(v any, n int) string {
	s := stringify(v)
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		return "[" + strings.Join(t, ", ") + "]"
	case []model.JobListing:
		parts := make([]string, len(t))
		for i, j := range t {
			parts[i] = fmt.Sprintf("{title: %s, company: %s, location: %s, url: %s, date_posted: %s, description: %s}",
				j.Title, j.Company, j.Location, j.URL, j.DatePosted, j.Description)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []model.Post:
		parts := make([]string, len(t))
		for i, p := range t {
			parts[i] = fmt.Sprintf("{title: %s, link: %s, snippet: %s}", p.Title, p.Link, p.Snippet)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
