package present

import (
	"embed"
	"fmt"
	"io"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(
	template.New("report.md.tmpl").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		ParseFS(templateFS, "templates/report.md.tmpl"),
)

// WriteMarkdown renders r as a Markdown document.
func WriteMarkdown(w io.Writer, r *Report) error {
	if err := reportTemplate.Execute(w, r); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Markdown is WriteMarkdown into a string.
func Markdown(r *Report) (string, error) {
	var b strings.Builder
	if err := WriteMarkdown(&b, r); err != nil {
		return "", err
	}
	return b.String(), nil
}
