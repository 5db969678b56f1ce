package adapter

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractText converts an HTML or HTML-encoded string to plain text.
// Entities are unescaped first so double-encoded markup is still stripped,
// then whitespace is collapsed.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(unescaped))
	if err != nil {
		return strings.Join(strings.Fields(unescaped), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
