package ai

import (
	"embed"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// Prompts holds the parsed templates for the three drafting calls.
// Each template receives promptData.
type Prompts struct {
	Skills *template.Template
	Resume *template.Template
	Cover  *template.Template
}

type promptData struct {
	Job    string
	Skills []string
}

var promptFuncs = template.FuncMap{"join": strings.Join}

// DefaultPrompts are parsed once at package init and shared by every Drafter.
var DefaultPrompts = Prompts{
	Skills: mustParsePrompt("skills.tmpl"),
	Resume: mustParsePrompt("resume.tmpl"),
	Cover:  mustParsePrompt("cover.tmpl"),
}

func mustParsePrompt(name string) *template.Template {
	raw, err := promptFS.ReadFile("prompts/" + name)
	if err != nil {
		panic(err)
	}
	return template.Must(template.New(name).Funcs(promptFuncs).Parse(strings.TrimSpace(string(raw))))
}
