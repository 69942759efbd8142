// Package prompts renders the system prompt and threads the growing query across iterations.
package prompts

import (
	_ "embed"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolloop/tools"
)

// DefaultSystemTemplate is the built-in instruction prompt.
//
//go:embed templates/system.tmpl
var DefaultSystemTemplate string

// NextStepPrompt is appended to the query after the iteration summaries.
const NextStepPrompt = "  What should I do next?"

// History is the view of the conversation the query is built from.
type History interface {
	// HasResult returns true once any iteration produced a result.
	HasResult() bool
	// Summaries returns the summary lines in iteration order.
	Summaries() []string
}

// TemplateData is available to the system prompt template.
type TemplateData struct {
	// Tools are the catalog descriptors.
	Tools []*tools.Descriptor
	// Catalog are the rendered catalog lines.
	Catalog []string
}

// Builder composes the model prompts of a run.
type Builder struct {
	system string
}

// NewBuilder renders the system prompt for the catalog,
// an empty template uses DefaultSystemTemplate.
func NewBuilder(tmpl string, catalog *tools.Catalog) (*Builder, error) {
	if tmpl == "" {
		tmpl = DefaultSystemTemplate
	}
	system, err := Render(tmpl, TemplateData{
		Tools:   catalog.Tools(),
		Catalog: catalog.Lines(),
	})
	if err != nil {
		return nil, err
	}
	return &Builder{system: system}, nil
}

// Render executes the template with sprig functions.
func Render(tmpl string, data any) (string, error) {
	t, err := template.New("system").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse prompt template")
	}
	var b strings.Builder
	if err = t.Execute(&b, data); err != nil {
		return "", errors.Wrap(err, "failed to render prompt template")
	}
	return b.String(), nil
}

// System returns the rendered system prompt.
func (b *Builder) System() string {
	return b.system
}

// Query returns the query of the next iteration.
// Until the first result, prev is returned as is, and the caller passes the task.
// After that, every summary so far and NextStepPrompt are appended to prev,
// so the query grows with each iteration.
func (b *Builder) Query(prev string, state History) string {
	if !state.HasResult() {
		return prev
	}
	return prev + "\n\n" + strings.Join(state.Summaries(), " ") + NextStepPrompt
}

// Prompt returns the full prompt sent to the model.
func (b *Builder) Prompt(query string) string {
	return b.system + "\n\nQuery: " + query
}
