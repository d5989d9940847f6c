// Package prompt turns day-bucketed calendar events into the text handed to
// an LLM. Templates use text/template syntax and execute against a Data root,
// so custom templates from the config file can reach {{.Days}} the same way
// the built-in one does.
package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/teemow/cal2prompt/internal/calendar"
)

// Data is the root object a prompt template executes against.
type Data struct {
	Days []calendar.Day
}

// Render executes the template text against the given days and returns the
// prompt. Parse and execute errors are reported with enough context to spot
// a broken custom template.
func Render(text string, days []calendar.Day) (string, error) {
	tmpl, err := template.New("prompt").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %w", err)
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, Data{Days: days}); err != nil {
		return "", fmt.Errorf("failed to render prompt template: %w", err)
	}
	return buf.String(), nil
}
