package topics

import (
	"github.com/charmbracelet/glamour"
)

// GlamourRenderer renders markdown topics with glamour
type GlamourRenderer struct {
	// Style is a glamour style name ("dark", "light", "notty") or a style
	// file path; empty or "auto" detects it from the terminal
	Style string
	// Width wraps lines at the given column when positive
	Width int
}

// NewGlamourRenderer creates a markdown renderer. Styled output is only
// used when styled is true; otherwise the "notty" style keeps it plain.
func NewGlamourRenderer(styled bool) *GlamourRenderer {
	r := &GlamourRenderer{Style: "auto", Width: 80}
	if !styled {
		r.Style = "notty"
	}
	return r
}

// Render converts markdown to terminal output. Other formats, and any
// rendering failure, fall back to the raw content.
func (r *GlamourRenderer) Render(content string, format string) string {
	if format != ".md" {
		return content
	}

	var options []glamour.TermRendererOption
	if r.Style != "" && r.Style != "auto" {
		options = append(options, glamour.WithStandardStyle(r.Style))
	} else {
		options = append(options, glamour.WithAutoStyle())
	}
	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
