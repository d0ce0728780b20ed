// Package output renders sync reports and plans for humans and machines.
// It supports terminal (rich), text (plain), JSON and YAML formats.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/dtsync/pkg/types"
)

// Renderer is the common interface for all output renderers
type Renderer interface {
	// RenderReport renders the outcome of a run
	RenderReport(report *types.Report) error

	// RenderPlan renders a resolved plan without executing it
	RenderPlan(plan []types.PlanItem, warnings []types.Warning) error

	// RenderError renders an error with appropriate formatting
	RenderError(err error) error
}

// planView is the serialized form of a plan
type planView struct {
	Plan     []types.PlanItem `json:"plan" yaml:"plan"`
	Warnings []types.Warning  `json:"warnings" yaml:"warnings"`
}

// NewRenderer creates a new renderer based on the specified format.
// It detects terminal capabilities when format is FormatAuto.
func NewRenderer(format Format, w io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		if file, ok := w.(*os.File); ok {
			return NewRenderer(DetectFormat(file), w)
		}
		return NewRenderer(FormatText, w)
	case FormatTerminal:
		return newTextRenderer(w, true), nil
	case FormatText:
		return newTextRenderer(w, false), nil
	case FormatJSON:
		return newJSONRenderer(w), nil
	case FormatYAML:
		return newYAMLRenderer(w), nil
	default:
		return nil, fmt.Errorf("unknown format: %v", format)
	}
}
