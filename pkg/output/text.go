package output

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/dtsync/pkg/errors"
	"github.com/arthur-debert/dtsync/pkg/types"
)

// textRenderer writes human-readable output, styled or plain
type textRenderer struct {
	w io.Writer
	p palette
}

func newTextRenderer(w io.Writer, styled bool) *textRenderer {
	return &textRenderer{w: w, p: newPalette(w, styled)}
}

func (r *textRenderer) RenderReport(report *types.Report) error {
	var b strings.Builder

	title := "Sync"
	if report.DryRun {
		title = "Sync (dry run)"
	}
	b.WriteString(r.p.title.Render(title) + "\n")

	r.writeWarnings(&b, report.Warnings)

	group := ""
	for _, res := range report.Results {
		if res.Item.Group != group {
			group = res.Item.Group
			b.WriteString("\n" + group + ":\n")
		}
		line := fmt.Sprintf("    %s %s -> %s",
			r.p.badge(res.State, string(res.Action)),
			res.Item.RelPath,
			r.p.path.Render(res.Item.Destination))
		if reason := resultReason(res); reason != "" {
			line += " " + r.p.muted.Render("("+reason+")")
		}
		b.WriteString(line + "\n")
	}
	if len(report.Results) == 0 {
		b.WriteString("\n" + r.p.muted.Render("Nothing to sync") + "\n")
	}

	b.WriteString("\n" + r.summary(report) + "\n")
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *textRenderer) RenderPlan(plan []types.PlanItem, warnings []types.Warning) error {
	var b strings.Builder
	b.WriteString(r.p.title.Render("Plan") + "\n")
	r.writeWarnings(&b, warnings)

	group := ""
	for _, item := range plan {
		if item.Group != group {
			group = item.Group
			b.WriteString("\n" + group + " " + r.p.muted.Render("("+string(item.Scope)+", "+string(item.Method)+")") + ":\n")
		}
		b.WriteString(fmt.Sprintf("    %s -> %s\n", item.RelPath, r.p.path.Render(item.Destination)))
	}
	b.WriteString(fmt.Sprintf("\n%d items\n", len(plan)))

	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *textRenderer) RenderError(err error) error {
	var cerr *errors.ConfigError
	if stderrors.As(err, &cerr) && len(cerr.Violations) > 1 {
		var b strings.Builder
		b.WriteString(r.p.failure.Render("Error:") + fmt.Sprintf(" invalid configuration (%d problems)\n", len(cerr.Violations)))
		for _, v := range cerr.Violations {
			b.WriteString("  - " + v.String() + "\n")
		}
		_, werr := io.WriteString(r.w, b.String())
		return werr
	}
	_, werr := fmt.Fprintf(r.w, "%s %v\n", r.p.failure.Render("Error:"), err)
	return werr
}

func (r *textRenderer) writeWarnings(b *strings.Builder, warnings []types.Warning) {
	if len(warnings) == 0 {
		return
	}
	b.WriteString("\n")
	for _, w := range warnings {
		b.WriteString(r.p.warning.Render("!") + " " + w.String() + "\n")
	}
}

func (r *textRenderer) summary(report *types.Report) string {
	parts := []string{
		r.p.success.Render(fmt.Sprintf("%d done", report.Counts[string(types.StateDone)])),
		fmt.Sprintf("%d skipped", report.Counts[string(types.StateSkipped)]),
	}
	if n := report.Counts[string(types.StatePending)]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d planned", n))
	}
	failed := fmt.Sprintf("%d failed", report.Counts[string(types.StateFailed)])
	if report.Counts[string(types.StateFailed)] > 0 {
		failed = r.p.failure.Render(failed)
	}
	parts = append(parts, failed)
	if len(report.Warnings) > 0 {
		parts = append(parts, r.p.warning.Render(fmt.Sprintf("%d warnings", len(report.Warnings))))
	}
	return strings.Join(parts, ", ")
}

// resultReason is the parenthesized detail of a result line
func resultReason(res types.ItemResult) string {
	if res.Err != nil {
		var itemErr *errors.ItemError
		if stderrors.As(res.Err, &itemErr) {
			if itemErr.Err.Wrapped != nil {
				return itemErr.Err.Message + ": " + itemErr.Err.Wrapped.Error()
			}
			return itemErr.Err.Message
		}
		return res.Err.Error()
	}
	return res.Reason
}
