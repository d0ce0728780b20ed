// Package engine wires the sync pipeline together:
//
//	validate -> expand -> rename -> resolve -> execute
//
// Stages run strictly in sequence; each consumes the complete output of
// the previous one. Configuration and expansion errors abort the run
// before anything is written.
package engine

import (
	"context"

	"github.com/arthur-debert/dtsync/pkg/config"
	"github.com/arthur-debert/dtsync/pkg/executor"
	"github.com/arthur-debert/dtsync/pkg/expand"
	"github.com/arthur-debert/dtsync/pkg/filesystem"
	"github.com/arthur-debert/dtsync/pkg/host"
	"github.com/arthur-debert/dtsync/pkg/logging"
	"github.com/arthur-debert/dtsync/pkg/resolve"
	"github.com/arthur-debert/dtsync/pkg/template"
	"github.com/arthur-debert/dtsync/pkg/types"
)

// Options contains configuration for a pipeline run
type Options struct {
	// FS defaults to the OS filesystem
	FS types.FS
	// Hostname defaults to host.Current()
	Hostname string
	// Renderer defaults to a template.TextRenderer for Hostname
	Renderer template.Renderer
	DryRun   bool
	Jobs     int
	// Groups restricts the run to the named groups
	Groups []string
}

// Planned is the output of the read-only half of the pipeline
type Planned struct {
	Plan     []types.PlanItem
	Warnings []types.Warning
}

func (o *Options) defaults() error {
	if o.FS == nil {
		o.FS = filesystem.NewOS()
	}
	if o.Hostname == "" {
		name, err := host.Current()
		if err != nil {
			return err
		}
		o.Hostname = name
	}
	if o.Renderer == nil {
		o.Renderer = template.NewTextRenderer(o.Hostname)
	}
	return nil
}

// Plan validates cfg and computes the sync plan without touching anything
func Plan(ctx context.Context, cfg *config.Config, opts Options) (*Planned, error) {
	logger := logging.GetLogger("engine")
	defer logging.LogOperationStart(logger, "plan")()

	if err := opts.defaults(); err != nil {
		return nil, err
	}

	// the whole file is validated; the selection only narrows what is expanded
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	selected, err := cfg.Select(opts.Groups)
	if err != nil {
		return nil, err
	}

	exp := expand.New(opts.FS, opts.Hostname, selected.Global.Staging)
	planned := &Planned{}
	inputs := make([]resolve.GroupItems, 0, len(selected.Groups))

	for _, g := range selected.Groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		eff := config.Resolve(selected.Global, g)
		res, err := exp.Expand(g, eff)
		if err != nil {
			return nil, err
		}
		planned.Warnings = append(planned.Warnings, res.Warnings...)
		inputs = append(inputs, resolve.GroupItems{
			Group:     g,
			Effective: eff,
			Items:     res.Items,
			Context:   selected.ContextFor(g.Name, opts.Hostname),
		})
	}

	plan, warnings, err := resolve.Resolve(selected.Global.Staging, inputs)
	if err != nil {
		return nil, err
	}
	planned.Plan = plan
	planned.Warnings = append(planned.Warnings, warnings...)

	logger.Info().
		Int("groups", len(selected.Groups)).
		Int("items", len(plan)).
		Int("warnings", len(planned.Warnings)).
		Msg("Sync plan ready")
	return planned, nil
}

// Run plans and executes. A non-nil error means the run was aborted;
// item failures are reported in the Report and do not produce an error.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*types.Report, error) {
	logger := logging.GetLogger("engine")

	if err := opts.defaults(); err != nil {
		return nil, err
	}
	planned, err := Plan(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}

	exec := executor.New(executor.Options{
		FS:       opts.FS,
		Renderer: opts.Renderer,
		DryRun:   opts.DryRun,
		Jobs:     opts.Jobs,
		Logger:   logging.GetLogger("executor"),
	})
	results, execErr := exec.Execute(ctx, planned.Plan)

	report := &types.Report{
		DryRun:   opts.DryRun,
		Warnings: planned.Warnings,
		Results:  results,
	}
	report.Tally()

	logger.Info().
		Bool("dry_run", opts.DryRun).
		Int("done", report.Counts[string(types.StateDone)]).
		Int("skipped", report.Counts[string(types.StateSkipped)]).
		Int("failed", report.Counts[string(types.StateFailed)]).
		Int("mutations", report.Mutations()).
		Msg("Sync finished")
	return report, execErr
}
