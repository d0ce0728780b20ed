package executor

import (
	"context"
	"sync"
	"time"

	"github.com/arthur-debert/dtsync/pkg/filesystem"
	"github.com/arthur-debert/dtsync/pkg/logging"
	"github.com/arthur-debert/dtsync/pkg/template"
	"github.com/arthur-debert/dtsync/pkg/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Options contains configuration for the executor
type Options struct {
	// Filesystem operations interface for testing
	FS types.FS
	// Renderer is used for renderable text items; nil disables rendering
	Renderer template.Renderer
	DryRun   bool
	// Jobs bounds concurrent item execution; values below 2 run sequentially
	Jobs   int
	Logger zerolog.Logger
}

// Executor runs plan items against a filesystem
type Executor struct {
	fs       types.FS
	renderer template.Renderer
	dryRun   bool
	jobs     int
	logger   zerolog.Logger

	// dirMu serializes directory creation so each created directory is
	// counted once across parallel items
	dirMu sync.Mutex
}

// New creates a new executor instance
func New(opts Options) *Executor {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("executor")
	}

	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}

	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}

	return &Executor{
		fs:       fs,
		renderer: opts.Renderer,
		dryRun:   opts.DryRun,
		jobs:     jobs,
		logger:   logger,
	}
}

// Execute processes the plan and returns one result per executed item, in
// plan order. A non-nil error is fatal: it means an unanticipated failure
// (or cancellation) stopped execution, and the results then cover only the
// items that ran.
func (e *Executor) Execute(ctx context.Context, plan []types.PlanItem) ([]types.ItemResult, error) {
	start := time.Now()
	e.logger.Debug().
		Int("items", len(plan)).
		Int("jobs", e.jobs).
		Bool("dry_run", e.dryRun).
		Msg("Executing plan")

	results := make([]types.ItemResult, len(plan))
	ran := make([]bool, len(plan))

	var err error
	if e.jobs == 1 {
		err = e.runSequential(ctx, plan, results, ran)
	} else {
		err = e.runParallel(ctx, plan, results, ran)
	}

	out := make([]types.ItemResult, 0, len(plan))
	for i := range results {
		if ran[i] {
			out = append(out, results[i])
		}
	}

	e.logger.Debug().
		Int("executed", len(out)).
		Dur("duration", time.Since(start)).
		Msg("Plan executed")
	return out, err
}

func (e *Executor) runSequential(ctx context.Context, plan []types.PlanItem, results []types.ItemResult, ran []bool) error {
	for i, item := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := e.executeItem(item)
		results[i], ran[i] = res, true
		if err != nil {
			return err
		}
	}
	return nil
}

// runParallel executes items on a bounded pool. Items own disjoint
// destinations after resolution; only staging directory creation is
// shared, and it is serialized per group.
func (e *Executor) runParallel(ctx context.Context, plan []types.PlanItem, results []types.ItemResult, ran []bool) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.jobs)

	for i, item := range plan {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.executeItem(item)
			results[i], ran[i] = res, true
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
