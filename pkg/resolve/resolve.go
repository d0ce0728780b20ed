// Package resolve merges the expanded items of every group into one sync
// plan without destination collisions.
//
// When several groups produce the same destination the group with the
// highest scope wins (Dropin over App over General); equal scopes fall back
// to configuration order, and within a group the earlier item wins. Losers
// are dropped and only logged at debug level.
package resolve

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dtsync/pkg/config"
	"github.com/arthur-debert/dtsync/pkg/errors"
	"github.com/arthur-debert/dtsync/pkg/logging"
	"github.com/arthur-debert/dtsync/pkg/rename"
	"github.com/arthur-debert/dtsync/pkg/types"
)

// GroupItems is the expansion output of one group, in configuration order
type GroupItems struct {
	Group     config.Group
	Effective config.Effective
	Items     []types.ResolvedItem
	// Context is handed to the template renderer for this group's items
	Context map[string]any
}

type candidate struct {
	item    types.PlanItem
	rank    int
	dropped bool
}

// Resolve renames every item, computes its destination and staging path,
// and drops collision losers. staging is the staging root.
func Resolve(staging string, groups []GroupItems) ([]types.PlanItem, []types.Warning, error) {
	logger := logging.GetLogger("resolve")

	var (
		cands    []candidate
		warnings []types.Warning
		best     = make(map[string]int)
	)

	for _, gi := range groups {
		chain, err := rename.Compile(gi.Effective.Rename)
		if err != nil {
			return nil, nil, errors.Wrapf(err, errors.ErrConfigValid, "group %s: invalid rename rules", gi.Group.Name)
		}
		rank := gi.Effective.Scope.Rank()

		for _, it := range gi.Items {
			renamed := chain.Apply(it.RelPath)
			if !insideTarget(renamed) {
				w := types.Warning{Group: gi.Group.Name, Path: it.Source, Message: "renamed path " + renamed + " leaves the target directory, skipped"}
				logger.Warn().Str("group", w.Group).Str("path", w.Path).Str("renamed", renamed).Msg("Rename escapes target")
				warnings = append(warnings, w)
				continue
			}

			item := types.PlanItem{
				Source:         it.Source,
				Destination:    filepath.Join(gi.Group.Target, filepath.FromSlash(renamed)),
				Group:          gi.Group.Name,
				RelPath:        it.RelPath,
				Method:         gi.Effective.Method,
				Scope:          gi.Effective.Scope,
				Renderable:     gi.Effective.Renderable,
				AllowOverwrite: gi.Effective.AllowOverwrite,
				Context:        gi.Context,
			}
			if item.Method == types.MethodSymlink {
				item.StagingPath = StagingPath(staging, gi.Group.Name, it.RelPath)
			}

			cands = append(cands, candidate{item: item, rank: rank})
			idx := len(cands) - 1

			prev, clash := best[item.Destination]
			if !clash {
				best[item.Destination] = idx
				continue
			}

			loser, winner := idx, prev
			if rank > cands[prev].rank {
				loser, winner = prev, idx
				best[item.Destination] = idx
			}
			cands[loser].dropped = true
			logger.Debug().
				Str("destination", item.Destination).
				Str("kept_group", cands[winner].item.Group).
				Str("kept_source", cands[winner].item.Source).
				Str("dropped_group", cands[loser].item.Group).
				Str("dropped_source", cands[loser].item.Source).
				Msg("Destination collision resolved")
		}
	}

	plan := make([]types.PlanItem, 0, len(best))
	for _, c := range cands {
		if !c.dropped {
			plan = append(plan, c.item)
		}
	}
	return plan, warnings, nil
}

// StagingPath is where a symlink-method item's content is materialized:
// {staging}/{group}/{relative path before renaming}
func StagingPath(staging, group, rel string) string {
	return filepath.Join(staging, group, filepath.FromSlash(rel))
}

func insideTarget(rel string) bool {
	clean := path.Clean(rel)
	return rel != "" && clean != "." && clean != ".." &&
		!strings.HasPrefix(clean, "../") && !path.IsAbs(clean)
}
