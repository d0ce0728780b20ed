package resolve_test

import (
	"testing"

	"github.com/arthur-debert/dtsync/pkg/config"
	"github.com/arthur-debert/dtsync/pkg/resolve"
	"github.com/arthur-debert/dtsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupItems(name string, scope types.Scope, target string, rels ...string) resolve.GroupItems {
	g := config.Group{Name: name, Scope: scope, Basedir: "/src/" + name, Target: target}
	gi := resolve.GroupItems{Group: g, Effective: config.Resolve(config.Global{}, g)}
	for _, rel := range rels {
		gi.Items = append(gi.Items, types.ResolvedItem{
			Source:  "/src/" + name + "/" + rel,
			RelPath: rel,
			Group:   name,
		})
	}
	return gi
}

func sources(plan []types.PlanItem) []string {
	out := make([]string, len(plan))
	for i, p := range plan {
		out[i] = p.Source
	}
	return out
}

func TestResolve_HigherScopeWinsRegardlessOfOrder(t *testing.T) {
	general := groupItems("base", types.ScopeGeneral, "/dst", "init.lua")
	dropin := groupItems("override", types.ScopeDropin, "/dst", "init.lua")

	for name, order := range map[string][]resolve.GroupItems{
		"dropin_first": {dropin, general},
		"dropin_last":  {general, dropin},
	} {
		t.Run(name, func(t *testing.T) {
			plan, _, err := resolve.Resolve("/staging", order)
			require.NoError(t, err)
			require.Len(t, plan, 1)
			assert.Equal(t, "override", plan[0].Group)
		})
	}
}

func TestResolve_ScopeRanking(t *testing.T) {
	plan, _, err := resolve.Resolve("/staging", []resolve.GroupItems{
		groupItems("general", types.ScopeGeneral, "/dst", "x"),
		groupItems("app", types.ScopeApp, "/dst", "x"),
	})
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "app", plan[0].Group)
}

func TestResolve_EqualScopeEarlierGroupWins(t *testing.T) {
	plan, _, err := resolve.Resolve("/staging", []resolve.GroupItems{
		groupItems("first", types.ScopeApp, "/dst", "x"),
		groupItems("second", types.ScopeApp, "/dst", "x"),
	})
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "first", plan[0].Group)
}

func TestResolve_EarlierItemWinsWithinGroup(t *testing.T) {
	gi := groupItems("g", types.ScopeGeneral, "/dst", "dot-vimrc", "z/.vimrc")
	gi.Effective.Rename = []types.RenameRule{{Pattern: "^dot-", Substitution: "."}, {Pattern: "^z/", Substitution: ""}}

	plan, _, err := resolve.Resolve("/staging", []resolve.GroupItems{gi})
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "/src/g/dot-vimrc", plan[0].Source)
	assert.Equal(t, "/dst/.vimrc", plan[0].Destination)
}

func TestResolve_OrderAndFields(t *testing.T) {
	a := groupItems("a", types.ScopeGeneral, "/home", "dot-bashrc", "dot-config/nvim/init.lua")
	a.Effective.Rename = []types.RenameRule{{Pattern: "^dot-", Substitution: "."}}
	a.Context = map[string]any{"group": "a"}

	b := groupItems("b", types.ScopeGeneral, "/opt", "tool.conf")
	b.Effective.Method = types.MethodCopy
	b.Effective.AllowOverwrite = true

	plan, warnings, err := resolve.Resolve("/staging", []resolve.GroupItems{a, b})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, []string{
		"/src/a/dot-bashrc",
		"/src/a/dot-config/nvim/init.lua",
		"/src/b/tool.conf",
	}, sources(plan))

	nvim := plan[1]
	assert.Equal(t, "/home/.config/nvim/init.lua", nvim.Destination)
	assert.Equal(t, "dot-config/nvim/init.lua", nvim.RelPath)
	assert.Equal(t, "/staging/a/dot-config/nvim/init.lua", nvim.StagingPath)
	assert.Equal(t, types.MethodSymlink, nvim.Method)
	assert.True(t, nvim.Renderable)
	assert.False(t, nvim.AllowOverwrite)
	assert.Equal(t, "a", nvim.Context["group"])

	tool := plan[2]
	assert.Equal(t, "/opt/tool.conf", tool.Destination)
	assert.Empty(t, tool.StagingPath)
	assert.True(t, tool.AllowOverwrite)
}

func TestResolve_RenameEscapingTargetIsSkipped(t *testing.T) {
	gi := groupItems("g", types.ScopeGeneral, "/dst", "evil", "fine")
	gi.Effective.Rename = []types.RenameRule{{Pattern: "^evil$", Substitution: "../etc/passwd"}}

	plan, warnings, err := resolve.Resolve("/staging", []resolve.GroupItems{gi})
	require.NoError(t, err)
	assert.Equal(t, []string{"/src/g/fine"}, sources(plan))
	require.Len(t, warnings, 1)
	assert.Equal(t, "/src/g/evil", warnings[0].Path)
}

func TestResolve_InvalidRename(t *testing.T) {
	gi := groupItems("g", types.ScopeGeneral, "/dst", "x")
	gi.Effective.Rename = []types.RenameRule{{Pattern: "("}}
	_, _, err := resolve.Resolve("/staging", []resolve.GroupItems{gi})
	assert.Error(t, err)
}

func TestStagingPath(t *testing.T) {
	assert.Equal(t, "/s/nvim/lua/x.lua", resolve.StagingPath("/s", "nvim", "lua/x.lua"))
}
