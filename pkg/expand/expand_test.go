package expand_test

import (
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dtsync/pkg/config"
	"github.com/arthur-debert/dtsync/pkg/errors"
	"github.com/arthur-debert/dtsync/pkg/expand"
	"github.com/arthur-debert/dtsync/pkg/filesystem"
	"github.com/arthur-debert/dtsync/pkg/testutil"
	"github.com/arthur-debert/dtsync/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hostname = "a"
	staging  = "/staging"
)

func group(sources ...string) config.Group {
	return config.Group{
		Name:    "demo",
		Basedir: "/src",
		Sources: sources,
		Target:  "/dst",
	}
}

func expandMem(t *testing.T, files map[string]string, g config.Group) (*expand.Result, error) {
	t.Helper()
	fsys := testutil.NewTestFS()
	testutil.WriteTree(t, fsys, "/", files)
	return expand.New(fsys, hostname, staging).Expand(g, config.Resolve(config.Global{}, g))
}

func relPaths(items []types.ResolvedItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.RelPath
	}
	return out
}

func expansionCode(t *testing.T, err error) errors.ErrorCode {
	t.Helper()
	require.Error(t, err)
	var expErr *errors.ExpansionError
	require.True(t, stderrors.As(err, &expErr), "expected ExpansionError, got %T: %v", err, err)
	assert.Equal(t, "demo", expErr.Group)
	return expErr.Err.Code
}

func TestExpand_HostResolution(t *testing.T) {
	files := map[string]string{
		"src/config":    "general",
		"src/config@@a": "for a",
		"src/config@@b": "for b",
	}

	for _, pattern := range []string{"*", "config", "config*"} {
		t.Run(pattern, func(t *testing.T) {
			res, err := expandMem(t, files, group(pattern))
			require.NoError(t, err)
			require.Len(t, res.Items, 1)
			item := res.Items[0]
			assert.Equal(t, "config", item.RelPath)
			assert.Equal(t, "/src/config@@a", item.Source)
			assert.Equal(t, types.HostCurrent, item.Host)
			assert.Equal(t, "demo", item.Group)
		})
	}
}

func TestExpand_HostVariantWithoutGeneralSibling(t *testing.T) {
	res, err := expandMem(t, map[string]string{"src/config@@a": "x"}, group("config"))
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "/src/config@@a", res.Items[0].Source)
	assert.Empty(t, res.Warnings)
}

func TestExpand_OtherHostOnly(t *testing.T) {
	res, err := expandMem(t, map[string]string{"src/config@@b": "x"}, group("*"))
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestExpand_DirectoryRecursionAndSubtreeGating(t *testing.T) {
	files := map[string]string{
		"src/nvim/init.lua":         "",
		"src/nvim/lua/plug.lua":     "general",
		"src/nvim/lua@@a/plug.lua":  "for a",
		"src/nvim/lua@@a/only.lua":  "",
		"src/nvim/lua@@b/other.lua": "",
		"src/nvim/deep/x/y/z.txt":   "",
	}
	res, err := expandMem(t, files, group("nvim"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"nvim/deep/x/y/z.txt",
		"nvim/init.lua",
		"nvim/lua/only.lua",
		"nvim/lua/plug.lua",
	}, relPaths(res.Items))

	for _, it := range res.Items {
		assert.NotContains(t, it.Source, "@@b")
		if it.RelPath == "nvim/lua/plug.lua" {
			assert.Equal(t, "/src/nvim/lua@@a/plug.lua", it.Source)
		}
	}
}

func TestExpand_HostDirectoryReplacesWholeGeneralDirectory(t *testing.T) {
	files := map[string]string{
		"src/lua/general_only.lua": "",
		"src/lua/plug.lua":         "general",
		"src/lua@@a/plug.lua":      "for a",
		"src/keep.lua":             "",
	}

	for _, pattern := range []string{"lua", "*", "**"} {
		t.Run(pattern, func(t *testing.T) {
			res, err := expandMem(t, files, group(pattern))
			require.NoError(t, err)

			rels := relPaths(res.Items)
			assert.Contains(t, rels, "lua/plug.lua")
			assert.NotContains(t, rels, "lua/general_only.lua")
			for _, it := range res.Items {
				assert.NotContains(t, it.Source, "/src/lua/")
			}
		})
	}
}

func TestExpand_OverlappingPatternsDedupe(t *testing.T) {
	files := map[string]string{
		"src/a.txt":     "",
		"src/dir/b.txt": "",
	}
	res, err := expandMem(t, files, group("*", "**", "dir/*.txt"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "dir/b.txt"}, relPaths(res.Items))
}

func TestExpand_PerHostBasedir(t *testing.T) {
	files := map[string]string{
		"src/general.txt": "",
		"src@@a/mine.txt": "",
	}

	res, err := expandMem(t, files, group("*"))
	require.NoError(t, err)
	assert.Equal(t, []string{"mine.txt"}, relPaths(res.Items))
	assert.Equal(t, "/src@@a/mine.txt", res.Items[0].Source)

	g := group("*")
	g.PerHost = config.Ptr(false)
	res, err = expandMem(t, files, g)
	require.NoError(t, err)
	assert.Equal(t, []string{"general.txt"}, relPaths(res.Items))
}

func TestExpand_MissingBasedirWarns(t *testing.T) {
	res, err := expandMem(t, map[string]string{"elsewhere/x": ""}, group("*"))
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Message, "group matches nothing")
}

func TestExpand_NoMatchWarns(t *testing.T) {
	res, err := expandMem(t, map[string]string{"src/a.txt": ""}, group("*.lua", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, relPaths(res.Items))
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "*.lua", res.Warnings[0].Path)
}

func TestExpand_Ignored(t *testing.T) {
	files := map[string]string{
		"src/keep.lua":        "",
		"src/old.bak":         "",
		"src/cache/blob":      "",
		"src/nested/drop.bak": "",
		"src/Cargo.lock":      "",
	}
	g := group("*")
	g.Ignored = []string{"*.bak", "cache", ".lock"}
	res, err := expandMem(t, files, g)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cargo.lock", "keep.lua"}, relPaths(res.Items))
}

func TestExpand_EnvironmentInPattern(t *testing.T) {
	t.Setenv("DTSYNC_TEST_EXT", "lua")
	files := map[string]string{
		"src/a.lua": "",
		"src/b.vim": "",
	}
	res, err := expandMem(t, files, group("*.$DTSYNC_TEST_EXT"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.lua"}, relPaths(res.Items))
}

func TestExpand_FatalConditions(t *testing.T) {
	tests := []struct {
		name   string
		files  map[string]string
		mutate func(g *config.Group)
		code   errors.ErrorCode
	}{
		{
			name:  "basedir_is_file",
			files: map[string]string{"src": "not a dir"},
			code:  errors.ErrBasedirNotDir,
		},
		{
			name:  "target_is_file",
			files: map[string]string{"src/a": "", "dst": "file"},
			code:  errors.ErrTargetNotDir,
		},
		{
			name:  "target_parent_is_file",
			files: map[string]string{"src/a": "", "dst": "file"},
			mutate: func(g *config.Group) {
				g.Target = "/dst/sub"
			},
			code: errors.ErrTargetCreate,
		},
		{
			name:  "staging_is_file",
			files: map[string]string{"src/a": "", "staging": "file"},
			code:  errors.ErrStagingNotDir,
		},
		{
			name:  "ambiguous_double_separator",
			files: map[string]string{"src/x@@a@@b": ""},
			code:  errors.ErrHostAmbiguous,
		},
		{
			name:  "separator_prefix",
			files: map[string]string{"src/@@a": ""},
			code:  errors.ErrHostAmbiguous,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := group("*")
			if tt.mutate != nil {
				tt.mutate(&g)
			}
			_, err := expandMem(t, tt.files, g)
			assert.Equal(t, tt.code, expansionCode(t, err))
		})
	}
}

func TestExpand_StagingIgnoredForCopy(t *testing.T) {
	g := group("*")
	g.Method = config.Ptr(types.MethodCopy)
	res, err := expandMem(t, map[string]string{"src/a": "", "staging": "file"}, g)
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
}

func TestExpand_TargetNotCreatableOnReadOnlyFS(t *testing.T) {
	mem := afero.NewMemMapFs()
	testutil.WriteTree(t, filesystem.NewAferoFS(mem), "/", map[string]string{"src/a": ""})
	fsys := filesystem.NewAferoFS(afero.NewReadOnlyFs(mem))

	g := group("*")
	_, err := expand.New(fsys, hostname, staging).Expand(g, config.Resolve(config.Global{}, g))
	assert.Equal(t, errors.ErrTargetCreate, expansionCode(t, err))
}

func TestExpand_Symlinks(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	testutil.CreateFile(t, src, "real.txt", "x")
	testutil.CreateFile(t, root, "outside/dir/f", "y")
	testutil.CreateSymlink(t, filepath.Join(src, "real.txt"), filepath.Join(src, "link.txt"))
	testutil.CreateSymlink(t, filepath.Join(root, "missing"), filepath.Join(src, "broken.txt"))
	testutil.CreateSymlink(t, filepath.Join(root, "outside", "dir"), filepath.Join(src, "dirlink"))

	g := config.Group{Name: "demo", Basedir: src, Sources: []string{"*"}, Target: filepath.Join(root, "dst")}
	fsys := filesystem.NewOS()
	res, err := expand.New(fsys, hostname, filepath.Join(root, "staging")).Expand(g, config.Resolve(config.Global{}, g))
	require.NoError(t, err)

	assert.Equal(t, []string{"link.txt", "real.txt"}, relPaths(res.Items))

	var messages []string
	for _, w := range res.Warnings {
		messages = append(messages, w.Message)
	}
	assert.Contains(t, messages, "broken symlink skipped")
	assert.Contains(t, messages, "symlinked directory not followed")
}

func TestExpand_IsReadOnly(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, filesystem.NewOS(), root, map[string]string{
		"src/a.txt":          "a",
		"src/dir/b.txt":      "b",
		"src/dir@@a/c.txt":   "c",
		"src/dir@@zzz/d.txt": "d",
	})
	before := testutil.Snapshot(t, root)

	g := config.Group{
		Name:    "demo",
		Basedir: filepath.Join(root, "src"),
		Sources: []string{"*", "missing"},
		Target:  filepath.Join(root, "dst", "nested"),
	}
	res, err := expand.New(filesystem.NewOS(), hostname, filepath.Join(root, "staging", "deep")).
		Expand(g, config.Resolve(config.Global{}, g))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "dir/c.txt"}, relPaths(res.Items))

	assert.Equal(t, before, testutil.Snapshot(t, root))
}
