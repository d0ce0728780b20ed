// internal/cli/cli_test.go
// TEST TYPE: Integration Tests
// DEPENDENCIES: Real filesystem (t.TempDir)
// PURPOSE: Test the command line end to end: flags, output formats and exit codes

package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dtsync/pkg/filesystem"
	"github.com/arthur-debert/dtsync/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliEnv struct {
	root    string
	dots    string
	home    string
	staging string
	config  string
}

func setupCLI(t *testing.T) *cliEnv {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	t.Setenv("DTSYNC_HOSTNAME", "box")
	t.Setenv("NO_COLOR", "1")

	env := &cliEnv{
		root:    root,
		dots:    filepath.Join(root, "dots"),
		home:    filepath.Join(root, "home"),
		staging: filepath.Join(root, "staging"),
		config:  filepath.Join(root, "config.toml"),
	}
	testutil.WriteTree(t, filesystem.NewOS(), env.dots, map[string]string{
		"shell/dot-bashrc":      "export EDITOR={{ .editor }}\n",
		"shell/dot-zshrc@@box":  "# box\n",
		"shell/dot-zshrc@@work": "# work\n",
		"git/gitconfig":         "[user]\n",
	})
	require.NoError(t, os.MkdirAll(env.home, 0o755))

	content := fmt.Sprintf(`
[global]
staging = %q
method = "Copy"
rename = [["^dot-", "."]]

[context.shell]
editor = "nvim"

[[local]]
name = "shell"
basedir = %q
sources = ["*"]
target = %q

[[local]]
name = "git"
basedir = %q
sources = ["*"]
target = %q
method = "Symlink"
`, env.staging, filepath.Join(env.dots, "shell"), env.home, filepath.Join(env.dots, "git"), filepath.Join(env.home, ".config", "git"))
	require.NoError(t, os.WriteFile(env.config, []byte(content), 0o644))
	return env
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestSync_Text(t *testing.T) {
	env := setupCLI(t)

	stdout, _, err := execute(t, "-c", env.config, "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, stdout, "shell:")
	assert.Contains(t, stdout, "3 done")

	assert.Equal(t, "export EDITOR=nvim\n", testutil.ReadFile(t, filepath.Join(env.home, ".bashrc")))
	assert.Equal(t, "# box\n", testutil.ReadFile(t, filepath.Join(env.home, ".zshrc")))
	assert.Equal(t,
		filepath.Join(env.staging, "git", "gitconfig"),
		testutil.ReadSymlink(t, filepath.Join(env.home, ".config", "git", "gitconfig")))

	// A second run has nothing left to do
	stdout, _, err = execute(t, "-c", env.config, "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, stdout, "0 done, 3 skipped, 0 failed")
}

func TestSync_JSONAndGroupSelection(t *testing.T) {
	env := setupCLI(t)

	stdout, _, err := execute(t, "-c", env.config, "-o", "json", "git")
	require.NoError(t, err)

	var report struct {
		OK      bool `json:"ok"`
		Results []struct {
			State string `json:"state"`
			Item  struct {
				Group string `json:"group"`
			} `json:"item"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.True(t, report.OK)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "git", report.Results[0].Item.Group)
	assert.NoFileExists(t, filepath.Join(env.home, ".bashrc"))
}

func TestSync_DryRun(t *testing.T) {
	env := setupCLI(t)

	before := testutil.Snapshot(t, env.home)
	stdout, _, err := execute(t, "-c", env.config, "-o", "text", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Sync (dry run)")
	assert.Contains(t, stdout, "3 planned")

	assert.Equal(t, before, testutil.Snapshot(t, env.home))
	assert.NoDirExists(t, env.staging)
}

func TestSync_ItemFailureExitsOne(t *testing.T) {
	env := setupCLI(t)
	testutil.CreateFile(t, env.home, ".bashrc", "mine\n")

	stdout, _, err := execute(t, "-c", env.config, "-o", "text")
	require.Error(t, err)
	assert.Equal(t, ExitItemFailed, ExitCode(err))
	assert.True(t, IsReported(err))
	assert.Contains(t, stdout, "1 failed")
	assert.Equal(t, "mine\n", testutil.ReadFile(t, filepath.Join(env.home, ".bashrc")))

	// Overriding allow_overwrite from the command line resolves the conflict
	_, _, err = execute(t, "-c", env.config, "-o", "text", "--set", "global.allow_overwrite=true")
	require.NoError(t, err)
	assert.Equal(t, "export EDITOR=nvim\n", testutil.ReadFile(t, filepath.Join(env.home, ".bashrc")))
}

func TestSync_FatalErrorsExitTwo(t *testing.T) {
	env := setupCLI(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown group", []string{"-c", env.config, "nope"}},
		{"missing config", []string{"-c", filepath.Join(env.root, "absent.toml")}},
		{"bad set", []string{"-c", env.config, "--set", "novalue"}},
		{"bad output", []string{"-c", env.config, "-o", "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitFatal, ExitCode(err))
		})
	}

	_, stderr, err := execute(t, "-c", env.config, "-o", "text", "nope")
	require.Error(t, err)
	assert.True(t, IsReported(err))
	assert.Contains(t, stderr, "Error:")
	assert.Contains(t, stderr, "nope")
	assert.NoFileExists(t, filepath.Join(env.home, ".bashrc"))
}

func TestPlan(t *testing.T) {
	env := setupCLI(t)

	stdout, _, err := execute(t, "-c", env.config, "-o", "json", "plan")
	require.NoError(t, err)

	var plan struct {
		Plan []struct {
			Destination string `json:"destination"`
		} `json:"plan"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &plan))
	require.Len(t, plan.Plan, 3)
	assert.NoFileExists(t, filepath.Join(env.home, ".bashrc"))
}

func TestConfig(t *testing.T) {
	env := setupCLI(t)

	stdout, _, err := execute(t, "-c", env.config, "config", "--set", "global.method=Symlink")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[global]")
	assert.Regexp(t, `method = ['"]Symlink['"]`, stdout)
	assert.Regexp(t, `name = ['"]shell['"]`, stdout)
}

func TestConfigInit(t *testing.T) {
	env := setupCLI(t)

	stdout, _, err := execute(t, "config", "--init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "# [[local]]")

	path := filepath.Join(env.root, "new", "config.toml")
	_, _, err = execute(t, "-c", path, "config", "--init", "--write")
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, _, err = execute(t, "-c", path, "config", "--init", "--write")
	assert.Equal(t, ExitFatal, ExitCode(err))
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "dtsync version dev")
}

func TestHelpTopics(t *testing.T) {
	stdout, _, err := execute(t, "help", "topics")
	require.NoError(t, err)
	assert.Contains(t, stdout, "hosts")
	assert.Contains(t, stdout, "--dry-run")
}

func TestCompletion(t *testing.T) {
	stdout, _, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "dtsync")
}

func TestParseSets(t *testing.T) {
	got, err := parseSets([]string{"global.method=Copy", "global.staging=/a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"global.method":  "Copy",
		"global.staging": "/a=b",
	}, got)

	got, err = parseSets(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseSets([]string{"=x"})
	assert.Error(t, err)
}
