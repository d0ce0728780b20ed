// pkg/watch/watcher_test.go
// TEST TYPE: Integration Tests
// DEPENDENCIES: Real filesystem (t.TempDir), fsnotify
// PURPOSE: Test debounced change detection, ignores and root discovery

package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/arthur-debert/dtsync/pkg/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]string
	fired chan struct{}
}

func newRecorder() *recorder {
	return &recorder{fired: make(chan struct{}, 16)}
}

func (r *recorder) onChange(_ context.Context, changed []string) error {
	r.mu.Lock()
	r.calls = append(r.calls, changed)
	r.mu.Unlock()
	r.fired <- struct{}{}
	return nil
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

func startWatcher(t *testing.T, cfg Config) context.CancelFunc {
	t.Helper()
	nop := zerolog.Nop()
	cfg.Logger = &nop
	w, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	return cancel
}

func waitFired(t *testing.T, r *recorder) {
	t.Helper()
	select {
	case <-r.fired:
	case <-time.After(5 * time.Second):
		t.Fatal("callback not fired")
	}
}

func TestWatcher_Debounce(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	startWatcher(t, Config{
		Roots:    []Root{{Dir: dir}},
		Debounce: 100 * time.Millisecond,
		OnChange: rec.onChange,
	})

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}
	waitFired(t, rec)

	calls := rec.snapshot()
	require.Len(t, calls, 1)
	assert.Subset(t, calls[0], []string{
		filepath.Join(dir, "a"),
		filepath.Join(dir, "b"),
		filepath.Join(dir, "c"),
	})
}

func TestWatcher_NewDirectoriesAreWatched(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	startWatcher(t, Config{
		Roots:    []Root{{Dir: dir}},
		Debounce: 50 * time.Millisecond,
		OnChange: rec.onChange,
	})

	sub := filepath.Join(dir, "nvim")
	require.NoError(t, os.Mkdir(sub, 0o755))
	waitFired(t, rec)

	// Give the event loop a moment to register the new directory
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "init.lua"), []byte("x"), 0o644))
	waitFired(t, rec)

	calls := rec.snapshot()
	assert.Contains(t, calls[len(calls)-1], filepath.Join(sub, "init.lua"))
}

func TestWatcher_IgnoredPathsDoNotFire(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "cache"), 0o755))

	rec := newRecorder()
	startWatcher(t, Config{
		Roots:    []Root{{Dir: dir, Ignore: []string{"*.bak", "cache"}}},
		Debounce: 50 * time.Millisecond,
		OnChange: rec.onChange,
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cache", "blob"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.bak"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.swp"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real"), []byte("x"), 0o644))
	waitFired(t, rec)

	calls := rec.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{filepath.Join(dir, "real")}, calls[0])
}

func TestNew_WatchList(t *testing.T) {
	dir := t.TempDir()
	for _, d := range []string{"a/b", ".git/objects", "skip/deep"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, d), 0o755))
	}

	nop := zerolog.Nop()
	w, err := New(Config{
		Roots:  []Root{{Dir: dir, Ignore: []string{"skip"}}, {Dir: filepath.Join(dir, "missing")}},
		Logger: &nop,
	})
	require.NoError(t, err)
	defer func() { _ = w.fsw.Close() }()

	assert.Equal(t, []string{dir, filepath.Join(dir, "a"), filepath.Join(dir, "a", "b")}, w.Watched())
}

func TestNew_InvalidIgnorePattern(t *testing.T) {
	_, err := New(Config{Roots: []Root{{Dir: t.TempDir(), Ignore: []string{"[unclosed"}}}})
	assert.Error(t, err)
}

func TestRun_OnlyOnce(t *testing.T) {
	nop := zerolog.Nop()
	w, err := New(Config{Roots: []Root{{Dir: t.TempDir()}}, Logger: &nop})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))
	assert.Error(t, w.Run(ctx))
}

func TestRootsFor(t *testing.T) {
	cfg := &config.Config{
		Global: config.Global{HostnameSep: "##"},
		Groups: []config.Group{
			{Name: "shell", Basedir: "/dots/shell", Ignored: []string{"*.bak"}},
			{Name: "nvim", Basedir: "/dots/nvim", PerHost: config.Ptr(false)},
		},
	}

	assert.Equal(t, []Root{
		{Dir: "/dots/shell##box", Ignore: []string{"*.bak"}},
		{Dir: "/dots/shell", Ignore: []string{"*.bak"}},
		{Dir: "/dots/nvim"},
	}, RootsFor(cfg, "box"))

}
