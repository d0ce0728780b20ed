// Package watch re-runs a callback when files under a set of directories
// change. Events are debounced: everything that happens within the quiet
// period is delivered to a single callback invocation.
package watch

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arthur-debert/dtsync/pkg/logging"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is the quiet period used when Config.Debounce is unset
const DefaultDebounce = 500 * time.Millisecond

// defaultIgnores are never watched: VCS metadata and editor noise
var defaultIgnores = []string{
	"**/.git",
	"**/.git/**",
	"**/*.swp",
	"**/*.swx",
	"**/*~",
	"**/4913",
	"**/.DS_Store",
}

// Root is a directory tree to watch and the patterns excluded from it,
// relative to Dir
type Root struct {
	Dir    string
	Ignore []string
}

// Config holds the parameters for a Watcher
type Config struct {
	Roots []Root
	// Debounce defaults to DefaultDebounce
	Debounce time.Duration
	// OnChange receives the absolute paths that changed. A nil callback is a no-op.
	OnChange func(ctx context.Context, changed []string) error
	Logger   *zerolog.Logger
}

// Watcher monitors directory trees and fires a debounced callback.
// Run must be called exactly once.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	roots    []Root
	debounce time.Duration
	logger   zerolog.Logger
	started  atomic.Bool
}

// New creates a Watcher and registers every non-ignored directory under the
// roots. Roots that do not exist are skipped with a log message.
func New(cfg Config) (*Watcher, error) {
	logger := logging.GetLogger("watch")
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	roots := make([]Root, 0, len(cfg.Roots))
	for _, r := range cfg.Roots {
		abs, err := filepath.Abs(r.Dir)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %q: %w", r.Dir, err)
		}
		for _, pat := range r.Ignore {
			if !doublestar.ValidatePattern(pat) {
				return nil, fmt.Errorf("watch: invalid ignore pattern %q", pat)
			}
		}
		ignore := make([]string, 0, len(defaultIgnores)+len(r.Ignore))
		ignore = append(ignore, defaultIgnores...)
		ignore = append(ignore, r.Ignore...)
		roots = append(roots, Root{Dir: abs, Ignore: ignore})
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		roots:    roots,
		debounce: debounce,
		logger:   logger,
	}

	for _, r := range roots {
		if err := w.addTree(r, r.Dir); err != nil {
			if closeErr := fsw.Close(); closeErr != nil {
				logger.Warn().Err(closeErr).Msg("Failed to close watcher after init failure")
			}
			return nil, err
		}
	}
	return w, nil
}

// Watched returns the directories currently registered with fsnotify
func (w *Watcher) Watched() []string {
	list := w.fsw.WatchList()
	slices.Sort(list)
	return list
}

// Run blocks until ctx is cancelled, dispatching debounced callbacks. It
// returns nil on cancellation and an error when the watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire skips when a previous callback is still running and retries
	// after another quiet period so pending changes are not lost
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug().Msg("Previous run still in progress, deferring")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		w.logger.Info().Int("changed", len(changed)).Msg("Changes detected")
		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Error().Err(err).Msg("Re-run failed")
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn().Err(err).Msg("Failed to close watcher")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watch: event channel closed unexpectedly")
			}
			root, ok := w.rootOf(evt.Name)
			if !ok || w.ignored(root, evt.Name) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(root, evt.Name)
			}
			w.logger.Trace().Str("path", evt.Name).Str("op", evt.Op.String()).Msg("Event")

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watch: error channel closed unexpectedly")
			}
			if isFatal(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn().Err(err).Msg("Watcher error")
		}
	}
}

// addTree registers every non-ignored directory under dir, which lies in
// root r. A missing dir is not an error: the group has nothing to watch yet.
func (w *Watcher) addTree(r Root, dir string) error {
	if _, err := os.Stat(dir); err != nil {
		w.logger.Warn().Str("dir", dir).Err(err).Msg("Skipping watch root")
		return nil
	}
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Warn().Str("path", path).Err(walkErr).Msg("Skipping inaccessible path")
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != r.Dir && w.ignored(r, path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk %q: %w", dir, err)
	}
	w.logger.Debug().Str("dir", dir).Msg("Watching")
	return nil
}

func (w *Watcher) maybeAddDir(r Root, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addTree(r, path); err != nil {
		w.logger.Warn().Str("dir", path).Err(err).Msg("Failed to watch new directory")
	}
}

// rootOf returns the most specific root containing path
func (w *Watcher) rootOf(path string) (Root, bool) {
	var best Root
	found := false
	for _, r := range w.roots {
		if !isUnder(path, r.Dir) {
			continue
		}
		if !found || len(r.Dir) > len(best.Dir) {
			best, found = r, true
		}
	}
	return best, found
}

// ignored matches the path relative to its root, and its base name,
// against the root's ignore patterns
func (w *Watcher) ignored(r Root, path string) bool {
	rel, err := filepath.Rel(r.Dir, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(path)
	for _, pat := range r.Ignore {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pat, base); ok {
			return true
		}
	}
	return false
}

func isUnder(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel != ".." && !strings.HasPrefix(rel, "../")
}
