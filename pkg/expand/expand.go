package expand

import (
	stderrors "errors"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/dtsync/pkg/config"
	"github.com/arthur-debert/dtsync/pkg/errors"
	"github.com/arthur-debert/dtsync/pkg/host"
	"github.com/arthur-debert/dtsync/pkg/logging"
	"github.com/arthur-debert/dtsync/pkg/paths"
	"github.com/arthur-debert/dtsync/pkg/types"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
)

// Expander resolves the sources of one group at a time
type Expander struct {
	fs       types.FS
	hostname string
	staging  string
	logger   zerolog.Logger
}

// Result holds the files found for a group and the warnings raised while
// looking for them
type Result struct {
	Items    []types.ResolvedItem
	Warnings []types.Warning
}

// New returns an Expander for the machine called hostname. staging is the
// staging root that symlink-method groups will write under.
func New(fsys types.FS, hostname, staging string) *Expander {
	return &Expander{
		fs:       fsys,
		hostname: hostname,
		staging:  staging,
		logger:   logging.GetLogger("expand"),
	}
}

// candidate is a regular file found during expansion, keyed later by its
// host-stripped relative path
type candidate struct {
	rel   string
	class types.HostClass
}

// groupRun holds the state of one Expand call
type groupRun struct {
	*Expander
	group   config.Group
	eff     config.Effective
	base    string
	result  *Result
	found   map[string]candidate // by unstripped rel path
	visited map[string]bool
	shadows map[string]bool
}

// Expand resolves group g with its effective settings eff
func (e *Expander) Expand(g config.Group, eff config.Effective) (*Result, error) {
	run := &groupRun{
		Expander: e,
		group:    g,
		eff:      eff,
		result:   &Result{},
		found:    make(map[string]candidate),
		visited:  make(map[string]bool),
		shadows:  make(map[string]bool),
	}

	base, ok, err := run.effectiveBasedir()
	if err != nil {
		return nil, err
	}
	if !ok {
		run.warn(g.Basedir, "group matches nothing: basedir does not exist")
		return run.result, nil
	}
	run.base = base

	if err := run.checkTarget(); err != nil {
		return nil, err
	}
	if eff.Method == types.MethodSymlink {
		if err := run.checkStaging(); err != nil {
			return nil, err
		}
	}

	for _, src := range g.Sources {
		if err := run.expandSource(src); err != nil {
			return nil, err
		}
	}

	if err := run.collect(); err != nil {
		return nil, err
	}

	e.logger.Debug().
		Str("group", g.Name).
		Str("basedir", base).
		Int("items", len(run.result.Items)).
		Int("warnings", len(run.result.Warnings)).
		Msg("Group expanded")
	return run.result, nil
}

func (r *groupRun) fatal(path string, code errors.ErrorCode, format string, args ...interface{}) error {
	return errors.NewExpansionError(r.group.Name, path, errors.Newf(code, format, args...))
}

func (r *groupRun) fatalWrap(path string, err error, code errors.ErrorCode, message string) error {
	return errors.NewExpansionError(r.group.Name, path, errors.Wrap(err, code, message))
}

func (r *groupRun) warn(path, message string) {
	w := types.Warning{Group: r.group.Name, Path: path, Message: message}
	r.logger.Warn().Str("group", w.Group).Str("path", w.Path).Msg(message)
	r.result.Warnings = append(r.result.Warnings, w)
}

// effectiveBasedir returns the host-specific basedir when per_host is set
// and it exists, else the plain basedir. ok is false when neither exists.
func (r *groupRun) effectiveBasedir() (string, bool, error) {
	candidates := []string{r.group.Basedir}
	if r.eff.PerHost {
		hostDir := r.group.Basedir + host.Suffix(r.eff.HostnameSep, r.hostname)
		candidates = []string{hostDir, r.group.Basedir}
	}

	for _, dir := range candidates {
		info, err := r.fs.Stat(dir)
		if err != nil {
			if paths.NotExist(err) {
				continue
			}
			return "", false, r.fatalWrap(dir, err, errors.ErrExpansionAccess, "cannot stat basedir")
		}
		if !info.IsDir() {
			return "", false, r.fatal(dir, errors.ErrBasedirNotDir, "basedir exists but is not a directory")
		}
		return dir, true, nil
	}
	return "", false, nil
}

// checkTarget fails when the target is a non-directory or cannot be created
func (r *groupRun) checkTarget() error {
	return r.checkDir(r.group.Target, errors.ErrTargetNotDir, errors.ErrTargetCreate, "target")
}

// checkStaging applies the same rules to the staging root
func (r *groupRun) checkStaging() error {
	return r.checkDir(r.staging, errors.ErrStagingNotDir, errors.ErrStagingCreate, "staging root")
}

func (r *groupRun) checkDir(dir string, notDir, noCreate errors.ErrorCode, what string) error {
	info, err := r.fs.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return r.fatal(dir, notDir, "%s exists but is not a directory", what)
		}
		return nil
	}
	if !paths.NotExist(err) {
		return r.fatalWrap(dir, err, errors.ErrExpansionAccess, "cannot stat "+what)
	}

	ok, ancestor, err := paths.Creatable(r.fs, dir)
	if err != nil {
		return r.fatalWrap(dir, err, errors.ErrExpansionAccess, "cannot stat ancestors of "+what)
	}
	if !ok {
		return r.fatal(dir, noCreate, "%s is missing and cannot be created under %s", what, ancestor)
	}
	return nil
}

// expandSource globs one source pattern. The host-suffixed form of the
// pattern is globbed as well so "config" also finds "config@@thishost".
func (r *groupRun) expandSource(src string) error {
	pattern, err := paths.ExpandEnv(src)
	if err != nil {
		return errors.NewExpansionError(r.group.Name, src, errors.Wrap(err, errors.ErrPatternInvalid, "cannot expand source pattern"))
	}
	pattern = filepath.ToSlash(pattern)

	fsys := r.fs.DirFS(r.base)
	seen := make(map[string]bool)
	var matches []string
	for _, p := range []string{pattern, pattern + host.Suffix(r.eff.HostnameSep, r.hostname)} {
		found, err := doublestar.Glob(fsys, p)
		if err != nil {
			return r.fatalWrap(src, err, errors.ErrPatternInvalid, "invalid source pattern")
		}
		for _, m := range found {
			if !seen[m] {
				seen[m] = true
				matches = append(matches, m)
			}
		}
	}

	if len(matches) == 0 {
		r.warn(src, "source pattern matches nothing")
		return nil
	}
	sort.Strings(matches)

	r.logger.Trace().Str("group", r.group.Name).Str("pattern", pattern).Int("matches", len(matches)).Msg("Pattern globbed")
	for _, m := range matches {
		if err := r.walk(m); err != nil {
			return err
		}
	}
	return nil
}

// walk flattens one glob match into regular files using an explicit
// worklist. Entries for other hosts, and general entries that have a sibling
// for this host, are dropped before they are read, so neither kind of
// directory is ever descended into.
func (r *groupRun) walk(start string) error {
	stack := []string{start}
	for len(stack) > 0 {
		rel := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if r.visited[rel] {
			continue
		}
		r.visited[rel] = true

		class, err := r.classify(rel)
		if err != nil {
			return err
		}
		if class == types.HostOther {
			r.logger.Trace().Str("group", r.group.Name).Str("path", rel).Msg("Skipping entry for another host")
			continue
		}
		if r.ignored(rel) {
			r.logger.Trace().Str("group", r.group.Name).Str("path", rel).Msg("Skipping ignored entry")
			continue
		}
		shadowed, err := r.shadowed(rel)
		if err != nil {
			return err
		}
		if shadowed {
			r.logger.Debug().Str("group", r.group.Name).Str("path", rel).Msg("Host-specific entry replaces general one")
			continue
		}

		abs := r.abs(rel)
		info, err := r.fs.Lstat(abs)
		if err != nil {
			if paths.NotExist(err) {
				r.warn(abs, "entry vanished during expansion")
				continue
			}
			return r.fatalWrap(abs, err, errors.ErrExpansionAccess, "cannot stat source")
		}

		if info.Mode()&fs.ModeSymlink != 0 {
			target, err := r.fs.Stat(abs)
			if err != nil {
				r.warn(abs, "broken symlink skipped")
				continue
			}
			if target.IsDir() {
				r.warn(abs, "symlinked directory not followed")
				continue
			}
			info = target
		}

		switch {
		case info.Mode().IsRegular():
			r.found[rel] = candidate{rel: rel, class: class}
		case info.IsDir():
			entries, err := r.fs.ReadDir(abs)
			if err != nil {
				return r.fatalWrap(abs, err, errors.ErrExpansionAccess, "cannot read source directory")
			}
			// push in reverse so entries pop in directory order
			for i := len(entries) - 1; i >= 0; i-- {
				stack = append(stack, joinRel(rel, entries[i].Name()))
			}
		default:
			r.warn(abs, "not a regular file or directory, skipped")
		}
	}
	return nil
}

// classify combines the host class of every component of rel: any Other
// component makes the entry Other, any Current component makes it Current.
func (r *groupRun) classify(rel string) (types.HostClass, error) {
	if rel == "." {
		return types.HostGeneral, nil
	}
	class := types.HostGeneral
	for _, part := range strings.Split(rel, "/") {
		c, err := host.Classify(part, r.eff.HostnameSep, r.hostname)
		if err != nil {
			return types.HostOther, errors.NewExpansionError(r.group.Name, r.abs(rel), asDtError(err))
		}
		switch c {
		case types.HostOther:
			return types.HostOther, nil
		case types.HostCurrent:
			class = types.HostCurrent
		}
	}
	return class, nil
}

// shadowed reports whether rel, or any directory above it, is unsuffixed
// and has a sibling carrying this host's suffix. The sibling then stands for
// the whole family, directory contents included.
func (r *groupRun) shadowed(rel string) (bool, error) {
	if rel == "." {
		return false, nil
	}
	prefix := ""
	for _, part := range strings.Split(rel, "/") {
		prefix = joinRel(prefix, part)
		hit, err := r.shadowedEntry(prefix, part)
		if err != nil || hit {
			return hit, err
		}
	}
	return false, nil
}

func (r *groupRun) shadowedEntry(rel, name string) (bool, error) {
	if hit, ok := r.shadows[rel]; ok {
		return hit, nil
	}
	hit := false
	if c, err := host.Classify(name, r.eff.HostnameSep, r.hostname); err == nil && c == types.HostGeneral {
		sibling := r.abs(rel) + host.Suffix(r.eff.HostnameSep, r.hostname)
		_, err := r.fs.Lstat(sibling)
		switch {
		case err == nil:
			hit = true
		case !paths.NotExist(err):
			return false, r.fatalWrap(sibling, err, errors.ErrExpansionAccess, "cannot stat host-specific sibling")
		}
	}
	r.shadows[rel] = hit
	return hit, nil
}

// ignored matches the group's ignore patterns against both the entry name
// and its path relative to the basedir
func (r *groupRun) ignored(rel string) bool {
	if rel == "." {
		return false
	}
	name := path.Base(rel)
	for _, pat := range r.group.Ignored {
		pat = filepath.ToSlash(pat)
		if ok, _ := doublestar.Match(pat, name); ok {
			return true
		}
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

// collect strips host suffixes and stores the sorted items in the result.
// Shadowed entries were already dropped by walk; a Current file still wins
// a tie left by overlapping suffixed parents.
func (r *groupRun) collect() error {
	chosen := make(map[string]candidate, len(r.found))
	for _, c := range r.found {
		stripped, err := host.StripPath(c.rel, r.eff.HostnameSep)
		if err != nil {
			return errors.NewExpansionError(r.group.Name, r.abs(c.rel), asDtError(err))
		}
		prev, exists := chosen[stripped]
		switch {
		case !exists:
			chosen[stripped] = c
		case c.class == types.HostCurrent && prev.class != types.HostCurrent:
			r.logger.Debug().Str("group", r.group.Name).Str("general", prev.rel).Str("current", c.rel).Msg("Host-specific file replaces general one")
			chosen[stripped] = c
		case c.class == prev.class && c.rel < prev.rel:
			// two suffixed spellings of one family; keep a stable pick
			chosen[stripped] = c
		}
	}

	items := make([]types.ResolvedItem, 0, len(chosen))
	for stripped, c := range chosen {
		items = append(items, types.ResolvedItem{
			Source:  r.abs(c.rel),
			RelPath: stripped,
			Group:   r.group.Name,
			Host:    c.class,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].RelPath < items[j].RelPath })
	r.result.Items = items
	return nil
}

func (r *groupRun) abs(rel string) string {
	if rel == "." {
		return r.base
	}
	return filepath.Join(r.base, filepath.FromSlash(rel))
}

func joinRel(dir, name string) string {
	if dir == "." || dir == "" {
		return name
	}
	return dir + "/" + name
}

func asDtError(err error) *errors.DtError {
	var dtErr *errors.DtError
	if stderrors.As(err, &dtErr) {
		return dtErr
	}
	return errors.Wrap(err, errors.ErrInternal, "unexpected error")
}
