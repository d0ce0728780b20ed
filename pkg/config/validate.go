package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dtsync/pkg/errors"
	"github.com/arthur-debert/dtsync/pkg/rename"
	"github.com/arthur-debert/dtsync/pkg/types"
	"github.com/bmatcuk/doublestar/v4"
)

// Validate checks the structure of cfg and reports every violation at
// once. It performs no filesystem access; problems that need filesystem
// queries are found later by the expander.
func Validate(cfg *Config) error {
	var cerr errors.ConfigError

	validateGlobal(cfg.Global, &cerr)

	seen := make(map[string]bool, len(cfg.Groups))
	for i, g := range cfg.Groups {
		label := g.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
			cerr.Add(label, "name", "must not be empty")
		} else {
			if seen[g.Name] {
				cerr.Add(label, "name", "duplicate group name")
			}
			seen[g.Name] = true
			if strings.ContainsAny(g.Name, `/\`) || strings.ContainsRune(g.Name, filepath.Separator) {
				cerr.Add(label, "name", "must not contain a path separator")
			}
		}
		validateGroup(label, cfg.Global, g, &cerr)
	}

	return cerr.ErrOrNil()
}

func validateGlobal(gl Global, cerr *errors.ConfigError) {
	if gl.Method != "" {
		if _, err := types.ParseMethod(string(gl.Method)); err != nil {
			cerr.Add("", "method", "%v", err)
		}
	}
	if _, err := rename.Compile(gl.Rename); err != nil {
		cerr.Add("", "rename", "%v", err)
	}
}

func validateGroup(label string, gl Global, g Group, cerr *errors.ConfigError) {
	eff := Resolve(gl, g)

	if g.Scope != "" {
		if _, err := types.ParseScope(string(g.Scope)); err != nil {
			cerr.Add(label, "scope", "%v", err)
		}
	}
	if g.Method != nil {
		if _, err := types.ParseMethod(string(*g.Method)); err != nil {
			cerr.Add(label, "method", "%v", err)
		}
	}

	if g.Basedir == "" {
		cerr.Add(label, "basedir", "must not be empty")
	}
	if g.Target == "" {
		cerr.Add(label, "target", "must not be empty")
	}
	if g.Basedir != "" && g.Target != "" && filepath.Clean(g.Basedir) == filepath.Clean(g.Target) {
		cerr.Add(label, "target", "must differ from basedir (%s)", g.Basedir)
	}

	sep := eff.HostnameSep
	if sep == "" {
		cerr.Add(label, "hostname_sep", "must not be empty")
	} else if g.Basedir != "" && strings.Contains(g.Basedir, sep) {
		cerr.Add(label, "basedir", "must not contain the hostname separator %q", sep)
	}

	if len(g.Sources) == 0 {
		cerr.Add(label, "sources", "must not be empty")
	}
	for _, src := range g.Sources {
		if msg := checkSource(src, sep); msg != "" {
			cerr.Add(label, "sources", "%q %s", src, msg)
		}
	}
	for _, pat := range g.Ignored {
		if !doublestar.ValidatePattern(filepath.ToSlash(pat)) {
			cerr.Add(label, "ignored", "%q is not a valid glob", pat)
		}
	}

	if _, err := rename.Compile(g.Rename); err != nil {
		cerr.Add(label, "rename", "%v", err)
	}
}

// checkSource returns why a source pattern is unacceptable, or ""
func checkSource(src, sep string) string {
	slashed := filepath.ToSlash(src)
	switch {
	case src == "":
		return "must not be empty"
	case filepath.IsAbs(src) || strings.HasPrefix(slashed, "/"):
		return "must be relative to basedir"
	case slashed == ".." || strings.HasPrefix(slashed, "../"):
		return "must not start with ../"
	case slashed == ".*":
		return "must not be .* (it would match ..)"
	case strings.HasSuffix(slashed, "/.*"):
		return "must not end with /.* (it would match ..)"
	case sep != "" && strings.Contains(src, sep):
		return fmt.Sprintf("must not contain the hostname separator %q", sep)
	case !doublestar.ValidatePattern(slashed):
		return "is not a valid glob"
	}
	return ""
}

// Select narrows cfg to the named groups, keeping configuration order.
// An empty selection returns cfg unchanged.
func (c *Config) Select(names []string) (*Config, error) {
	if len(names) == 0 {
		return c, nil
	}

	wanted := make(map[string]bool, len(names))
	var cerr errors.ConfigError
	for _, name := range names {
		if _, _, ok := c.GroupByName(name); !ok {
			cerr.Add(name, "", "no such group")
		}
		wanted[name] = true
	}
	if err := cerr.ErrOrNil(); err != nil {
		return nil, err
	}

	narrowed := *c
	narrowed.Groups = nil
	for _, g := range c.Groups {
		if wanted[g.Name] {
			narrowed.Groups = append(narrowed.Groups, g)
		}
	}
	return &narrowed, nil
}
