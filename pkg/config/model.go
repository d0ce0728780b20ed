package config

import (
	"github.com/arthur-debert/dtsync/pkg/types"
)

// Built-in defaults used when neither a group nor the global section sets a value
const (
	DefaultMethod         = types.MethodSymlink
	DefaultAllowOverwrite = false
	DefaultHostnameSep    = "@@"
	DefaultRenderable     = true
	DefaultPerHost        = true
	DefaultScope          = types.ScopeGeneral
)

// Config is the validated, immutable configuration of one invocation
type Config struct {
	Global Global  `koanf:"global" toml:"global" yaml:"global"`
	Groups []Group `koanf:"local" toml:"local" yaml:"local"`
	// Context holds template values per group name
	Context map[string]map[string]interface{} `koanf:"context" toml:"context,omitempty" yaml:"context,omitempty"`
}

// Global holds settings shared by all groups. Pointer fields distinguish
// "unset" from the zero value.
type Global struct {
	Staging        string             `koanf:"staging" toml:"staging" yaml:"staging"`
	Method         types.Method       `koanf:"method" toml:"method,omitempty" yaml:"method,omitempty"`
	AllowOverwrite *bool              `koanf:"allow_overwrite" toml:"allow_overwrite,omitempty" yaml:"allow_overwrite,omitempty"`
	HostnameSep    string             `koanf:"hostname_sep" toml:"hostname_sep,omitempty" yaml:"hostname_sep,omitempty"`
	Rename         []types.RenameRule `koanf:"rename" toml:"rename,omitempty" yaml:"rename,omitempty"`
	Renderable     *bool              `koanf:"renderable" toml:"renderable,omitempty" yaml:"renderable,omitempty"`
}

// Group is one `[[local]]` section: a basedir, its source patterns and the
// directory they sync into
type Group struct {
	Name    string      `koanf:"name" toml:"name" yaml:"name"`
	Scope   types.Scope `koanf:"scope" toml:"scope,omitempty" yaml:"scope,omitempty"`
	Basedir string      `koanf:"basedir" toml:"basedir" yaml:"basedir"`
	Sources []string    `koanf:"sources" toml:"sources" yaml:"sources"`
	Ignored []string    `koanf:"ignored" toml:"ignored,omitempty" yaml:"ignored,omitempty"`
	Target  string      `koanf:"target" toml:"target" yaml:"target"`

	// Overrides of the global settings
	Method         *types.Method `koanf:"method" toml:"method,omitempty" yaml:"method,omitempty"`
	AllowOverwrite *bool         `koanf:"allow_overwrite" toml:"allow_overwrite,omitempty" yaml:"allow_overwrite,omitempty"`
	HostnameSep    *string       `koanf:"hostname_sep" toml:"hostname_sep,omitempty" yaml:"hostname_sep,omitempty"`
	Renderable     *bool         `koanf:"renderable" toml:"renderable,omitempty" yaml:"renderable,omitempty"`
	PerHost        *bool         `koanf:"per_host" toml:"per_host,omitempty" yaml:"per_host,omitempty"`

	// Rename rules run after the global chain
	Rename []types.RenameRule `koanf:"rename" toml:"rename,omitempty" yaml:"rename,omitempty"`
}

// Ptr returns a pointer to v, for filling optional fields
func Ptr[T any](v T) *T {
	return &v
}

// GroupByName returns the group called name and its position
func (c *Config) GroupByName(name string) (Group, int, bool) {
	for i, g := range c.Groups {
		if g.Name == name {
			return g, i, true
		}
	}
	return Group{}, -1, false
}

// ContextFor returns the template context of a group: the user's
// [context.<name>] table plus the built-in "group" and "hostname" keys.
func (c *Config) ContextFor(name, hostname string) map[string]interface{} {
	ctx := make(map[string]interface{}, len(c.Context[name])+2)
	for k, v := range c.Context[name] {
		ctx[k] = v
	}
	ctx["group"] = name
	ctx["hostname"] = hostname
	return ctx
}
