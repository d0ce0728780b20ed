package config

import (
	"github.com/arthur-debert/dtsync/pkg/types"
)

// Effective is a group's settings after applying override-then-fallback:
// the group's own value, else the global one, else the built-in default.
type Effective struct {
	Scope          types.Scope
	Method         types.Method
	AllowOverwrite bool
	HostnameSep    string
	Renderable     bool
	PerHost        bool
	// Rename is the global chain followed by the group's chain
	Rename []types.RenameRule
}

// Resolve computes the effective settings of group g under global settings gl.
// It is pure.
func Resolve(gl Global, g Group) Effective {
	eff := Effective{
		Scope:          DefaultScope,
		Method:         DefaultMethod,
		AllowOverwrite: DefaultAllowOverwrite,
		HostnameSep:    DefaultHostnameSep,
		Renderable:     DefaultRenderable,
		PerHost:        DefaultPerHost,
	}

	if g.Scope != "" {
		eff.Scope = g.Scope
	}

	switch {
	case g.Method != nil:
		eff.Method = *g.Method
	case gl.Method != "":
		eff.Method = gl.Method
	}

	switch {
	case g.AllowOverwrite != nil:
		eff.AllowOverwrite = *g.AllowOverwrite
	case gl.AllowOverwrite != nil:
		eff.AllowOverwrite = *gl.AllowOverwrite
	}

	switch {
	case g.HostnameSep != nil:
		eff.HostnameSep = *g.HostnameSep
	case gl.HostnameSep != "":
		eff.HostnameSep = gl.HostnameSep
	}

	switch {
	case g.Renderable != nil:
		eff.Renderable = *g.Renderable
	case gl.Renderable != nil:
		eff.Renderable = *gl.Renderable
	}

	if g.PerHost != nil {
		eff.PerHost = *g.PerHost
	}

	eff.Rename = make([]types.RenameRule, 0, len(gl.Rename)+len(g.Rename))
	eff.Rename = append(eff.Rename, gl.Rename...)
	eff.Rename = append(eff.Rename, g.Rename...)

	return eff
}
