package types

import (
	"fmt"
	"strings"
)

// Method is how a group's files reach their target directory
type Method string

const (
	// MethodCopy writes the (optionally rendered) content directly at the destination
	MethodCopy Method = "Copy"

	// MethodSymlink stages the content and links the destination to the staged file
	MethodSymlink Method = "Symlink"
)

// ParseMethod parses a method name case-insensitively
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "copy":
		return MethodCopy, nil
	case "symlink":
		return MethodSymlink, nil
	}
	return "", fmt.Errorf("unknown sync method %q (expected Copy or Symlink)", s)
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (m Method) MarshalText() ([]byte, error) {
	return []byte(m), nil
}

// Scope is a group's priority tier when several groups produce the same
// destination path
type Scope string

const (
	ScopeGeneral Scope = "General"
	ScopeApp     Scope = "App"
	ScopeDropin  Scope = "Dropin"
)

// ParseScope parses a scope name case-insensitively
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "general":
		return ScopeGeneral, nil
	case "app":
		return ScopeApp, nil
	case "dropin":
		return ScopeDropin, nil
	}
	return "", fmt.Errorf("unknown scope %q (expected General, App or Dropin)", s)
}

// Rank returns the scope's priority; higher wins
func (s Scope) Rank() int {
	switch s {
	case ScopeDropin:
		return 30
	case ScopeApp:
		return 20
	default:
		return 10
	}
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Scope) UnmarshalText(text []byte) error {
	parsed, err := ParseScope(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s), nil
}

// HostClass classifies a filesystem entry by its host-specific suffix
type HostClass int

const (
	// HostGeneral entries carry no host suffix
	HostGeneral HostClass = iota
	// HostCurrent entries are suffixed with the current machine's hostname
	HostCurrent
	// HostOther entries belong to another machine and are never synced
	HostOther
)

func (h HostClass) String() string {
	switch h {
	case HostCurrent:
		return "current"
	case HostOther:
		return "other"
	default:
		return "general"
	}
}

// RenameRule is one regex substitution step of a rename chain
type RenameRule struct {
	Pattern      string `koanf:"pattern" toml:"pattern" yaml:"pattern" json:"pattern"`
	Substitution string `koanf:"substitution" toml:"substitution" yaml:"substitution" json:"substitution"`
}
