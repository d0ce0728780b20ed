package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Violation is a single structural problem found in a configuration
type Violation struct {
	// Group is the offending group's name, or its 1-based position when the
	// name itself is the problem. Empty for global settings.
	Group   string
	Field   string
	Message string
}

func (v Violation) String() string {
	var b strings.Builder
	if v.Group != "" {
		b.WriteString("group ")
		b.WriteString(v.Group)
		b.WriteString(": ")
	}
	if v.Field != "" {
		b.WriteString(v.Field)
		b.WriteString(": ")
	}
	b.WriteString(v.Message)
	return b.String()
}

// ConfigError aggregates every structural violation found in one pass over
// a configuration. It is fatal and raised before any filesystem access.
type ConfigError struct {
	Violations []Violation
}

func (e *ConfigError) Error() string {
	if len(e.Violations) == 1 {
		return "invalid configuration: " + e.Violations[0].String()
	}
	lines := make([]string, 0, len(e.Violations)+1)
	lines = append(lines, fmt.Sprintf("invalid configuration (%d problems):", len(e.Violations)))
	for _, v := range e.Violations {
		lines = append(lines, "  - "+v.String())
	}
	return strings.Join(lines, "\n")
}

// Is makes errors.Is(err, New(ErrConfigValid, "")) match
func (e *ConfigError) Is(target error) bool {
	var t *DtError
	return errors.As(target, &t) && t.Code == ErrConfigValid
}

// Add records a violation
func (e *ConfigError) Add(group, field, format string, args ...interface{}) {
	e.Violations = append(e.Violations, Violation{
		Group:   group,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

// ErrOrNil returns e when it holds violations and nil otherwise
func (e *ConfigError) ErrOrNil() error {
	if e == nil || len(e.Violations) == 0 {
		return nil
	}
	return e
}

// ExpansionError is a filesystem-state problem discovered while expanding a
// group that invalidates the whole run
type ExpansionError struct {
	Group string
	Path  string
	Err   *DtError
}

func (e *ExpansionError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("group %s: %s: %v", e.Group, e.Path, e.Err)
	}
	return fmt.Sprintf("group %s: %v", e.Group, e.Err)
}

func (e *ExpansionError) Unwrap() error {
	return e.Err
}

// NewExpansionError builds an ExpansionError around a coded error
func NewExpansionError(group, path string, err *DtError) *ExpansionError {
	return &ExpansionError{Group: group, Path: path, Err: err}
}

// ItemError is a recoverable per-item failure during execution. Only the
// affected item fails; the run continues.
type ItemError struct {
	Destination string
	Err         *DtError
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Destination, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// NewItemError builds an ItemError around a coded error
func NewItemError(destination string, err *DtError) *ItemError {
	return &ItemError{Destination: destination, Err: err}
}

// IsItemError reports whether err is recoverable at item level
func IsItemError(err error) bool {
	var itemErr *ItemError
	return errors.As(err, &itemErr)
}
