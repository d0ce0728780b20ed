// Package template renders file contents before they are written.
//
// The executor decides whether an item is rendered; this package only turns
// bytes plus a context map into bytes. The default renderer uses
// text/template with two helpers:
//
//	{{ hostname }}                   the current machine's hostname
//	{{ getmine .colors "default" }}  .colors[hostname], or "default"
//
// Binary content is never rendered (see IsText).
package template

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/arthur-debert/dtsync/pkg/errors"
	"github.com/gabriel-vasile/mimetype"
)

// Renderer renders content named name with ctx as its data
type Renderer interface {
	Render(name string, content []byte, ctx map[string]any) ([]byte, error)
}

// TextRenderer is the text/template based Renderer
type TextRenderer struct {
	hostname string
}

// NewTextRenderer returns a renderer whose helpers resolve against hostname
func NewTextRenderer(hostname string) *TextRenderer {
	return &TextRenderer{hostname: hostname}
}

// Render implements Renderer. Missing keys render as the zero value.
func (r *TextRenderer) Render(name string, content []byte, ctx map[string]any) ([]byte, error) {
	tmpl, err := template.New(name).
		Option("missingkey=zero").
		Funcs(r.funcs()).
		Parse(string(content))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRender, "cannot parse template %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return nil, errors.Wrapf(err, errors.ErrRender, "cannot render template %s", name)
	}
	return buf.Bytes(), nil
}

func (r *TextRenderer) funcs() template.FuncMap {
	return template.FuncMap{
		"hostname": func() string { return r.hostname },
		"getmine":  r.getMine,
		"get_mine": r.getMine,
	}
}

// getMine takes no arguments (the hostname) or a map and a default
func (r *TextRenderer) getMine(args ...any) (any, error) {
	switch len(args) {
	case 0:
		return r.hostname, nil
	case 2:
		if v, ok := lookup(args[0], r.hostname); ok {
			return v, nil
		}
		return args[1], nil
	default:
		return nil, fmt.Errorf("getmine: expected 0 or 2 arguments, got %d", len(args))
	}
}

func lookup(m any, key string) (any, bool) {
	switch mm := m.(type) {
	case map[string]any:
		v, ok := mm[key]
		return v, ok
	case map[string]string:
		v, ok := mm[key]
		return v, ok
	}
	return nil, false
}

// IsText reports whether content looks like text. Empty content counts as
// text.
func IsText(content []byte) bool {
	if len(content) == 0 {
		return true
	}
	for mt := mimetype.Detect(content); mt != nil; mt = mt.Parent() {
		if strings.HasPrefix(mt.String(), "text/") {
			return true
		}
	}
	return false
}
