// Package rename rewrites relative destination paths through an ordered
// chain of regular-expression substitutions.
//
// Each rule replaces every match of its pattern in the whole slash-separated
// path; the output of one rule is the input of the next. Substitutions may
// reference capture groups as $1, ${1}, $name or ${name}.
package rename

import (
	"fmt"
	"regexp"

	"github.com/arthur-debert/dtsync/pkg/types"
)

type rule struct {
	re  *regexp.Regexp
	sub string
}

// Chain is a compiled rename chain
type Chain struct {
	rules []rule
}

// Compile compiles rules in order. The first invalid pattern is reported.
func Compile(rules []types.RenameRule) (*Chain, error) {
	c := &Chain{rules: make([]rule, 0, len(rules))}
	for i, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d: invalid pattern %q: %w", i+1, r.Pattern, err)
		}
		c.rules = append(c.rules, rule{re: re, sub: r.Substitution})
	}
	return c, nil
}

// Len returns the number of rules in the chain
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.rules)
}

// Apply runs rel through every rule of the chain
func (c *Chain) Apply(rel string) string {
	if c == nil {
		return rel
	}
	for _, r := range c.rules {
		rel = r.re.ReplaceAllString(rel, r.sub)
	}
	return rel
}

// Apply compiles rules and applies them to rel
func Apply(rel string, rules []types.RenameRule) (string, error) {
	c, err := Compile(rules)
	if err != nil {
		return "", err
	}
	return c.Apply(rel), nil
}
