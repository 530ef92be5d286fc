// Package filter implements allow/deny topic name filtering. A topic is
// included iff it matches at least one allow pattern (default: match-all)
// and no deny pattern. Matching is regex-based, case-sensitive, and anchored
// to the full topic name.
package filter

import (
	"fmt"
	"regexp"

	"github.com/c360/streamcatalog/errors"
)

// Pattern holds compiled inclusion rules.
type Pattern struct {
	allow []*regexp.Regexp
	deny  []*regexp.Regexp
}

// New compiles allow and deny expressions into a Pattern. Malformed
// expressions are a configuration-time error, never a runtime one.
func New(allow, deny []string) (*Pattern, error) {
	p := &Pattern{}

	for _, expr := range allow {
		re, err := compileAnchored(expr)
		if err != nil {
			return nil, err
		}
		p.allow = append(p.allow, re)
	}

	for _, expr := range deny {
		re, err := compileAnchored(expr)
		if err != nil {
			return nil, err
		}
		p.deny = append(p.deny, re)
	}

	return p, nil
}

// compileAnchored anchors the expression to the full topic name before
// compiling.
func compileAnchored(expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("^(?:" + expr + ")$")
	if err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %q: %v", errors.ErrInvalidPattern, expr, err),
			"Pattern", "New", "compile expression")
	}
	return re, nil
}

// Allowed reports whether the topic name passes the inclusion rules.
func (p *Pattern) Allowed(name string) bool {
	for _, re := range p.deny {
		if re.MatchString(name) {
			return false
		}
	}

	// Empty allow list matches everything.
	if len(p.allow) == 0 {
		return true
	}

	for _, re := range p.allow {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Apply returns the included subset of names, preserving input order.
func (p *Pattern) Apply(names []string) []string {
	included := make([]string, 0, len(names))
	for _, name := range names {
		if p.Allowed(name) {
			included = append(included, name)
		}
	}
	return included
}
