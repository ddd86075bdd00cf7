// Package query is the caller-facing lookup API over the matcher: one-shot searches on
// a given set of roots, row addressing inside a container, and wait conditions.
package query

import (
	"github.com/devicelab-dev/uimatch/pkg/by"
	"github.com/devicelab-dev/uimatch/pkg/core"
	"github.com/devicelab-dev/uimatch/pkg/matcher"
)

// Exists reports whether sel matches anything. It stops at the first match.
func Exists(sel by.Selector, roots ...core.Node) bool {
	return matcher.FindMatch(sel, roots...) != nil
}

// FindFirst returns the first match in pre-order, or nil.
func FindFirst(sel by.Selector, roots ...core.Node) core.Node {
	return matcher.FindMatch(sel, roots...)
}

// FindAll returns all matches in pre-order across roots.
func FindAll(sel by.Selector, roots ...core.Node) []core.Node {
	return matcher.FindMatches(sel, roots...)
}

// Child returns the first match of sel strictly below parent. Depth counts from the
// parent's direct children, which are at depth 0.
func Child(parent core.Node, sel by.Selector) core.Node {
	if parent == nil {
		return nil
	}
	children := make([]core.Node, 0, parent.ChildCount())
	for i := 0; i < parent.ChildCount(); i++ {
		children = append(children, parent.Child(i))
	}
	return matcher.FindMatch(sel, children...)
}
