// Package matcher evaluates selectors against UI trees.
//
// Every root is walked in pre-order with depth 0 at the root. A single ordinal counter
// spans all roots, so instance i of a selector is the i-th node, in that order, whose own
// predicates and child/descendant criteria pass. The matcher never mutates the tree and
// holds no state between calls.
package matcher

import (
	"github.com/devicelab-dev/uimatch/pkg/by"
	"github.com/devicelab-dev/uimatch/pkg/core"
)

// FindMatch returns the first match of sel, honoring its instance index, or nil.
func FindMatch(sel by.Selector, roots ...core.Node) core.Node {
	w := newWalk(sel, true)
	w.run(roots)
	if len(w.out) == 0 {
		return nil
	}
	return w.out[0]
}

// FindMatches returns every match of sel in pre-order, roots in order.
// With an instance index set, the result holds at most that one node.
func FindMatches(sel by.Selector, roots ...core.Node) []core.Node {
	w := newWalk(sel, false)
	w.run(roots)
	return w.out
}

// Satisfies reports whether n passes sel's own predicates and its child and descendant
// criteria. Depth and instance are ignored: they only mean something during a walk.
func Satisfies(sel by.Selector, n core.Node) bool {
	if n == nil || !sel.Matches(n) {
		return false
	}
	for _, child := range sel.Children() {
		if !hasChild(child, n) {
			return false
		}
	}
	for _, d := range sel.Descendants() {
		if !hasDescendant(d.Selector, n, d.MaxDepth) {
			return false
		}
	}
	return true
}

// hasChild checks direct children only.
func hasChild(sel by.Selector, n core.Node) bool {
	for i := 0; i < n.ChildCount(); i++ {
		if Satisfies(sel, n.Child(i)) {
			return true
		}
	}
	return false
}

// hasDescendant searches below n; a direct child is at level 1.
func hasDescendant(sel by.Selector, n core.Node, maxDepth int) bool {
	var search func(parent core.Node, level int) bool
	search = func(parent core.Node, level int) bool {
		if maxDepth != by.Unbounded && level > maxDepth {
			return false
		}
		for i := 0; i < parent.ChildCount(); i++ {
			c := parent.Child(i)
			if c == nil {
				continue
			}
			if Satisfies(sel, c) || search(c, level+1) {
				return true
			}
		}
		return false
	}
	return search(n, 1)
}

type walk struct {
	sel      by.Selector
	maxDepth    int
	instance    int
	hasInstance bool
	first       bool

	ordinal int
	done    bool
	out     []core.Node
}

func newWalk(sel by.Selector, first bool) *walk {
	w := &walk{sel: sel, first: first}
	_, w.maxDepth = sel.DepthBounds()
	w.instance, w.hasInstance = sel.InstanceIndex()
	// No node sits at a negative ordinal.
	w.done = w.hasInstance && w.instance < 0
	return w
}

func (w *walk) run(roots []core.Node) {
	for _, root := range roots {
		if w.done {
			return
		}
		if root != nil {
			w.visit(root, 0)
		}
	}
}

func (w *walk) visit(n core.Node, depth int) {
	if w.maxDepth >= 0 && depth > w.maxDepth {
		return
	}
	if w.sel.InDepth(depth) && Satisfies(w.sel, n) {
		if !w.hasInstance || w.ordinal == w.instance {
			w.out = append(w.out, n)
			if w.first || w.hasInstance {
				w.done = true
				return
			}
		}
		w.ordinal++
	}
	for i := 0; i < n.ChildCount() && !w.done; i++ {
		if c := n.Child(i); c != nil {
			w.visit(c, depth+1)
		}
	}
}
