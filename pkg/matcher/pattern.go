package matcher

import (
	"github.com/devicelab-dev/uimatch/pkg/by"
	"github.com/devicelab-dev/uimatch/pkg/core"
)

// Pattern addresses repeated rows inside a container.
// The row selector's instance index counts rows within one container, not globally.
// Its depth bounds are relative to the container, whose direct children are at depth 1.
type Pattern struct {
	Container by.Selector
	Row       by.Selector
}

// Rows returns the rows under container in pre-order. The container itself is never a
// row, and the walk does not descend into a matched row. The row instance is ignored.
func (p Pattern) Rows(container core.Node) []core.Node {
	if container == nil {
		return nil
	}
	row := p.Row.WithoutInstance()
	_, maxDepth := row.DepthBounds()

	var rows []core.Node
	var collect func(parent core.Node, depth int)
	collect = func(parent core.Node, depth int) {
		if maxDepth >= 0 && depth > maxDepth {
			return
		}
		for i := 0; i < parent.ChildCount(); i++ {
			c := parent.Child(i)
			if c == nil {
				continue
			}
			if row.InDepth(depth) && Satisfies(row, c) {
				rows = append(rows, c)
				continue
			}
			collect(c, depth+1)
		}
	}
	collect(container, 1)
	return rows
}

// FindPatternMatch returns row N, N being the row instance (default 0), of the first
// container match that has more than N rows.
func FindPatternMatch(p Pattern, roots ...core.Node) core.Node {
	index, _ := p.Row.InstanceIndex()
	if index < 0 {
		return nil
	}
	for _, container := range FindMatches(p.Container, roots...) {
		if rows := p.Rows(container); len(rows) > index {
			return rows[index]
		}
	}
	return nil
}

// PatternCount returns the number of rows in the first container match, 0 without one.
func PatternCount(p Pattern, roots ...core.Node) int {
	container := FindMatch(p.Container, roots...)
	if container == nil {
		return 0
	}
	return len(p.Rows(container))
}
