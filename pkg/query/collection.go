package query

import (
	"fmt"
	"strings"

	"github.com/devicelab-dev/uimatch/pkg/by"
	"github.com/devicelab-dev/uimatch/pkg/core"
	"github.com/devicelab-dev/uimatch/pkg/matcher"
)

// Collection addresses repeated rows inside a container, such as list items.
// Every call reads a fresh tree from the provider. Only rows present in the tree are
// seen: nothing scrolls, so off-screen rows need a scroll and a new call.
type Collection struct {
	provider  core.Provider
	container by.Selector
}

// NewCollection binds container to provider.
func NewCollection(provider core.Provider, container by.Selector) *Collection {
	return &Collection{provider: provider, container: container}
}

// Selector returns the container selector.
func (c *Collection) Selector() by.Selector {
	return c.container
}

func (c *Collection) roots() ([]core.Node, error) {
	if c.provider == nil {
		return nil, core.ErrNotInitialized
	}
	roots, err := c.provider.RootNodes()
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", c.container, err)
	}
	return roots, nil
}

func (c *Collection) pattern(row by.Selector) matcher.Pattern {
	return matcher.Pattern{Container: c.container, Row: row}
}

// ChildCount returns the number of rows matching row in the first container match.
func (c *Collection) ChildCount(row by.Selector) (int, error) {
	roots, err := c.roots()
	if err != nil {
		return 0, err
	}
	return matcher.PatternCount(c.pattern(row), roots...), nil
}

// ChildByInstance returns row number instance (0-based).
func (c *Collection) ChildByInstance(row by.Selector, instance int) (core.Node, error) {
	roots, err := c.roots()
	if err != nil {
		return nil, err
	}
	if n := matcher.FindPatternMatch(c.pattern(row.Instance(instance)), roots...); n != nil {
		return n, nil
	}
	return nil, c.notFound(row, "instance", instance)
}

// ChildByText returns the first row whose text equals text or that holds a descendant
// with exactly that text. An empty text never matches.
func (c *Collection) ChildByText(row by.Selector, text string) (core.Node, error) {
	return c.scan(row, "text", text, func(n core.Node) bool {
		if v, ok := n.Text(); ok && v == text {
			return true
		}
		return Child(n, by.Text(text)) != nil
	})
}

// ChildByDescription returns the first row whose content description contains desc or
// that holds a descendant whose description contains it. An empty desc never matches.
func (c *Collection) ChildByDescription(row by.Selector, desc string) (core.Node, error) {
	return c.scan(row, "description", desc, func(n core.Node) bool {
		if v, ok := n.ContentDescription(); ok && strings.Contains(v, desc) {
			return true
		}
		return Child(n, by.DescContains(desc)) != nil
	})
}

func (c *Collection) scan(row by.Selector, key, target string, accept func(core.Node) bool) (core.Node, error) {
	if target == "" {
		return nil, c.notFound(row, key, target)
	}
	roots, err := c.roots()
	if err != nil {
		return nil, err
	}

	p := c.pattern(row)
	for _, n := range p.Rows(matcher.FindMatch(c.container, roots...)) {
		if accept(n) {
			return n, nil
		}
	}
	return nil, c.notFound(row, key, target)
}

func (c *Collection) notFound(row by.Selector, key string, value interface{}) error {
	return core.ErrElementNotFound.
		WithMessage(fmt.Sprintf("no row %s with %s %v in %s", row, key, value, c.container)).
		WithDetails(map[string]interface{}{
			"container": c.container.String(),
			"row":       row.String(),
			key:         value,
		})
}
