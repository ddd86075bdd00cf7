// Package hierarchy holds an in-memory UI tree parsed from a UIAutomator page source
// dump. It is the tree the CLI and the tests run the matcher against.
package hierarchy

import (
	"github.com/devicelab-dev/uimatch/pkg/core"
)

// Attribute names as they appear in a UIAutomator dump.
const (
	AttrIndex         = "index"
	AttrText          = "text"
	AttrResourceID    = "resource-id"
	AttrClass         = "class"
	AttrPackage       = "package"
	AttrContentDesc   = "content-desc"
	AttrCheckable     = "checkable"
	AttrChecked       = "checked"
	AttrClickable     = "clickable"
	AttrEnabled       = "enabled"
	AttrFocusable     = "focusable"
	AttrFocused       = "focused"
	AttrScrollable    = "scrollable"
	AttrLongClickable = "long-clickable"
	AttrSelected      = "selected"
	AttrBounds        = "bounds"
)

// Element is one node of a parsed page source. It implements core.Node.
// An attribute missing from Attributes is absent, which differs from an empty value.
type Element struct {
	Attributes map[string]string
	Children   []*Element
	Rect       core.Bounds
}

var _ core.Node = (*Element)(nil)

// NewElement builds an element with the given class, attributes and children.
// attrs is copied; a "class" entry in attrs is overridden by className unless it is empty.
func NewElement(className string, attrs map[string]string, children ...*Element) *Element {
	e := &Element{Attributes: make(map[string]string, len(attrs)+1), Children: children}
	for k, v := range attrs {
		e.Attributes[k] = v
	}
	if className != "" {
		e.Attributes[AttrClass] = className
	}
	if b, ok := e.Attributes[AttrBounds]; ok {
		e.Rect = parseBounds(b)
	}
	return e
}

func (e *Element) attr(name string) (string, bool) {
	if e == nil || e.Attributes == nil {
		return "", false
	}
	v, ok := e.Attributes[name]
	return v, ok
}

func (e *Element) flag(name string) bool {
	v, _ := e.attr(name)
	return v == "true"
}

func (e *Element) ClassName() (string, bool)          { return e.attr(AttrClass) }
func (e *Element) Text() (string, bool)               { return e.attr(AttrText) }
func (e *Element) ContentDescription() (string, bool) { return e.attr(AttrContentDesc) }
func (e *Element) ResourceName() (string, bool)       { return e.attr(AttrResourceID) }
func (e *Element) PackageName() (string, bool)        { return e.attr(AttrPackage) }

func (e *Element) IsCheckable() bool     { return e.flag(AttrCheckable) }
func (e *Element) IsChecked() bool       { return e.flag(AttrChecked) }
func (e *Element) IsClickable() bool     { return e.flag(AttrClickable) }
func (e *Element) IsEnabled() bool       { return e.flag(AttrEnabled) }
func (e *Element) IsFocusable() bool     { return e.flag(AttrFocusable) }
func (e *Element) IsFocused() bool       { return e.flag(AttrFocused) }
func (e *Element) IsLongClickable() bool { return e.flag(AttrLongClickable) }
func (e *Element) IsScrollable() bool    { return e.flag(AttrScrollable) }
func (e *Element) IsSelected() bool      { return e.flag(AttrSelected) }

// ChildCount returns the number of direct children.
func (e *Element) ChildCount() int {
	if e == nil {
		return 0
	}
	return len(e.Children)
}

// Child returns the child at index, or nil. A nil *Element is never wrapped in the
// returned interface.
func (e *Element) Child(index int) core.Node {
	if e == nil || index < 0 || index >= len(e.Children) || e.Children[index] == nil {
		return nil
	}
	return e.Children[index]
}

// Bounds returns the on-screen rectangle.
func (e *Element) Bounds() core.Bounds {
	if e == nil {
		return core.Bounds{}
	}
	return e.Rect
}

// Nodes converts elements to a root list for the matcher.
func Nodes(elems []*Element) []core.Node {
	out := make([]core.Node, 0, len(elems))
	for _, e := range elems {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}
