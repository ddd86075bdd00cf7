// Package by builds selectors: immutable criteria that the matcher evaluates against a
// UI tree. Every builder method returns a new Selector and leaves the receiver untouched,
// so a base selector can be shared and specialized without aliasing.
package by

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/devicelab-dev/uimatch/pkg/core"
)

// Flag names a boolean node property.
type Flag int

const (
	FlagCheckable Flag = iota
	FlagChecked
	FlagClickable
	FlagEnabled
	FlagFocusable
	FlagFocused
	FlagLongClickable
	FlagScrollable
	FlagSelected
	flagCount
)

var flagNames = [flagCount]string{
	"checkable", "checked", "clickable", "enabled", "focusable",
	"focused", "longClickable", "scrollable", "selected",
}

// String returns the selector key for the flag.
func (f Flag) String() string {
	if f < 0 || f >= flagCount {
		return "unknown"
	}
	return flagNames[f]
}

// Value reads the flag from a node.
func (f Flag) Value(n core.Node) bool {
	switch f {
	case FlagCheckable:
		return n.IsCheckable()
	case FlagChecked:
		return n.IsChecked()
	case FlagClickable:
		return n.IsClickable()
	case FlagEnabled:
		return n.IsEnabled()
	case FlagFocusable:
		return n.IsFocusable()
	case FlagFocused:
		return n.IsFocused()
	case FlagLongClickable:
		return n.IsLongClickable()
	case FlagScrollable:
		return n.IsScrollable()
	case FlagSelected:
		return n.IsSelected()
	}
	return false
}

type triState int8

const (
	unset triState = iota
	isTrue
	isFalse
)

func tri(b bool) triState {
	if b {
		return isTrue
	}
	return isFalse
}

// Unbounded is the max depth of a descendant criterion without a limit.
const Unbounded = -1

// Descendant is a required-descendant criterion.
type Descendant struct {
	Selector Selector
	MaxDepth int // levels below the candidate; Unbounded for no limit
}

// Selector is a set of optional predicates. An unset predicate always matches.
type Selector struct {
	class *StringMatcher
	text  *StringMatcher
	desc  *StringMatcher
	res   *StringMatcher
	pkg   *StringMatcher

	flags [flagCount]triState

	childCount *int
	minDepth   *int
	maxDepth   *int
	instance   *int

	children    []Selector
	descendants []Descendant
}

// Class sets the class name criterion. A name starting with '.' is short for
// android.widget.<name>.
func (s Selector) Class(className string) Selector {
	if strings.HasPrefix(className, ".") {
		return s.ClassIn("android.widget", className[1:])
	}
	s.class = newStringMatcher(Exact, className)
	return s
}

// ClassIn sets the class name criterion to packageName.className.
func (s Selector) ClassIn(packageName, className string) Selector {
	s.class = newStringMatcher(Exact, packageName+"."+className)
	return s
}

// ClassMatches sets a regex class name criterion.
func (s Selector) ClassMatches(re *regexp.Regexp) Selector {
	s.class = newRegexMatcher(re)
	return s
}

// Text sets an exact text criterion.
func (s Selector) Text(text string) Selector {
	s.text = newStringMatcher(Exact, text)
	return s
}

// TextContains sets a substring text criterion.
func (s Selector) TextContains(substring string) Selector {
	s.text = newStringMatcher(Contains, substring)
	return s
}

// TextStartsWith sets a prefix text criterion.
func (s Selector) TextStartsWith(prefix string) Selector {
	s.text = newStringMatcher(StartsWith, prefix)
	return s
}

// TextEndsWith sets a suffix text criterion.
func (s Selector) TextEndsWith(suffix string) Selector {
	s.text = newStringMatcher(EndsWith, suffix)
	return s
}

// TextMatches sets a regex text criterion. The regex must match the whole text.
func (s Selector) TextMatches(re *regexp.Regexp) Selector {
	s.text = newRegexMatcher(re)
	return s
}

// Desc sets an exact content description criterion.
func (s Selector) Desc(desc string) Selector {
	s.desc = newStringMatcher(Exact, desc)
	return s
}

// DescContains sets a substring content description criterion.
func (s Selector) DescContains(substring string) Selector {
	s.desc = newStringMatcher(Contains, substring)
	return s
}

// DescStartsWith sets a prefix content description criterion.
func (s Selector) DescStartsWith(prefix string) Selector {
	s.desc = newStringMatcher(StartsWith, prefix)
	return s
}

// DescEndsWith sets a suffix content description criterion.
func (s Selector) DescEndsWith(suffix string) Selector {
	s.desc = newStringMatcher(EndsWith, suffix)
	return s
}

// DescMatches sets a regex content description criterion.
func (s Selector) DescMatches(re *regexp.Regexp) Selector {
	s.desc = newRegexMatcher(re)
	return s
}

// Res sets an exact resource name criterion.
func (s Selector) Res(resourceName string) Selector {
	s.res = newStringMatcher(Exact, resourceName)
	return s
}

// ResIn sets the resource name criterion to resourcePackage:id/resourceID.
func (s Selector) ResIn(resourcePackage, resourceID string) Selector {
	s.res = newStringMatcher(Exact, resourcePackage+":id/"+resourceID)
	return s
}

// ResMatches sets a regex resource name criterion.
func (s Selector) ResMatches(re *regexp.Regexp) Selector {
	s.res = newRegexMatcher(re)
	return s
}

// Pkg sets an exact application package criterion.
func (s Selector) Pkg(applicationPackage string) Selector {
	s.pkg = newStringMatcher(Exact, applicationPackage)
	return s
}

// PkgMatches sets a regex application package criterion.
func (s Selector) PkgMatches(re *regexp.Regexp) Selector {
	s.pkg = newRegexMatcher(re)
	return s
}

// With sets a boolean flag criterion.
func (s Selector) With(f Flag, value bool) Selector {
	if f >= 0 && f < flagCount {
		s.flags[f] = tri(value)
	}
	return s
}

func (s Selector) Checkable(v bool) Selector     { return s.With(FlagCheckable, v) }
func (s Selector) Checked(v bool) Selector       { return s.With(FlagChecked, v) }
func (s Selector) Clickable(v bool) Selector     { return s.With(FlagClickable, v) }
func (s Selector) Enabled(v bool) Selector       { return s.With(FlagEnabled, v) }
func (s Selector) Focusable(v bool) Selector     { return s.With(FlagFocusable, v) }
func (s Selector) Focused(v bool) Selector       { return s.With(FlagFocused, v) }
func (s Selector) LongClickable(v bool) Selector { return s.With(FlagLongClickable, v) }
func (s Selector) Scrollable(v bool) Selector    { return s.With(FlagScrollable, v) }
func (s Selector) Selected(v bool) Selector      { return s.With(FlagSelected, v) }

// ChildCount sets an exact direct-child count criterion.
func (s Selector) ChildCount(count int) Selector {
	s.childCount = &count
	return s
}

// Depth restricts matches to an exact depth below the search root (root = 0).
func (s Selector) Depth(depth int) Selector {
	return s.MinDepth(depth).MaxDepth(depth)
}

// MinDepth restricts matches to at least depth.
func (s Selector) MinDepth(depth int) Selector {
	s.minDepth = &depth
	return s
}

// MaxDepth restricts matches to at most depth.
func (s Selector) MaxDepth(depth int) Selector {
	s.maxDepth = &depth
	return s
}

// Instance selects the Nth (0-based) match in search order.
func (s Selector) Instance(instance int) Selector {
	s.instance = &instance
	return s
}

// HasChild requires a direct child matching child.
func (s Selector) HasChild(child Selector) Selector {
	children := make([]Selector, len(s.children), len(s.children)+1)
	copy(children, s.children)
	s.children = append(children, child)
	return s
}

// HasDescendant requires a descendant matching descendant, optionally within maxDepth
// levels below the candidate.
func (s Selector) HasDescendant(descendant Selector, maxDepth ...int) Selector {
	d := Descendant{Selector: descendant, MaxDepth: Unbounded}
	if len(maxDepth) > 0 {
		d.MaxDepth = maxDepth[0]
	}
	descendants := make([]Descendant, len(s.descendants), len(s.descendants)+1)
	copy(descendants, s.descendants)
	s.descendants = append(descendants, d)
	return s
}

// Copy returns a deep, independent duplicate of s.
func (s Selector) Copy() Selector {
	out := s
	if s.childCount != nil {
		out.childCount = intPtr(*s.childCount)
	}
	if s.minDepth != nil {
		out.minDepth = intPtr(*s.minDepth)
	}
	if s.maxDepth != nil {
		out.maxDepth = intPtr(*s.maxDepth)
	}
	if s.instance != nil {
		out.instance = intPtr(*s.instance)
	}
	out.children = nil
	for _, c := range s.children {
		out.children = append(out.children, c.Copy())
	}
	out.descendants = nil
	for _, d := range s.descendants {
		out.descendants = append(out.descendants, Descendant{Selector: d.Selector.Copy(), MaxDepth: d.MaxDepth})
	}
	return out
}

func intPtr(v int) *int {
	return &v
}

// InstanceIndex returns the instance criterion, if set.
func (s Selector) InstanceIndex() (int, bool) {
	if s.instance == nil {
		return 0, false
	}
	return *s.instance, true
}

// WithoutInstance returns s with the instance criterion cleared.
func (s Selector) WithoutInstance() Selector {
	s.instance = nil
	return s
}

// DepthBounds returns the depth range; -1 means unbounded on that side.
func (s Selector) DepthBounds() (min, max int) {
	min, max = -1, -1
	if s.minDepth != nil {
		min = *s.minDepth
	}
	if s.maxDepth != nil {
		max = *s.maxDepth
	}
	return min, max
}

// InDepth reports whether depth satisfies the depth bounds.
func (s Selector) InDepth(depth int) bool {
	min, max := s.DepthBounds()
	return (min < 0 || depth >= min) && (max < 0 || depth <= max)
}

// Children returns the required-child criteria in order.
func (s Selector) Children() []Selector {
	return append([]Selector(nil), s.children...)
}

// Descendants returns the required-descendant criteria in order.
func (s Selector) Descendants() []Descendant {
	return append([]Descendant(nil), s.descendants...)
}

// IsEmpty returns true if no criterion is set.
func (s Selector) IsEmpty() bool {
	if s.class != nil || s.text != nil || s.desc != nil || s.res != nil || s.pkg != nil {
		return false
	}
	for _, f := range s.flags {
		if f != unset {
			return false
		}
	}
	return s.childCount == nil && s.minDepth == nil && s.maxDepth == nil &&
		s.instance == nil && len(s.children) == 0 && len(s.descendants) == 0
}

// Matches evaluates the node's own properties: strings, flags and child count.
// Depth, instance and child/descendant criteria are the matcher's job.
func (s Selector) Matches(n core.Node) bool {
	if n == nil {
		return false
	}
	if s.class != nil && !s.class.Match(n.ClassName()) {
		return false
	}
	if s.text != nil && !s.text.Match(n.Text()) {
		return false
	}
	if s.desc != nil && !s.desc.Match(n.ContentDescription()) {
		return false
	}
	if s.res != nil && !s.res.Match(n.ResourceName()) {
		return false
	}
	if s.pkg != nil && !s.pkg.Match(n.PackageName()) {
		return false
	}
	for i, want := range s.flags {
		if want != unset && tri(Flag(i).Value(n)) != want {
			return false
		}
	}
	if s.childCount != nil && n.ChildCount() != *s.childCount {
		return false
	}
	return true
}

// Describe returns a human-readable description, e.g. By[text="OK", clickable=true].
func (s Selector) Describe() string {
	var parts []string
	for _, sm := range []struct {
		name string
		m    *StringMatcher
	}{
		{"class", s.class}, {"text", s.text}, {"desc", s.desc}, {"res", s.res}, {"pkg", s.pkg},
	} {
		if sm.m != nil {
			parts = append(parts, sm.m.describe(sm.name))
		}
	}
	for i, f := range s.flags {
		if f != unset {
			parts = append(parts, Flag(i).String()+"="+strconv.FormatBool(f == isTrue))
		}
	}
	if s.childCount != nil {
		parts = append(parts, "childCount="+strconv.Itoa(*s.childCount))
	}
	min, max := s.DepthBounds()
	switch {
	case min >= 0 && min == max:
		parts = append(parts, "depth="+strconv.Itoa(min))
	default:
		if min >= 0 {
			parts = append(parts, "minDepth="+strconv.Itoa(min))
		}
		if max >= 0 {
			parts = append(parts, "maxDepth="+strconv.Itoa(max))
		}
	}
	if s.instance != nil {
		parts = append(parts, "instance="+strconv.Itoa(*s.instance))
	}
	for _, c := range s.children {
		parts = append(parts, "hasChild="+c.Describe())
	}
	for _, d := range s.descendants {
		p := "hasDescendant=" + d.Selector.Describe()
		if d.MaxDepth != Unbounded {
			p += "@" + strconv.Itoa(d.MaxDepth)
		}
		parts = append(parts, p)
	}
	return "By[" + strings.Join(parts, ", ") + "]"
}

// String implements fmt.Stringer.
func (s Selector) String() string {
	return s.Describe()
}
