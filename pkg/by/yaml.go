package by

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/uimatch/pkg/core"
)

// selectorRaw is used for YAML unmarshaling.
type selectorRaw struct {
	Class        *string `yaml:"class"`
	ClassMatches *string `yaml:"classMatches"`

	Text           *string `yaml:"text"`
	TextContains   *string `yaml:"textContains"`
	TextStartsWith *string `yaml:"textStartsWith"`
	TextEndsWith   *string `yaml:"textEndsWith"`
	TextMatches    *string `yaml:"textMatches"`

	Desc           *string `yaml:"desc"`
	DescContains   *string `yaml:"descContains"`
	DescStartsWith *string `yaml:"descStartsWith"`
	DescEndsWith   *string `yaml:"descEndsWith"`
	DescMatches    *string `yaml:"descMatches"`

	Res        *string `yaml:"res"`
	ResMatches *string `yaml:"resMatches"`
	Pkg        *string `yaml:"pkg"`
	PkgMatches *string `yaml:"pkgMatches"`

	Checkable     *bool `yaml:"checkable"`
	Checked       *bool `yaml:"checked"`
	Clickable     *bool `yaml:"clickable"`
	Enabled       *bool `yaml:"enabled"`
	Focusable     *bool `yaml:"focusable"`
	Focused       *bool `yaml:"focused"`
	LongClickable *bool `yaml:"longClickable"`
	Scrollable    *bool `yaml:"scrollable"`
	Selected      *bool `yaml:"selected"`

	ChildCount *int `yaml:"childCount"`
	Depth      *int `yaml:"depth"`
	MinDepth   *int `yaml:"minDepth"`
	MaxDepth   *int `yaml:"maxDepth"`
	Instance   *int `yaml:"instance"`

	HasChild      []Selector      `yaml:"hasChild"`
	HasDescendant []descendantRaw `yaml:"hasDescendant"`
}

type descendantRaw struct {
	Selector Selector `yaml:"selector"`
	MaxDepth *int     `yaml:"maxDepth"`
}

// UnmarshalYAML allows Selector to be unmarshaled from a string (exact text) or a mapping.
func (s *Selector) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*s = Text(node.Value)
		return nil
	}

	var raw selectorRaw
	if err := node.Decode(&raw); err != nil {
		return err
	}

	out := Selector{}
	var err error

	// Plain values first so a *Matches key wins when both are given.
	if raw.Class != nil {
		out = out.Class(*raw.Class)
	}
	if out.class, err = regexSlot(out.class, "classMatches", raw.ClassMatches); err != nil {
		return err
	}

	out.text = stringSlot(out.text, raw.Text, raw.TextContains, raw.TextStartsWith, raw.TextEndsWith)
	if out.text, err = regexSlot(out.text, "textMatches", raw.TextMatches); err != nil {
		return err
	}
	out.desc = stringSlot(out.desc, raw.Desc, raw.DescContains, raw.DescStartsWith, raw.DescEndsWith)
	if out.desc, err = regexSlot(out.desc, "descMatches", raw.DescMatches); err != nil {
		return err
	}

	if raw.Res != nil {
		out = out.Res(*raw.Res)
	}
	if out.res, err = regexSlot(out.res, "resMatches", raw.ResMatches); err != nil {
		return err
	}
	if raw.Pkg != nil {
		out = out.Pkg(*raw.Pkg)
	}
	if out.pkg, err = regexSlot(out.pkg, "pkgMatches", raw.PkgMatches); err != nil {
		return err
	}

	for f, v := range map[Flag]*bool{
		FlagCheckable:     raw.Checkable,
		FlagChecked:       raw.Checked,
		FlagClickable:     raw.Clickable,
		FlagEnabled:       raw.Enabled,
		FlagFocusable:     raw.Focusable,
		FlagFocused:       raw.Focused,
		FlagLongClickable: raw.LongClickable,
		FlagScrollable:    raw.Scrollable,
		FlagSelected:      raw.Selected,
	} {
		if v != nil {
			out = out.With(f, *v)
		}
	}

	if raw.ChildCount != nil {
		out = out.ChildCount(*raw.ChildCount)
	}
	if raw.Depth != nil {
		out = out.Depth(*raw.Depth)
	}
	if raw.MinDepth != nil {
		out = out.MinDepth(*raw.MinDepth)
	}
	if raw.MaxDepth != nil {
		out = out.MaxDepth(*raw.MaxDepth)
	}
	if raw.Instance != nil {
		if *raw.Instance < 0 {
			return core.ErrInvalidSelector.WithMessage(fmt.Sprintf("invalid selector: instance %d is negative", *raw.Instance))
		}
		out = out.Instance(*raw.Instance)
	}

	for _, c := range raw.HasChild {
		out = out.HasChild(c)
	}
	for _, d := range raw.HasDescendant {
		if d.MaxDepth != nil {
			out = out.HasDescendant(d.Selector, *d.MaxDepth)
		} else {
			out = out.HasDescendant(d.Selector)
		}
	}

	*s = out
	return nil
}

// stringSlot applies the literal keys of one slot in precedence order exact, contains,
// startsWith, endsWith; the last one set wins.
func stringSlot(cur *StringMatcher, exact, contains, prefix, suffix *string) *StringMatcher {
	for _, kv := range []struct {
		kind MatchKind
		v    *string
	}{{Exact, exact}, {Contains, contains}, {StartsWith, prefix}, {EndsWith, suffix}} {
		if kv.v != nil {
			cur = newStringMatcher(kv.kind, *kv.v)
		}
	}
	return cur
}

func regexSlot(cur *StringMatcher, key string, pattern *string) (*StringMatcher, error) {
	if pattern == nil {
		return cur, nil
	}
	m, err := compileRegexMatcher(*pattern)
	if err != nil {
		return nil, core.ErrInvalidSelector.
			WithMessage(fmt.Sprintf("invalid selector: bad %s pattern %q", key, *pattern)).
			WithCause(err)
	}
	return m, nil
}

// Parse decodes a selector from YAML.
func Parse(data []byte) (Selector, error) {
	var s Selector
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Selector{}, wrapDecodeError(err)
	}
	return s, nil
}

// FromMap decodes a selector from a generic map, as produced by a JSON or script value.
func FromMap(m map[string]interface{}) (Selector, error) {
	var node yaml.Node
	if err := node.Encode(m); err != nil {
		return Selector{}, core.ErrInvalidSelector.WithCause(err)
	}
	var s Selector
	if err := node.Decode(&s); err != nil {
		return Selector{}, wrapDecodeError(err)
	}
	return s, nil
}

func wrapDecodeError(err error) error {
	var execErr *core.ExecutionError
	if errors.As(err, &execErr) {
		return err
	}
	return core.ErrInvalidSelector.WithCause(err)
}
