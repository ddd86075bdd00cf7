package by

import (
	"regexp"
	"strconv"
	"strings"
)

// MatchKind selects how a StringMatcher compares a value.
type MatchKind int

const (
	Exact MatchKind = iota
	Contains
	StartsWith
	EndsWith
	Regex
)

// String returns the selector key suffix for the kind.
func (k MatchKind) String() string {
	switch k {
	case Exact:
		return ""
	case Contains:
		return "Contains"
	case StartsWith:
		return "StartsWith"
	case EndsWith:
		return "EndsWith"
	case Regex:
		return "Matches"
	default:
		return "Unknown"
	}
}

// StringMatcher matches one string attribute of a node.
// Values are never mutated after construction, so selectors share them freely.
type StringMatcher struct {
	kind  MatchKind
	value string
	re    *regexp.Regexp // anchored, only for Regex
}

func newStringMatcher(kind MatchKind, value string) *StringMatcher {
	return &StringMatcher{kind: kind, value: value}
}

// newRegexMatcher anchors re to the whole value. A substring intent must be spelled .*x.*
func newRegexMatcher(re *regexp.Regexp) *StringMatcher {
	return &StringMatcher{
		kind:  Regex,
		value: re.String(),
		re:    regexp.MustCompile(`^(?:` + re.String() + `)$`),
	}
}

// compileRegexMatcher is newRegexMatcher for untrusted patterns.
func compileRegexMatcher(pattern string) (*StringMatcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return newRegexMatcher(re), nil
}

// Kind returns the comparison kind.
func (m *StringMatcher) Kind() MatchKind {
	return m.kind
}

// Value returns the literal or the regex source.
func (m *StringMatcher) Value() string {
	return m.value
}

// Match reports whether value satisfies the matcher.
// An absent value never matches, not even an exact empty string.
func (m *StringMatcher) Match(value string, present bool) bool {
	if !present {
		return false
	}
	switch m.kind {
	case Exact:
		return value == m.value
	case Contains:
		return strings.Contains(value, m.value)
	case StartsWith:
		return strings.HasPrefix(value, m.value)
	case EndsWith:
		return strings.HasSuffix(value, m.value)
	case Regex:
		return m.re.MatchString(value)
	default:
		return false
	}
}

func (m *StringMatcher) describe(name string) string {
	if m.kind == Regex {
		return name + "~" + strconv.Quote(m.value)
	}
	return name + m.kind.String() + "=" + strconv.Quote(m.value)
}
