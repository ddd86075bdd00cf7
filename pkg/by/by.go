package by

import "regexp"

// Shorthand constructors: by.Text("OK") is Selector{}.Text("OK").

// Copy returns a deep copy of original.
func Copy(original Selector) Selector { return original.Copy() }

func Class(className string) Selector                   { return Selector{}.Class(className) }
func ClassIn(packageName, className string) Selector    { return Selector{}.ClassIn(packageName, className) }
func ClassMatches(re *regexp.Regexp) Selector           { return Selector{}.ClassMatches(re) }
func Text(text string) Selector                         { return Selector{}.Text(text) }
func TextContains(substring string) Selector            { return Selector{}.TextContains(substring) }
func TextStartsWith(prefix string) Selector             { return Selector{}.TextStartsWith(prefix) }
func TextEndsWith(suffix string) Selector               { return Selector{}.TextEndsWith(suffix) }
func TextMatches(re *regexp.Regexp) Selector            { return Selector{}.TextMatches(re) }
func Desc(desc string) Selector                         { return Selector{}.Desc(desc) }
func DescContains(substring string) Selector            { return Selector{}.DescContains(substring) }
func DescStartsWith(prefix string) Selector             { return Selector{}.DescStartsWith(prefix) }
func DescEndsWith(suffix string) Selector               { return Selector{}.DescEndsWith(suffix) }
func DescMatches(re *regexp.Regexp) Selector            { return Selector{}.DescMatches(re) }
func Res(resourceName string) Selector                  { return Selector{}.Res(resourceName) }
func ResIn(resourcePackage, resourceID string) Selector { return Selector{}.ResIn(resourcePackage, resourceID) }
func ResMatches(re *regexp.Regexp) Selector             { return Selector{}.ResMatches(re) }
func Pkg(applicationPackage string) Selector            { return Selector{}.Pkg(applicationPackage) }
func PkgMatches(re *regexp.Regexp) Selector             { return Selector{}.PkgMatches(re) }
func ChildCount(count int) Selector                     { return Selector{}.ChildCount(count) }
func Depth(depth int) Selector                          { return Selector{}.Depth(depth) }
func MinDepth(depth int) Selector                       { return Selector{}.MinDepth(depth) }
func MaxDepth(depth int) Selector                       { return Selector{}.MaxDepth(depth) }
func Instance(instance int) Selector                    { return Selector{}.Instance(instance) }
func HasChild(child Selector) Selector                  { return Selector{}.HasChild(child) }

// HasDescendant constructs a selector requiring a descendant, optionally within maxDepth.
func HasDescendant(descendant Selector, maxDepth ...int) Selector {
	return Selector{}.HasDescendant(descendant, maxDepth...)
}

func Checkable(v bool) Selector     { return Selector{}.Checkable(v) }
func Checked(v bool) Selector       { return Selector{}.Checked(v) }
func Clickable(v bool) Selector     { return Selector{}.Clickable(v) }
func Enabled(v bool) Selector       { return Selector{}.Enabled(v) }
func Focusable(v bool) Selector     { return Selector{}.Focusable(v) }
func Focused(v bool) Selector       { return Selector{}.Focused(v) }
func LongClickable(v bool) Selector { return Selector{}.LongClickable(v) }
func Scrollable(v bool) Selector    { return Selector{}.Scrollable(v) }
func Selected(v bool) Selector      { return Selector{}.Selected(v) }
