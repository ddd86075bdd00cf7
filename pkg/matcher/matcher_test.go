package matcher

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/uimatch/pkg/by"
	"github.com/devicelab-dev/uimatch/pkg/core"
	"github.com/devicelab-dev/uimatch/pkg/hierarchy"
)

var frameOrList = regexp.MustCompile("Frame|List")

func el(class string, text string, children ...*hierarchy.Element) *hierarchy.Element {
	attrs := map[string]string{}
	if text != "" {
		attrs[hierarchy.AttrText] = text
	}
	return hierarchy.NewElement(class, attrs, children...)
}

// sampleRoots builds two windows:
//
//	A(Frame)
//	  B(List)
//	    C(Row "r1") > D(Label "x")
//	    E(Row "r2") > F(Label "y") > G(Label "deep")
//	  H(Button "OK")
//	I(Frame)
//	  J(Button "OK")
func sampleRoots() ([]core.Node, map[string]*hierarchy.Element) {
	n := map[string]*hierarchy.Element{}
	n["G"] = el("Label", "deep")
	n["F"] = el("Label", "y", n["G"])
	n["D"] = el("Label", "x")
	n["C"] = el("Row", "r1", n["D"])
	n["E"] = el("Row", "r2", n["F"])
	n["B"] = el("List", "", n["C"], n["E"])
	n["H"] = el("Button", "OK")
	n["A"] = el("Frame", "", n["B"], n["H"])
	n["J"] = el("Button", "OK")
	n["I"] = el("Frame", "", n["J"])
	return []core.Node{n["A"], n["I"]}, n
}

func names(t *testing.T, index map[string]*hierarchy.Element, nodes []core.Node) []string {
	t.Helper()
	var out []string
	for _, node := range nodes {
		found := ""
		for name, e := range index {
			if core.Node(e) == node {
				found = name
			}
		}
		require.NotEmpty(t, found, "unknown node in result")
		out = append(out, found)
	}
	return out
}

func TestEmptySelectorReturnsAllNodesInPreOrder(t *testing.T) {
	roots, idx := sampleRoots()
	got := FindMatches(by.Selector{}, roots...)
	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}, names(t, idx, got))

	first := FindMatch(by.Selector{}, roots...)
	assert.Same(t, idx["A"], first)
}

func TestEmptyRoots(t *testing.T) {
	assert.Nil(t, FindMatch(by.Text("OK")))
	assert.Empty(t, FindMatches(by.Selector{}))
	assert.Empty(t, FindMatches(by.Selector{}, nil, nil))
}

func TestNilRootsAreSkipped(t *testing.T) {
	roots, idx := sampleRoots()
	got := FindMatches(by.Text("OK"), nil, roots[0], nil, roots[1])
	assert.Equal(t, []string{"H", "J"}, names(t, idx, got))
}

func TestExistsEqualsFirstMatchPresent(t *testing.T) {
	roots, _ := sampleRoots()
	for _, sel := range []by.Selector{
		by.Text("OK"), by.Text("Cancel"), by.Class("Row").Instance(1), by.Class("Row").Instance(2),
		by.Depth(3), by.HasDescendant(by.Text("deep"), 1),
	} {
		assert.Equal(t, FindMatch(sel, roots...) != nil, len(FindMatches(sel, roots...)) > 0, sel.String())
	}
}

func TestInstanceLaw(t *testing.T) {
	roots, _ := sampleRoots()
	for _, base := range []by.Selector{by.Selector{}, by.Class("Label"), by.Text("OK"), by.Class("Row")} {
		all := FindMatches(base, roots...)
		for i := range all {
			assert.Same(t, all[i], FindMatch(base.Instance(i), roots...), "%s instance %d", base, i)
			got := FindMatches(base.Instance(i), roots...)
			require.Len(t, got, 1)
			assert.Same(t, all[i], got[0])
		}
		assert.Nil(t, FindMatch(base.Instance(len(all)), roots...))
		assert.Empty(t, FindMatches(base.Instance(len(all)), roots...))
		assert.Nil(t, FindMatch(base.Instance(-1), roots...))
		assert.Empty(t, FindMatches(base.Instance(-1), roots...))
	}
}

func TestInstanceCounterSpansRoots(t *testing.T) {
	roots, idx := sampleRoots()
	assert.Same(t, idx["J"], FindMatch(by.Text("OK").Instance(1), roots...))
}

func TestDepth(t *testing.T) {
	roots, idx := sampleRoots()

	assert.Equal(t, []string{"A", "I"}, names(t, idx, FindMatches(by.Depth(0), roots...)))
	assert.Equal(t, []string{"C", "E"}, names(t, idx, FindMatches(by.Depth(2), roots...)))
	assert.Equal(t, []string{"G"}, names(t, idx, FindMatches(by.MinDepth(4), roots...)))
	assert.Equal(t, []string{"B", "H", "J"}, names(t, idx, FindMatches(by.MinDepth(1).MaxDepth(1), roots...)))
	assert.Empty(t, FindMatches(by.Text("deep").MaxDepth(3), roots...))
}

func TestHasChildIsDirectOnly(t *testing.T) {
	roots, idx := sampleRoots()

	assert.Equal(t, []string{"E"}, names(t, idx, FindMatches(by.HasChild(by.Text("y")), roots...)))
	assert.Empty(t, FindMatches(by.Class("Row").HasChild(by.Text("deep")), roots...))
	assert.Equal(t, []string{"B"}, names(t, idx,
		FindMatches(by.HasChild(by.Text("r1")).HasChild(by.Text("r2")), roots...)))
}

func TestHasDescendantMaxDepthLaw(t *testing.T) {
	roots, idx := sampleRoots()
	// "deep" is 1 level below F, 2 below E, 3 below B and 4 below A.
	for _, tt := range []struct {
		maxDepth []int
		want     []string
	}{
		{[]int{0}, nil},
		{[]int{1}, []string{"F"}},
		{[]int{2}, []string{"E", "F"}},
		{[]int{3}, []string{"B", "E", "F"}},
		{nil, []string{"A", "B", "E", "F"}},
	} {
		sel := by.Selector{}.HasDescendant(by.Text("deep"), tt.maxDepth...)
		assert.Equal(t, tt.want, names(t, idx, FindMatches(sel, roots...)), sel.String())
	}
}

func TestNestedSelectorsIgnoreDepthAndInstance(t *testing.T) {
	roots, idx := sampleRoots()
	// The nested depth and instance would exclude every node if they were applied.
	sel := by.Class("Row").HasChild(by.Class("Label").Depth(7).Instance(4))
	assert.Equal(t, []string{"C", "E"}, names(t, idx, FindMatches(sel, roots...)))
}

func TestDeepCopyLaw(t *testing.T) {
	roots, _ := sampleRoots()
	orig := by.Class("Row").HasDescendant(by.Text("deep"))
	before := FindMatches(orig, roots...)

	dup := by.Copy(orig)
	_ = dup.Text("r1").HasChild(by.Text("nope")).Instance(3)
	dup.Descendants()[0].MaxDepth = 0

	assert.Equal(t, before, FindMatches(orig, roots...))
}

func TestButtonPanelScenario(t *testing.T) {
	button := el("Button", "OK")
	panel := el("Panel", "", button)
	roots := []core.Node{panel}

	assert.Same(t, button, FindMatch(by.Text("OK"), roots...))
	got := FindMatches(by.Class("Panel"), roots...)
	require.Len(t, got, 1)
	assert.Same(t, panel, got[0])
	assert.Nil(t, FindMatch(by.Text("Cancel"), roots...))
}

func TestAbsentTextNeverMatchesEmptyPredicate(t *testing.T) {
	roots, idx := sampleRoots()
	// A, B and I have no text attribute at all.
	assert.Empty(t, FindMatches(by.Text(""), roots...))
	assert.Len(t, FindMatches(by.TextStartsWith(""), roots...), 7)
	assert.Equal(t, []string{"A", "B", "I"}, names(t, idx, FindMatches(by.Selector{}.MaxDepth(1).ClassMatches(frameOrList), roots...)))
}
