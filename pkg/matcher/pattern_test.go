package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devicelab-dev/uimatch/pkg/by"
	"github.com/devicelab-dev/uimatch/pkg/core"
	"github.com/devicelab-dev/uimatch/pkg/hierarchy"
)

// twoLists builds Frame > [List1 > Row a,b ; List2 > Row c,d,e].
func twoLists() ([]core.Node, []*hierarchy.Element) {
	rows := []*hierarchy.Element{
		el("Row", "a"), el("Row", "b"), el("Row", "c"), el("Row", "d"), el("Row", "e"),
	}
	list1 := el("List", "", rows[0], rows[1])
	list2 := el("List", "", rows[2], rows[3], rows[4])
	return []core.Node{el("Frame", "", list1, list2)}, rows
}

func TestPatternCountUsesFirstContainer(t *testing.T) {
	roots, _ := twoLists()
	p := Pattern{Container: by.Class("List"), Row: by.Class("Row")}
	assert.Equal(t, 2, PatternCount(p, roots...))

	p.Container = by.Class("List").Instance(1)
	assert.Equal(t, 3, PatternCount(p, roots...))

	p.Container = by.Class("Grid")
	assert.Equal(t, 0, PatternCount(p, roots...))
}

func TestFindPatternMatchInstanceIsPerContainer(t *testing.T) {
	roots, rows := twoLists()
	p := Pattern{Container: by.Class("List"), Row: by.Class("Row")}

	assert.Same(t, rows[0], FindPatternMatch(p, roots...))

	p.Row = by.Class("Row").Instance(1)
	assert.Same(t, rows[1], FindPatternMatch(p, roots...))

	// The first list has only two rows, so instance 2 comes from the second list.
	p.Row = by.Class("Row").Instance(2)
	assert.Same(t, rows[4], FindPatternMatch(p, roots...))

	p.Row = by.Class("Row").Instance(3)
	assert.Nil(t, FindPatternMatch(p, roots...))

	p.Row = by.Class("Row").Instance(-1)
	assert.Nil(t, FindPatternMatch(p, roots...))
}

func TestPatternRowsSkipContainerAndNestedRows(t *testing.T) {
	inner := el("Row", "inner")
	outer := el("Row", "outer", el("Wrapper", "", inner))
	list := el("Row", "list", outer)

	rows := Pattern{Row: by.Class("Row")}.Rows(list)
	if assert.Len(t, rows, 1) {
		assert.Same(t, outer, rows[0])
	}
}

func TestPatternRowsDepthIsRelativeToContainer(t *testing.T) {
	deep := el("Row", "deep")
	direct := el("Row", "direct")
	list := el("List", "", direct, el("Wrapper", "", deep))

	rows := Pattern{Row: by.Class("Row").Depth(1)}.Rows(list)
	if assert.Len(t, rows, 1) {
		assert.Same(t, direct, rows[0])
	}
	assert.Len(t, Pattern{Row: by.Class("Row")}.Rows(list), 2)
	assert.Nil(t, Pattern{Row: by.Class("Row")}.Rows(nil))
}
