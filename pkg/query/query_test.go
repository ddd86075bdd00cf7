package query

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/uimatch/pkg/by"
	"github.com/devicelab-dev/uimatch/pkg/core"
	"github.com/devicelab-dev/uimatch/pkg/driver/mock"
	"github.com/devicelab-dev/uimatch/pkg/hierarchy"
	"github.com/devicelab-dev/uimatch/pkg/wait"
)

func node(class string, attrs map[string]string, children ...*hierarchy.Element) *hierarchy.Element {
	return hierarchy.NewElement(class, attrs, children...)
}

// listScreen is a list of five rows. Each row is a LinearLayout holding a title
// TextView; row 2 reads "Row3" and row 4 carries a description.
func listScreen() (*hierarchy.Element, []*hierarchy.Element) {
	var rows []*hierarchy.Element
	for i := 1; i <= 5; i++ {
		title := node("android.widget.TextView", map[string]string{hierarchy.AttrText: fmt.Sprintf("Row%d", i)})
		attrs := map[string]string{}
		if i == 4 {
			attrs[hierarchy.AttrContentDesc] = "Row four, unread"
		}
		rows = append(rows, node("android.widget.LinearLayout", attrs, title))
	}
	list := node("android.widget.ListView", map[string]string{hierarchy.AttrResourceID: "com.app:id/list"}, rows...)
	return node("android.widget.FrameLayout", nil, list), rows
}

func TestFacade(t *testing.T) {
	root, rows := listScreen()
	roots := []core.Node{root}

	assert.True(t, Exists(by.Text("Row3"), roots...))
	assert.False(t, Exists(by.Text("Row9"), roots...))

	first := FindFirst(by.Class(".LinearLayout"), roots...)
	assert.Same(t, rows[0], first)
	assert.Len(t, FindAll(by.Class(".LinearLayout"), roots...), 5)

	assert.Equal(t, FindFirst(by.Text("Row3"), roots...) != nil, Exists(by.Text("Row3"), roots...))
}

func TestChild(t *testing.T) {
	root, rows := listScreen()

	title := Child(rows[2], by.Text("Row3"))
	require.NotNil(t, title)
	assert.Same(t, rows[2].Children[0], title)

	assert.Nil(t, Child(rows[2], by.Class(".LinearLayout")), "the parent itself is not a candidate")
	assert.Nil(t, Child(nil, by.Text("Row3")))
	assert.NotNil(t, Child(root, by.Text("Row5")))
}

func newCollection(t *testing.T) (*Collection, []*hierarchy.Element, *mock.Device) {
	t.Helper()
	root, rows := listScreen()
	dev := mock.New(mock.Config{}, root)
	t.Cleanup(func() { dev.Close() })
	return NewCollection(dev, by.Res("com.app:id/list")), rows, dev
}

func TestCollection_ChildByText(t *testing.T) {
	c, rows, _ := newCollection(t)
	row := by.Class(".LinearLayout")

	got, err := c.ChildByText(row, "Row3")
	require.NoError(t, err)
	assert.Same(t, rows[2], got)

	_, err = c.ChildByText(row, "Row9")
	assert.ErrorIs(t, err, core.ErrElementNotFound)
	var execErr *core.ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, core.ErrCategoryNotFound, execErr.Category)

	_, err = c.ChildByText(row, "")
	assert.ErrorIs(t, err, core.ErrElementNotFound)
}

func TestCollection_ChildByDescription(t *testing.T) {
	c, rows, _ := newCollection(t)
	row := by.Class(".LinearLayout")

	got, err := c.ChildByDescription(row, "unread")
	require.NoError(t, err)
	assert.Same(t, rows[3], got)

	_, err = c.ChildByDescription(row, "archived")
	assert.ErrorIs(t, err, core.ErrElementNotFound)
}

func TestCollection_CountAndInstance(t *testing.T) {
	c, rows, _ := newCollection(t)
	row := by.Class(".LinearLayout")

	count, err := c.ChildCount(row)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	got, err := c.ChildByInstance(row, 4)
	require.NoError(t, err)
	assert.Same(t, rows[4], got)

	_, err = c.ChildByInstance(row, 5)
	assert.ErrorIs(t, err, core.ErrElementNotFound)

	_, err = c.ChildByInstance(row, -1)
	assert.ErrorIs(t, err, core.ErrElementNotFound)
}

func TestCollection_TextLookupStaysInFirstContainer(t *testing.T) {
	row := func(text string) *hierarchy.Element {
		return node("android.widget.LinearLayout", nil,
			node("android.widget.TextView", map[string]string{hierarchy.AttrText: text}))
	}
	short := node("android.widget.ListView", nil, row("Inbox"))
	long := node("android.widget.ListView", nil, row("Drafts"), row("Sent"), row("Trash"))
	screen := hierarchy.StaticProvider{node("android.widget.FrameLayout", nil, short, long)}

	c := NewCollection(screen, by.Class(".ListView"))
	rowSel := by.Class(".LinearLayout")

	got, err := c.ChildByText(rowSel, "Inbox")
	require.NoError(t, err)
	assert.Same(t, short.Children[0], got)

	_, err = c.ChildByText(rowSel, "Sent")
	assert.ErrorIs(t, err, core.ErrElementNotFound)
}

func TestCollection_FreshTreeEachCall(t *testing.T) {
	c, _, dev := newCollection(t)
	row := by.Class(".LinearLayout")

	before := dev.RootCalls()
	_, _ = c.ChildCount(row)
	_, _ = c.ChildCount(row)
	assert.Equal(t, before+2, dev.RootCalls())

	dev.SetRoots(node("android.widget.ListView", map[string]string{hierarchy.AttrResourceID: "com.app:id/list"}))
	count, err := c.ChildCount(row)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCollection_ProviderError(t *testing.T) {
	c, _, dev := newCollection(t)
	boom := errors.New("bridge down")
	dev.SetRootsError(boom)

	_, err := c.ChildByText(by.Class(".LinearLayout"), "Row3")
	assert.ErrorIs(t, err, boom)

	_, err = NewCollection(nil, by.Selector{}).ChildCount(by.Selector{})
	assert.ErrorIs(t, err, core.ErrNotInitialized)
}

func TestUntilConditions(t *testing.T) {
	root, _ := listScreen()
	dev := mock.New(mock.Config{}, root)
	defer dev.Close()
	c := wait.New(dev, dev, wait.Options{})
	ctx := context.Background()

	found, state := wait.Wait(ctx, c, HasObject(dev, by.Text("Row1")), time.Second)
	assert.True(t, found)
	assert.Equal(t, wait.Resolved, state)

	n, state := wait.Wait(ctx, c, FindObject(dev, by.Text("Row2")), time.Second)
	assert.Equal(t, wait.Resolved, state)
	assert.NotNil(t, n)

	nodes, _ := wait.Wait(ctx, c, FindObjects(dev, by.TextStartsWith("Row")), time.Second)
	assert.Len(t, nodes, 5)

	// Row1 disappears when the screen changes.
	dev.EmitAfter(20*time.Millisecond, core.Event{Type: core.EventWindowContentChanged}, node("android.widget.FrameLayout", nil))
	gone, state := wait.Wait(ctx, c, Gone(dev, by.Text("Row1")), time.Second)
	assert.True(t, gone)
	assert.Equal(t, wait.Resolved, state)

	_, state = wait.Wait(ctx, c, HasObject(dev, by.Text("Row1")), 20*time.Millisecond)
	assert.Equal(t, wait.TimedOut, state)
}
