package mock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/uimatch/pkg/core"
	"github.com/devicelab-dev/uimatch/pkg/hierarchy"
)

func TestDevice_RootNodes(t *testing.T) {
	root := hierarchy.NewElement("android.widget.FrameLayout", nil)
	d := New(Config{}, root)
	defer d.Close()

	roots, err := d.RootNodes()
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Same(t, root, roots[0])
	assert.Equal(t, 1, d.RootCalls())

	boom := errors.New("boom")
	d.SetRootsError(boom)
	_, err = d.RootNodes()
	assert.ErrorIs(t, err, boom)
}

func TestDevice_PerformRecordsAndEmits(t *testing.T) {
	d := New(Config{EventOnAction: true, Package: "com.app"})
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := d.Subscribe(ctx, nil)
	require.NoError(t, err)

	require.NoError(t, d.Perform(core.Action{Kind: core.ActionKey, KeyCode: core.KeyCodeBack}))
	assert.Equal(t, []core.Action{{Kind: core.ActionKey, KeyCode: core.KeyCodeBack}}, d.Actions())

	select {
	case ev := <-ch:
		assert.Equal(t, core.EventWindowContentChanged, ev.Type)
		assert.Equal(t, "com.app", ev.Package)
	case <-time.After(time.Second):
		t.Fatal("no event after action")
	}
}

func TestDevice_PerformError(t *testing.T) {
	boom := errors.New("injection failed")
	d := New(Config{PerformError: boom})
	defer d.Close()

	assert.ErrorIs(t, d.Perform(core.Action{Kind: core.ActionClick}), boom)
	assert.Empty(t, d.Actions())
}

func TestDevice_EmitAfterSwapsTree(t *testing.T) {
	d := New(Config{})
	defer d.Close()

	next := hierarchy.NewElement("android.widget.TextView", map[string]string{hierarchy.AttrText: "Done"})
	<-d.EmitAfter(5*time.Millisecond, core.Event{Type: core.EventWindowContentChanged}, next)

	roots, err := d.RootNodes()
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Same(t, next, roots[0])
}
