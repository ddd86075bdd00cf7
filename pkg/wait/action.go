package wait

import (
	"context"
	"time"

	"github.com/devicelab-dev/uimatch/pkg/core"
)

// EventCondition inspects events after an action. It owns its result across calls, so
// one wait may look at several events before accepting one.
type EventCondition[R any] interface {
	// Apply reports whether ev completes the wait.
	Apply(ev core.Event) bool
	// Result returns the value computed so far.
	Result() R
}

// PerformActionAndWait subscribes, runs action, then feeds events to cond until it accepts
// one. The condition's result is returned on timeout too; only an action error or a
// missing event source is an error.
func PerformActionAndWait[R any](ctx context.Context, c *Coordinator, action func() error, cond EventCondition[R], timeout time.Duration) (R, State, error) {
	if c.events == nil {
		return cond.Result(), c.setState(Idle), core.ErrNotInitialized.WithMessage("no event source for action-correlated wait")
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Subscribe first so an event raised by the action itself is not missed.
	events, err := c.events.Subscribe(waitCtx, nil)
	if err != nil {
		return cond.Result(), c.setState(Idle), err
	}

	if err := action(); err != nil {
		return cond.Result(), c.setState(Idle), err
	}
	c.setState(Listening)

	for {
		select {
		case <-waitCtx.Done():
			return cond.Result(), c.finish(ctx), nil
		case ev, ok := <-events:
			if !ok {
				return cond.Result(), c.finish(ctx), nil
			}
			if cond.Apply(ev) {
				return cond.Result(), c.setState(Resolved), nil
			}
		}
	}
}

// eventMatch accepts the first event its predicate likes and remembers it.
type eventMatch struct {
	accept  func(core.Event) bool
	matched bool
	event   core.Event
}

func (m *eventMatch) Apply(ev core.Event) bool {
	if m.accept(ev) {
		m.matched = true
		m.event = ev
		return true
	}
	return false
}

func (m *eventMatch) Result() bool {
	return m.matched
}

// NewWindow accepts a window state change: a new activity or dialog.
func NewWindow() EventCondition[bool] {
	return &eventMatch{accept: func(ev core.Event) bool {
		return ev.Type == core.EventWindowStateChanged
	}}
}

// WindowUpdate accepts a content change from pkg, or from any package if pkg is empty.
func WindowUpdate(pkg string) EventCondition[bool] {
	return &eventMatch{accept: func(ev core.Event) bool {
		return ev.Type == core.EventWindowContentChanged && (pkg == "" || ev.Package == pkg)
	}}
}

// ContentChanged accepts any window content change.
func ContentChanged() EventCondition[bool] {
	return WindowUpdate("")
}

// EventOf accepts the first event of type t and yields it.
func EventOf(t core.EventType) EventCondition[core.Event] {
	return &eventCapture{eventMatch{accept: func(ev core.Event) bool { return ev.Type == t }}}
}

type eventCapture struct {
	eventMatch
}

func (c *eventCapture) Result() core.Event {
	return c.event
}
