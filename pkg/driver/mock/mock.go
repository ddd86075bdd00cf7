// Package mock provides a fake device for testing without a real device.
// It serves a settable UI tree, publishes events on an in-process bus and records the
// actions it is asked to perform.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/devicelab-dev/uimatch/pkg/core"
	"github.com/devicelab-dev/uimatch/pkg/events"
	"github.com/devicelab-dev/uimatch/pkg/hierarchy"
)

// Config configures mock device behavior.
type Config struct {
	// Package is reported on events the device raises itself.
	Package string
	// EventOnAction publishes a content-changed event after every action.
	EventOnAction bool
	// ActionDelay delays that event.
	ActionDelay time.Duration
	// OnAction runs after an action is recorded, e.g. to change the tree.
	OnAction func(d *Device, a core.Action)
	// PerformError makes every action fail.
	PerformError error
}

// Device is a fake implementation of core.Provider, core.EventSource and
// core.ActionExecutor.
type Device struct {
	Config Config

	bus *events.Bus

	mu        sync.Mutex
	roots     []core.Node
	rootsErr  error
	rootCalls int
	actions   []core.Action
}

var (
	_ core.Provider       = (*Device)(nil)
	_ core.EventSource    = (*Device)(nil)
	_ core.ActionExecutor = (*Device)(nil)
)

// New creates a mock device showing roots.
func New(cfg Config, roots ...*hierarchy.Element) *Device {
	if cfg.Package == "" {
		cfg.Package = "com.example.app"
	}
	return &Device{Config: cfg, bus: events.NewBus(), roots: hierarchy.Nodes(roots)}
}

// RootNodes returns the current tree.
func (d *Device) RootNodes() ([]core.Node, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rootCalls++
	if d.rootsErr != nil {
		return nil, d.rootsErr
	}
	return append([]core.Node(nil), d.roots...), nil
}

// SetRoots replaces the tree. Nil entries are kept so callers can test null roots.
func (d *Device) SetRoots(roots ...core.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.roots = roots
}

// SetRootsError makes RootNodes fail with err until cleared with nil.
func (d *Device) SetRootsError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rootsErr = err
}

// RootCalls returns how many times the tree was fetched.
func (d *Device) RootCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rootCalls
}

// Subscribe implements core.EventSource.
func (d *Device) Subscribe(ctx context.Context, filter func(core.Event) bool) (<-chan core.Event, error) {
	return d.bus.Subscribe(ctx, filter)
}

// Emit publishes ev now.
func (d *Device) Emit(ev core.Event) error {
	return d.bus.Publish(ev)
}

// EmitAfter publishes ev after delay, optionally swapping the tree first.
// The returned channel is closed once the event is out.
func (d *Device) EmitAfter(delay time.Duration, ev core.Event, roots ...core.Node) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(delay)
		if roots != nil {
			d.SetRoots(roots...)
		}
		_ = d.bus.Publish(ev)
	}()
	return done
}

// Perform records the action and raises the configured side effects.
func (d *Device) Perform(a core.Action) error {
	if d.Config.PerformError != nil {
		return d.Config.PerformError
	}

	d.mu.Lock()
	d.actions = append(d.actions, a)
	d.mu.Unlock()

	if d.Config.OnAction != nil {
		d.Config.OnAction(d, a)
	}
	if d.Config.EventOnAction {
		ev := core.Event{Type: core.EventWindowContentChanged, Package: d.Config.Package}
		if d.Config.ActionDelay > 0 {
			d.EmitAfter(d.Config.ActionDelay, ev)
		} else {
			_ = d.bus.Publish(ev)
		}
	}
	return nil
}

// Actions returns the recorded actions in order.
func (d *Device) Actions() []core.Action {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]core.Action(nil), d.actions...)
}

// Close shuts the event bus down.
func (d *Device) Close() error {
	return d.bus.Close()
}
