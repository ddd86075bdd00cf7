// Package watcher keeps named recovery checks, such as dismissing a permission dialog,
// that lookups run when an element is missing.
package watcher

import (
	"fmt"
	"sync"

	"github.com/devicelab-dev/uimatch/pkg/core"
	"github.com/devicelab-dev/uimatch/pkg/logger"
)

// Func checks for a condition and handles it, reporting whether it did anything.
// An error counts as not triggered.
type Func func() (bool, error)

type entry struct {
	name string
	fn   Func
}

// Registry holds watchers in registration order.
type Registry struct {
	mu        sync.Mutex
	entries   []entry
	triggered map[string]bool
	inContext bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{triggered: make(map[string]bool)}
}

// Register adds fn under name. An existing name keeps its position and gets the new fn.
// Fails with core.ErrWatcherContext while a watcher is running.
func (r *Registry) Register(name string, fn Func) error {
	if fn == nil {
		return fmt.Errorf("watcher %q: nil func", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.inContext {
		return core.ErrWatcherContext.WithDetails(map[string]interface{}{"watcher": name})
	}
	for i := range r.entries {
		if r.entries[i].name == name {
			r.entries[i].fn = fn
			return nil
		}
	}
	r.entries = append(r.entries, entry{name: name, fn: fn})
	return nil
}

// Remove deletes the watcher. Its triggered flag stays until ResetTriggers, so a
// caller can still see that it fired. Unknown names are ignored.
// Fails with core.ErrWatcherContext while a watcher is running.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.inContext {
		return core.ErrWatcherContext.WithDetails(map[string]interface{}{"watcher": name})
	}
	for i := range r.entries {
		if r.entries[i].name == name {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			break
		}
	}
	return nil
}

// RunAll runs every watcher once, in registration order, and reports whether any
// triggered. A call made from inside a running watcher does nothing.
func (r *Registry) RunAll() bool {
	r.mu.Lock()
	if r.inContext {
		r.mu.Unlock()
		return false
	}
	r.inContext = true
	entries := append([]entry(nil), r.entries...)
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.inContext = false
		r.mu.Unlock()
	}()

	triggered := false
	for _, e := range entries {
		if r.run(e) {
			triggered = true
			r.mu.Lock()
			r.triggered[e.name] = true
			r.mu.Unlock()
		}
	}
	return triggered
}

// run invokes one watcher without holding the lock so it can query freely.
func (r *Registry) run(e entry) (fired bool) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("watcher %q panicked: %v", e.name, p)
			fired = false
		}
	}()

	ok, err := e.fn()
	if err != nil {
		logger.Warn("watcher %q failed: %v", e.name, err)
		return false
	}
	if ok {
		logger.Info("watcher %q triggered", e.name)
	}
	return ok
}

// HasTriggered reports whether the named watcher has triggered since the last reset.
func (r *Registry) HasTriggered(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.triggered[name]
}

// HasAnyTriggered reports whether any watcher has triggered since the last reset.
func (r *Registry) HasAnyTriggered() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.triggered) > 0
}

// ResetTriggers clears every triggered flag.
func (r *Registry) ResetTriggers() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.triggered = make(map[string]bool)
}

// Names returns the registered names in order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.name)
	}
	return names
}

// InContext reports whether a watcher is currently running.
func (r *Registry) InContext() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inContext
}
