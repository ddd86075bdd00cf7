// Package device provides the Session: one handle per device that composes the tree
// provider, the event source, the action executor, the wait coordinator and the watcher
// registry. Callers create as many sessions as they have devices.
package device

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/devicelab-dev/uimatch/pkg/by"
	"github.com/devicelab-dev/uimatch/pkg/config"
	"github.com/devicelab-dev/uimatch/pkg/core"
	"github.com/devicelab-dev/uimatch/pkg/hierarchy"
	"github.com/devicelab-dev/uimatch/pkg/logger"
	"github.com/devicelab-dev/uimatch/pkg/matcher"
	"github.com/devicelab-dev/uimatch/pkg/query"
	"github.com/devicelab-dev/uimatch/pkg/wait"
	"github.com/devicelab-dev/uimatch/pkg/watcher"
)

// Options configures a Session. Only Provider is required.
type Options struct {
	Provider core.Provider
	Events   core.EventSource
	Actions  core.ActionExecutor
	Timeouts config.Timeouts
}

// Session is the entry point for queries, waits and input against one device.
type Session struct {
	id       string
	provider core.Provider
	events   core.EventSource
	actions  core.ActionExecutor
	timeouts config.Timeouts

	waiter   *wait.Coordinator
	watchers *watcher.Registry
}

var _ core.Provider = (*Session)(nil)

// New creates a Session.
func New(opts Options) (*Session, error) {
	if opts.Provider == nil {
		return nil, core.ErrNotInitialized.WithMessage("session requires a tree provider")
	}

	s := &Session{
		id:       uuid.NewString(),
		provider: opts.Provider,
		events:   opts.Events,
		actions:  opts.Actions,
		timeouts: opts.Timeouts,
		watchers: watcher.NewRegistry(),
	}
	s.waiter = wait.New(opts.Events, opts.Provider, wait.Options{
		PollInterval: opts.Timeouts.PollInterval(),
		MinInterval:  opts.Timeouts.MinInterval(),
		QuietWindow:  opts.Timeouts.IdleQuiet(),
	})

	logger.WithFields(map[string]interface{}{
		"session": s.id,
		"events":  opts.Events != nil,
		"actions": opts.Actions != nil,
	}).Info("session created")
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Waiter returns the session's wait coordinator.
func (s *Session) Waiter() *wait.Coordinator {
	return s.waiter
}

// WaitForIdle waits for the default idle timeout.
func (s *Session) WaitForIdle(ctx context.Context) error {
	return s.WaitForIdleTimeout(ctx, s.timeouts.WaitForIdle())
}

// WaitForIdleTimeout waits until the UI has been quiet for the idle window.
func (s *Session) WaitForIdleTimeout(ctx context.Context, timeout time.Duration) error {
	return s.waiter.WaitForIdle(ctx, timeout)
}

// settle is the idle wait that precedes reads and input. A busy UI is logged, not fatal.
func (s *Session) settle(ctx context.Context) error {
	err := s.WaitForIdle(ctx)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		logger.Debug("[%s] proceeding without idle: %v", s.id, err)
	}
	return nil
}

// windowRoots fetches the provider roots, dropping nil windows.
func (s *Session) windowRoots() ([]core.Node, error) {
	roots, err := s.provider.RootNodes()
	if err != nil {
		return nil, fmt.Errorf("get window roots: %w", err)
	}
	out := roots[:0:0]
	for i, r := range roots {
		if r == nil {
			logger.Warn("[%s] skipping null root for window %d", s.id, i)
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// RootNodes waits for idle and returns the current window roots.
// It makes the session usable as a core.Provider, e.g. for collections.
func (s *Session) RootNodes() ([]core.Node, error) {
	if err := s.settle(context.Background()); err != nil {
		return nil, err
	}
	return s.windowRoots()
}

// HasObject reports whether sel matches the current tree.
func (s *Session) HasObject(sel by.Selector) (bool, error) {
	n, err := s.FindObject(sel)
	return n != nil, err
}

// FindObject returns the first match of sel, or nil.
func (s *Session) FindObject(sel by.Selector) (core.Node, error) {
	roots, err := s.RootNodes()
	if err != nil {
		return nil, err
	}
	return matcher.FindMatch(sel, roots...), nil
}

// FindObjects returns every match of sel.
func (s *Session) FindObjects(sel by.Selector) ([]core.Node, error) {
	roots, err := s.RootNodes()
	if err != nil {
		return nil, err
	}
	return matcher.FindMatches(sel, roots...), nil
}

// WaitForObject waits up to timeout for sel to appear. Watchers run after every miss.
func (s *Session) WaitForObject(ctx context.Context, sel by.Selector, timeout time.Duration) (core.Node, error) {
	if timeout <= 0 {
		timeout = s.timeouts.Find()
	}

	var lastErr error
	cond := func() (core.Node, bool) {
		roots, err := s.windowRoots()
		if err != nil {
			lastErr = err
			return nil, false
		}
		if n := matcher.FindMatch(sel, roots...); n != nil {
			return n, true
		}
		if s.watchers.RunAll() {
			// A watcher changed the screen; look again right away.
			if roots, err := s.windowRoots(); err == nil {
				if n := matcher.FindMatch(sel, roots...); n != nil {
					return n, true
				}
			}
		}
		return nil, false
	}

	n, state := wait.Wait(ctx, s.waiter, cond, timeout)
	switch state {
	case wait.Resolved:
		return n, nil
	case wait.Cancelled:
		return nil, ctx.Err()
	}

	notFound := core.ErrElementNotFound.
		WithMessage(fmt.Sprintf("element not found after %v: %s", timeout, sel)).
		WithDetails(map[string]interface{}{"selector": sel.String(), "timeout": timeout.String()})
	if lastErr != nil {
		return nil, notFound.WithCause(lastErr)
	}
	return nil, notFound.WithCause(core.ErrWaitTimeout)
}

// Collection returns row addressing inside container, backed by this session.
func (s *Session) Collection(container by.Selector) *query.Collection {
	return query.NewCollection(s, container)
}

// CurrentPackageName returns the package of the first window, or "" if it has none.
func (s *Session) CurrentPackageName() (string, error) {
	roots, err := s.windowRoots()
	if err != nil {
		return "", err
	}
	for _, r := range roots {
		if pkg, ok := r.PackageName(); ok {
			return pkg, nil
		}
	}
	return "", nil
}

// WaitForWindowUpdate waits for a content change from pkg, or from any package when pkg
// is empty. It returns false at once if pkg is not the current package.
func (s *Session) WaitForWindowUpdate(ctx context.Context, pkg string, timeout time.Duration) (bool, error) {
	if pkg != "" {
		current, err := s.CurrentPackageName()
		if err != nil {
			return false, err
		}
		if current != pkg {
			return false, nil
		}
	}
	if s.events == nil {
		return false, core.ErrNotInitialized.WithMessage("no event source for window updates")
	}

	ok, state, err := wait.PerformActionAndWait(ctx, s.waiter, func() error { return nil }, wait.WindowUpdate(pkg), timeout)
	if err != nil {
		return false, err
	}
	if state == wait.Cancelled {
		return ok, ctx.Err()
	}
	return ok, nil
}

// DumpHierarchy writes the current tree as UIAutomator XML.
func (s *Session) DumpHierarchy(w io.Writer) error {
	roots, err := s.RootNodes()
	if err != nil {
		return err
	}
	return hierarchy.WriteXML(w, roots)
}
