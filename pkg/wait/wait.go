// Package wait synchronizes callers with asynchronous UI state changes.
//
// A wait blocks the calling goroutine until its condition holds, the timeout passes or
// the caller's context is cancelled. Conditions are re-evaluated after state-change
// events when an event source is available, otherwise on a fixed poll interval.
package wait

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/devicelab-dev/uimatch/pkg/core"
	"github.com/devicelab-dev/uimatch/pkg/logger"
)

// State of a wait call.
type State int

const (
	Idle State = iota
	Polling
	Listening
	Resolved
	TimedOut
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Polling:
		return "polling"
	case Listening:
		return "listening"
	case Resolved:
		return "resolved"
	case TimedOut:
		return "timed_out"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Done reports whether s is terminal.
func (s State) Done() bool {
	return s == Resolved || s == TimedOut || s == Cancelled
}

// Default timings.
const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultMinInterval  = 10 * time.Millisecond
	DefaultQuietWindow  = 500 * time.Millisecond
)

// Options tunes a Coordinator. Zero values take the defaults.
type Options struct {
	PollInterval time.Duration // re-evaluation period without an event source
	MinInterval  time.Duration // minimum gap between two evaluations
	QuietWindow  time.Duration // event-free period that counts as idle
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.MinInterval <= 0 {
		o.MinInterval = DefaultMinInterval
	}
	if o.QuietWindow <= 0 {
		o.QuietWindow = DefaultQuietWindow
	}
	return o
}

// Coordinator runs waits against one device. Either collaborator may be nil.
type Coordinator struct {
	events   core.EventSource
	provider core.Provider
	opts     Options

	mu    sync.Mutex
	state State
}

// New creates a Coordinator.
func New(events core.EventSource, provider core.Provider, opts Options) *Coordinator {
	return &Coordinator{events: events, provider: provider, opts: opts.withDefaults()}
}

// Options returns the effective options.
func (c *Coordinator) Options() Options {
	return c.opts
}

// State returns the state of the most recent wait.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) setState(s State) State {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	return s
}

// finish maps a finished wait context to TimedOut or Cancelled.
func (c *Coordinator) finish(parent context.Context) State {
	if parent.Err() != nil {
		return c.setState(Cancelled)
	}
	return c.setState(TimedOut)
}

// subscribe opens an event stream, or returns nil to fall back to polling.
func (c *Coordinator) subscribe(ctx context.Context, filter func(core.Event) bool) <-chan core.Event {
	if c.events == nil {
		return nil
	}
	ch, err := c.events.Subscribe(ctx, filter)
	if err != nil {
		logger.Warn("wait: subscribe failed, polling instead: %v", err)
		return nil
	}
	return ch
}

// Condition is evaluated against fresh state; ok=true resolves the wait with the value.
type Condition[R any] func() (R, bool)

// Wait evaluates cond now and after every state change until it resolves.
// A timeout or cancellation returns the zero value with TimedOut or Cancelled.
func Wait[R any](ctx context.Context, c *Coordinator, cond Condition[R], timeout time.Duration) (R, State) {
	var zero R

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Listen before the first evaluation so a change it races with is not lost.
	notify := c.subscribe(waitCtx, nil)
	var tick <-chan time.Time
	if notify == nil {
		ticker := time.NewTicker(c.opts.PollInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	if r, ok := cond(); ok {
		return r, c.setState(Resolved)
	}
	if notify != nil {
		c.setState(Listening)
	} else {
		c.setState(Polling)
	}

	limiter := rate.NewLimiter(rate.Every(c.opts.MinInterval), 1)
	for {
		select {
		case <-waitCtx.Done():
			return zero, c.finish(ctx)
		case _, ok := <-notify:
			if !ok {
				if waitCtx.Err() != nil {
					return zero, c.finish(ctx)
				}
				// Source went away; keep going on the poll interval.
				notify = nil
				ticker := time.NewTicker(c.opts.PollInterval)
				defer ticker.Stop()
				tick = ticker.C
				c.setState(Polling)
				continue
			}
		case <-tick:
		}

		if err := limiter.Wait(waitCtx); err != nil {
			return zero, c.finish(ctx)
		}
		if r, ok := cond(); ok {
			return r, c.setState(Resolved)
		}
	}
}
