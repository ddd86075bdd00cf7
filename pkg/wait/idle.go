package wait

import (
	"context"
	"fmt"
	"time"

	"github.com/devicelab-dev/uimatch/pkg/core"
	"github.com/devicelab-dev/uimatch/pkg/hierarchy"
	"github.com/devicelab-dev/uimatch/pkg/logger"
)

// WaitForIdle returns once a full quiet window passes without a state-change event.
// Without an event source it compares tree fingerprints between polls instead; with
// neither collaborator it returns at once. A timeout returns core.ErrIdleTimeout and a
// cancelled ctx returns ctx.Err().
func (c *Coordinator) WaitForIdle(ctx context.Context, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if events := c.subscribe(waitCtx, nil); events != nil {
		c.setState(Listening)
		return c.idleOnEvents(ctx, waitCtx, events, timeout)
	}
	if c.provider != nil {
		c.setState(Polling)
		return c.idleOnSnapshots(ctx, waitCtx, timeout)
	}
	c.setState(Resolved)
	return nil
}

func (c *Coordinator) idleOnEvents(ctx, waitCtx context.Context, events <-chan core.Event, timeout time.Duration) error {
	quiet := time.NewTimer(c.opts.QuietWindow)
	defer quiet.Stop()

	for {
		select {
		case <-waitCtx.Done():
			return c.idleFailure(ctx, timeout)
		case <-quiet.C:
			c.setState(Resolved)
			return nil
		case _, ok := <-events:
			if !ok {
				return c.idleFailure(ctx, timeout)
			}
			if !quiet.Stop() {
				select {
				case <-quiet.C:
				default:
				}
			}
			quiet.Reset(c.opts.QuietWindow)
		}
	}
}

func (c *Coordinator) idleOnSnapshots(ctx, waitCtx context.Context, timeout time.Duration) error {
	snapshot := func() (uint64, error) {
		roots, err := c.provider.RootNodes()
		if err != nil {
			return 0, fmt.Errorf("wait for idle: %w", err)
		}
		return hierarchy.Fingerprint(roots), nil
	}

	last, err := snapshot()
	if err != nil {
		c.setState(Idle)
		return err
	}
	stableSince := time.Now()

	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-waitCtx.Done():
			return c.idleFailure(ctx, timeout)
		case now := <-ticker.C:
			fp, err := snapshot()
			if err != nil {
				c.setState(Idle)
				return err
			}
			if fp != last {
				last, stableSince = fp, now
				continue
			}
			if now.Sub(stableSince) >= c.opts.QuietWindow {
				c.setState(Resolved)
				return nil
			}
		}
	}
}

func (c *Coordinator) idleFailure(ctx context.Context, timeout time.Duration) error {
	if c.finish(ctx) == Cancelled {
		return ctx.Err()
	}
	logger.Warn("wait: ui not idle after %s", timeout)
	return core.ErrIdleTimeout.WithDetails(map[string]interface{}{"timeout": timeout.String()})
}
