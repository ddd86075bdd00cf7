package device

import (
	"context"
	"fmt"

	"github.com/devicelab-dev/uimatch/pkg/core"
	"github.com/devicelab-dev/uimatch/pkg/logger"
	"github.com/devicelab-dev/uimatch/pkg/wait"
)

func (s *Session) perform(a core.Action) error {
	if s.actions == nil {
		return core.ErrNoActionExecutor
	}
	logger.Debug("[%s] perform %s %+v", s.id, a.Kind, a)
	if err := s.actions.Perform(a); err != nil {
		return fmt.Errorf("%s: %w", a.Kind, err)
	}
	return nil
}

// pressAndWait sends a key after an idle wait and reports whether the screen reacted
// with a content change within the key event timeout.
func (s *Session) pressAndWait(ctx context.Context, keyCode int) (bool, error) {
	if err := s.settle(ctx); err != nil {
		return false, err
	}
	key := core.Action{Kind: core.ActionKey, KeyCode: keyCode}
	if s.events == nil {
		return false, s.perform(key)
	}
	changed, _, err := wait.PerformActionAndWait(ctx, s.waiter,
		func() error { return s.perform(key) },
		wait.ContentChanged(),
		s.timeouts.KeyEvent())
	return changed, err
}

// PressBack presses BACK and reports whether the screen changed.
func (s *Session) PressBack(ctx context.Context) (bool, error) {
	return s.pressAndWait(ctx, core.KeyCodeBack)
}

// PressHome presses HOME and reports whether the screen changed.
func (s *Session) PressHome(ctx context.Context) (bool, error) {
	return s.pressAndWait(ctx, core.KeyCodeHome)
}

// PressMenu presses MENU and reports whether the screen changed.
func (s *Session) PressMenu(ctx context.Context) (bool, error) {
	return s.pressAndWait(ctx, core.KeyCodeMenu)
}

// PressKeyCode waits for idle, then sends keyCode with an optional meta state.
func (s *Session) PressKeyCode(ctx context.Context, keyCode int, metaState ...int) error {
	if err := s.settle(ctx); err != nil {
		return err
	}
	a := core.Action{Kind: core.ActionKey, KeyCode: keyCode}
	if len(metaState) > 0 {
		a.MetaState = metaState[0]
	}
	return s.perform(a)
}

func (s *Session) PressEnter(ctx context.Context) error {
	return s.PressKeyCode(ctx, core.KeyCodeEnter)
}

func (s *Session) PressDelete(ctx context.Context) error {
	return s.PressKeyCode(ctx, core.KeyCodeDel)
}

func (s *Session) PressSearch(ctx context.Context) error {
	return s.PressKeyCode(ctx, core.KeyCodeSearch)
}

func (s *Session) PressDPadUp(ctx context.Context) error {
	return s.PressKeyCode(ctx, core.KeyCodeDPadUp)
}

func (s *Session) PressDPadDown(ctx context.Context) error {
	return s.PressKeyCode(ctx, core.KeyCodeDPadDown)
}

func (s *Session) PressDPadLeft(ctx context.Context) error {
	return s.PressKeyCode(ctx, core.KeyCodeDPadLeft)
}

func (s *Session) PressDPadRight(ctx context.Context) error {
	return s.PressKeyCode(ctx, core.KeyCodeDPadRight)
}

func (s *Session) PressDPadCenter(ctx context.Context) error {
	return s.PressKeyCode(ctx, core.KeyCodeDPadCenter)
}

// Click taps at x,y.
func (s *Session) Click(ctx context.Context, x, y int) error {
	if x < 0 || y < 0 {
		return fmt.Errorf("click: point (%d,%d) is off screen", x, y)
	}
	if err := s.settle(ctx); err != nil {
		return err
	}
	return s.perform(core.Action{Kind: core.ActionClick, X: x, Y: y})
}

// ClickNode taps the center of n.
func (s *Session) ClickNode(ctx context.Context, n core.Node) error {
	if n == nil {
		return core.ErrElementNotFound.WithMessage("click: no element")
	}
	b := n.Bounds()
	if b.IsEmpty() {
		return core.ErrElementNotFound.
			WithMessage("click: element has no visible bounds").
			WithDetails(map[string]interface{}{"element": core.InfoOf(n)})
	}
	x, y := b.Center()
	return s.Click(ctx, x, y)
}

// Swipe moves from the start to the end point in steps of about 5ms each.
func (s *Session) Swipe(ctx context.Context, startX, startY, endX, endY, steps int) error {
	if err := s.settle(ctx); err != nil {
		return err
	}
	return s.perform(core.Action{Kind: core.ActionSwipe, X: startX, Y: startY, EndX: endX, EndY: endY, Steps: steps})
}

// Drag is a swipe that holds at the start point first.
func (s *Session) Drag(ctx context.Context, startX, startY, endX, endY, steps int) error {
	if err := s.settle(ctx); err != nil {
		return err
	}
	return s.perform(core.Action{Kind: core.ActionDrag, X: startX, Y: startY, EndX: endX, EndY: endY, Steps: steps})
}
