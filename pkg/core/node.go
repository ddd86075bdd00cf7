// Package core holds the types shared by the matcher, the wait coordinator and the
// session: the read-only node handle, the collaborator interfaces and the error taxonomy.
package core

import (
	"context"
	"time"
)

// Node is a read-only handle to one element of a UI tree.
// String accessors return ok=false when the attribute is absent, which is not the same
// as an empty value.
// Implementations: hierarchy.Element (page source), platform bridges.
type Node interface {
	ClassName() (string, bool)
	Text() (string, bool)
	ContentDescription() (string, bool)
	ResourceName() (string, bool)
	PackageName() (string, bool)

	IsCheckable() bool
	IsChecked() bool
	IsClickable() bool
	IsEnabled() bool
	IsFocusable() bool
	IsFocused() bool
	IsLongClickable() bool
	IsScrollable() bool
	IsSelected() bool

	// ChildCount returns the number of direct children.
	ChildCount() int
	// Child returns the child at index, or nil if it is unavailable.
	Child(index int) Node

	Bounds() Bounds
}

// Provider supplies the current UI tree, one root per window.
type Provider interface {
	RootNodes() ([]Node, error)
}

// EventSource delivers state-change notifications.
// The returned channel is closed once ctx is done.
type EventSource interface {
	Subscribe(ctx context.Context, filter func(Event) bool) (<-chan Event, error)
}

// ActionExecutor injects input into the device. The engine treats it as fire-and-forget.
type ActionExecutor interface {
	Perform(action Action) error
}

// EventType identifies a state-change notification.
type EventType string

// EventType values
const (
	EventWindowStateChanged   EventType = "windowStateChanged"
	EventWindowContentChanged EventType = "windowContentChanged"
	EventWindowsChanged       EventType = "windowsChanged"
	EventViewScrolled         EventType = "viewScrolled"
	EventViewClicked          EventType = "viewClicked"
	EventViewTextChanged      EventType = "viewTextChanged"
)

// Event is a state-change notification from the device.
type Event struct {
	Type      EventType `json:"type"`
	Package   string    `json:"package,omitempty"`
	ClassName string    `json:"className,omitempty"`
	Text      string    `json:"text,omitempty"`
	Time      time.Time `json:"time"`
}

// ActionKind identifies the kind of input injected by an Action.
type ActionKind string

// ActionKind values
const (
	ActionClick     ActionKind = "click"
	ActionLongClick ActionKind = "longClick"
	ActionSwipe     ActionKind = "swipe"
	ActionDrag      ActionKind = "drag"
	ActionKey       ActionKind = "key"
)

// Android key codes used by the press helpers.
const (
	KeyCodeHome       = 3
	KeyCodeBack       = 4
	KeyCodeDPadUp     = 19
	KeyCodeDPadDown   = 20
	KeyCodeDPadLeft   = 21
	KeyCodeDPadRight  = 22
	KeyCodeDPadCenter = 23
	KeyCodeEnter      = 66
	KeyCodeDel        = 67
	KeyCodeMenu       = 82
	KeyCodeSearch     = 84
)

// Action describes one input injection.
type Action struct {
	Kind      ActionKind `json:"kind"`
	X         int        `json:"x,omitempty"`
	Y         int        `json:"y,omitempty"`
	EndX      int        `json:"endX,omitempty"`
	EndY      int        `json:"endY,omitempty"`
	Steps     int        `json:"steps,omitempty"`
	KeyCode   int        `json:"keyCode,omitempty"`
	MetaState int        `json:"metaState,omitempty"`
}

// ElementInfo is a serializable snapshot of a Node.
type ElementInfo struct {
	ID                 string            `json:"id,omitempty"`
	Text               string            `json:"text,omitempty"`
	Bounds             Bounds            `json:"bounds"`
	Enabled            bool              `json:"enabled"`
	Focused            bool              `json:"focused,omitempty"`
	Checked            bool              `json:"checked,omitempty"`
	Selected           bool              `json:"selected,omitempty"`
	Clickable          bool              `json:"clickable,omitempty"`
	Class              string            `json:"class,omitempty"`
	Package            string            `json:"package,omitempty"`
	AccessibilityLabel string            `json:"accessibilityLabel,omitempty"`
	ChildCount         int               `json:"childCount"`
	Attributes         map[string]string `json:"attributes,omitempty"`
}

// InfoOf snapshots a node into an ElementInfo.
func InfoOf(n Node) *ElementInfo {
	if n == nil {
		return nil
	}
	info := &ElementInfo{
		Bounds:     n.Bounds(),
		Enabled:    n.IsEnabled(),
		Focused:    n.IsFocused(),
		Checked:    n.IsChecked(),
		Selected:   n.IsSelected(),
		Clickable:  n.IsClickable(),
		ChildCount: n.ChildCount(),
	}
	info.ID, _ = n.ResourceName()
	info.Text, _ = n.Text()
	info.Class, _ = n.ClassName()
	info.Package, _ = n.PackageName()
	info.AccessibilityLabel, _ = n.ContentDescription()
	return info
}

// Bounds represents element position and size
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the center point of the bounds
func (b Bounds) Center() (int, int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Contains checks if a point is within the bounds
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// IsEmpty returns true if the bounds have no area
func (b Bounds) IsEmpty() bool {
	return b.Width <= 0 || b.Height <= 0
}
