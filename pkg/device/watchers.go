package device

import (
	"context"

	"github.com/devicelab-dev/uimatch/pkg/config"
	"github.com/devicelab-dev/uimatch/pkg/core"
	"github.com/devicelab-dev/uimatch/pkg/jsengine"
	"github.com/devicelab-dev/uimatch/pkg/logger"
	"github.com/devicelab-dev/uimatch/pkg/watcher"
)

// RegisterWatcher adds or replaces a watcher. It fails while watchers are running.
func (s *Session) RegisterWatcher(name string, fn watcher.Func) error {
	return s.watchers.Register(name, fn)
}

// RemoveWatcher drops a watcher. It fails while watchers are running.
func (s *Session) RemoveWatcher(name string) error {
	return s.watchers.Remove(name)
}

// RunWatchers runs every watcher once and reports whether any triggered.
func (s *Session) RunWatchers() bool {
	return s.watchers.RunAll()
}

func (s *Session) HasWatcherTriggered(name string) bool {
	return s.watchers.HasTriggered(name)
}

func (s *Session) HasAnyWatcherTriggered() bool {
	return s.watchers.HasAnyTriggered()
}

func (s *Session) ResetWatcherTriggers() {
	s.watchers.ResetTriggers()
}

// WatcherNames lists the registered watchers in order.
func (s *Session) WatcherNames() []string {
	return s.watchers.Names()
}

// scriptHost exposes the session to watcher scripts. Scripts run inside waits, so they
// read the tree without another idle wait.
type scriptHost struct {
	s *Session
}

func (h scriptHost) RootNodes() ([]core.Node, error) {
	return h.s.windowRoots()
}

func (h scriptHost) ClickNode(n core.Node) error {
	return h.s.ClickNode(context.Background(), n)
}

// LoadScriptWatchers registers one JavaScript watcher per entry. All scripts share one
// engine.
func (s *Session) LoadScriptWatchers(specs []config.WatcherSpec) error {
	if len(specs) == 0 {
		return nil
	}
	engine := jsengine.New(scriptHost{s})
	for _, spec := range specs {
		if err := s.watchers.Register(spec.Name, engine.Watcher(spec.Script)); err != nil {
			return err
		}
		logger.Debug("[%s] registered script watcher %q", s.id, spec.Name)
	}
	return nil
}
