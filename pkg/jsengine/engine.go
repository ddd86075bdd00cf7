// Package jsengine evaluates JavaScript watcher scripts against the device.
//
// Scripts see a few globals bound to the current UI tree:
//
//	exists(sel)  true if sel matches
//	count(sel)   number of matches
//	text(sel)    text of the first match, or null
//	tap(sel)     clicks the first match, false if there is none
//	log(msg)     writes to the session log
//
// A selector is a string (exact text) or an object using the YAML selector keys,
// e.g. exists({textContains: "Allow", clickable: true}).
package jsengine

import (
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/devicelab-dev/uimatch/pkg/by"
	"github.com/devicelab-dev/uimatch/pkg/core"
	"github.com/devicelab-dev/uimatch/pkg/logger"
	"github.com/devicelab-dev/uimatch/pkg/matcher"
	"github.com/devicelab-dev/uimatch/pkg/watcher"
)

// DefaultTimeout bounds one script evaluation.
const DefaultTimeout = 5 * time.Second

// Host is the device side of the script bindings.
type Host interface {
	RootNodes() ([]core.Node, error)
	ClickNode(n core.Node) error
}

// Engine wraps a goja runtime. Evaluations are serialized.
type Engine struct {
	runtime *goja.Runtime
	host    Host
	timeout time.Duration
	mu      sync.Mutex
}

// New creates an engine bound to host. host may be nil for pure expressions; the
// device globals then throw.
func New(host Host) *Engine {
	e := &Engine{
		runtime: goja.New(),
		host:    host,
		timeout: DefaultTimeout,
	}
	e.setupBuiltins()
	return e
}

// SetTimeout changes the per-evaluation limit. Zero or less disables it.
func (e *Engine) SetTimeout(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timeout = d
}

func (e *Engine) setupBuiltins() {
	e.setupConsole()

	e.runtime.Set("exists", func(v goja.Value) (bool, error) {
		roots, sel, err := e.lookup(v)
		if err != nil {
			return false, err
		}
		return matcher.FindMatch(sel, roots...) != nil, nil
	})
	e.runtime.Set("count", func(v goja.Value) (int, error) {
		roots, sel, err := e.lookup(v)
		if err != nil {
			return 0, err
		}
		return len(matcher.FindMatches(sel, roots...)), nil
	})
	e.runtime.Set("text", func(v goja.Value) (goja.Value, error) {
		roots, sel, err := e.lookup(v)
		if err != nil {
			return nil, err
		}
		n := matcher.FindMatch(sel, roots...)
		if n == nil {
			return goja.Null(), nil
		}
		if t, ok := n.Text(); ok {
			return e.runtime.ToValue(t), nil
		}
		return goja.Null(), nil
	})
	e.runtime.Set("tap", func(v goja.Value) (bool, error) {
		roots, sel, err := e.lookup(v)
		if err != nil {
			return false, err
		}
		n := matcher.FindMatch(sel, roots...)
		if n == nil {
			return false, nil
		}
		if err := e.host.ClickNode(n); err != nil {
			return false, err
		}
		return true, nil
	})
	e.runtime.Set("log", func(msg string) {
		logger.Info("script: %s", msg)
	})
}

// setupConsole routes console.log, console.warn and console.error to the log file.
func (e *Engine) setupConsole() {
	makeConsoleFunc := func(log func(string, ...interface{})) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			args := make([]interface{}, len(call.Arguments))
			for i, arg := range call.Arguments {
				args[i] = arg.Export()
			}
			log("script: %s", fmt.Sprintln(args...))
			return goja.Undefined()
		}
	}

	console := e.runtime.NewObject()
	console.Set("log", makeConsoleFunc(logger.Info))
	console.Set("error", makeConsoleFunc(logger.Error))
	console.Set("warn", makeConsoleFunc(logger.Warn))
	e.runtime.Set("console", console)
}

// lookup reads the tree and converts a script value into a selector.
func (e *Engine) lookup(v goja.Value) ([]core.Node, by.Selector, error) {
	sel, err := e.selector(v)
	if err != nil {
		return nil, by.Selector{}, err
	}
	if e.host == nil {
		return nil, by.Selector{}, core.ErrNotInitialized.WithMessage("script has no device")
	}
	roots, err := e.host.RootNodes()
	if err != nil {
		return nil, by.Selector{}, err
	}
	return roots, sel, nil
}

func (e *Engine) selector(v goja.Value) (by.Selector, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return by.Selector{}, core.ErrInvalidSelector.WithMessage("missing selector argument")
	}
	switch x := v.Export().(type) {
	case string:
		return by.Text(x), nil
	case map[string]interface{}:
		return by.FromMap(x)
	default:
		return by.Selector{}, core.ErrInvalidSelector.WithMessage(fmt.Sprintf("unsupported selector %v", x))
	}
}

// Eval evaluates a JavaScript expression and returns the result
func (e *Engine) Eval(script string) (interface{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if timeout := e.timeout; timeout > 0 {
		timer := time.AfterFunc(timeout, func() {
			e.runtime.Interrupt(fmt.Sprintf("script exceeded %s", timeout))
		})
		defer func() {
			timer.Stop()
			e.runtime.ClearInterrupt()
		}()
	}

	result, err := e.runtime.RunString(script)
	if err != nil {
		return nil, fmt.Errorf("JS eval error: %w", err)
	}
	return result.Export(), nil
}

// EvalBool evaluates script and converts the result with JavaScript truthiness.
func (e *Engine) EvalBool(script string) (bool, error) {
	result, err := e.Eval(script)
	if err != nil {
		return false, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runtime.ToValue(result).ToBoolean(), nil
}

// Watcher wraps script as a watcher: it triggers when the script's value is truthy.
func (e *Engine) Watcher(script string) watcher.Func {
	return func() (bool, error) {
		return e.EvalBool(script)
	}
}
