package query

import (
	"github.com/devicelab-dev/uimatch/pkg/by"
	"github.com/devicelab-dev/uimatch/pkg/core"
	"github.com/devicelab-dev/uimatch/pkg/logger"
	"github.com/devicelab-dev/uimatch/pkg/matcher"
	"github.com/devicelab-dev/uimatch/pkg/wait"
)

// Wait conditions over a provider. A provider error counts as "not yet".

func fetch(p core.Provider) ([]core.Node, bool) {
	roots, err := p.RootNodes()
	if err != nil {
		logger.Debug("query: reading tree failed: %v", err)
		return nil, false
	}
	return roots, true
}

// HasObject resolves to true once sel matches.
func HasObject(p core.Provider, sel by.Selector) wait.Condition[bool] {
	return func() (bool, bool) {
		roots, ok := fetch(p)
		if !ok {
			return false, false
		}
		found := Exists(sel, roots...)
		return found, found
	}
}

// Gone resolves to true once sel no longer matches.
func Gone(p core.Provider, sel by.Selector) wait.Condition[bool] {
	return func() (bool, bool) {
		roots, ok := fetch(p)
		if !ok {
			return false, false
		}
		gone := !Exists(sel, roots...)
		return gone, gone
	}
}

// FindObject resolves to the first match of sel.
func FindObject(p core.Provider, sel by.Selector) wait.Condition[core.Node] {
	return func() (core.Node, bool) {
		roots, ok := fetch(p)
		if !ok {
			return nil, false
		}
		n := matcher.FindMatch(sel, roots...)
		return n, n != nil
	}
}

// FindObjects resolves to all matches of sel once there is at least one.
func FindObjects(p core.Provider, sel by.Selector) wait.Condition[[]core.Node] {
	return func() ([]core.Node, bool) {
		roots, ok := fetch(p)
		if !ok {
			return nil, false
		}
		nodes := matcher.FindMatches(sel, roots...)
		return nodes, len(nodes) > 0
	}
}
