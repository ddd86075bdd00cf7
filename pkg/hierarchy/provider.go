package hierarchy

import (
	"fmt"
	"os"

	"github.com/devicelab-dev/uimatch/pkg/core"
)

// FileProvider serves the UI tree from a page source file. The file is re-read on every
// call so an external dumper can refresh it between queries.
type FileProvider struct {
	Path string
}

// RootNodes implements core.Provider.
func (p *FileProvider) RootNodes() ([]core.Node, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, core.ErrProviderUnavailable.WithCause(fmt.Errorf("read %s: %w", p.Path, err))
	}
	roots, err := ParsePageSource(data)
	if err != nil {
		return nil, core.ErrProviderUnavailable.WithCause(fmt.Errorf("parse %s: %w", p.Path, err))
	}
	return Nodes(roots), nil
}

// StaticProvider serves a fixed tree.
type StaticProvider []*Element

// RootNodes implements core.Provider.
func (p StaticProvider) RootNodes() ([]core.Node, error) {
	return Nodes(p), nil
}
