// Package config handles configuration for uimatch.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/uimatch/pkg/by"
	"github.com/devicelab-dev/uimatch/pkg/core"
)

// Config represents the workspace configuration (config.yaml).
type Config struct {
	// Page source file served by the CLI
	Hierarchy string `yaml:"hierarchy"`

	// Wait and lookup timings
	Timeouts Timeouts `yaml:"timeouts"`

	// Named selectors, usable with --named
	Selectors map[string]by.Selector `yaml:"selectors"`

	// Scripted watchers run when a lookup misses
	Watchers []WatcherSpec `yaml:"watchers"`
}

// Timeouts in milliseconds. Zero means the default.
type Timeouts struct {
	WaitForIdleMs  int `yaml:"waitForIdleMs"`
	IdleQuietMs    int `yaml:"idleQuietMs"`
	PollIntervalMs int `yaml:"pollIntervalMs"`
	MinIntervalMs  int `yaml:"minIntervalMs"`
	FindMs         int `yaml:"findMs"`
	KeyEventMs     int `yaml:"keyEventMs"`
}

// Default timings.
const (
	DefaultWaitForIdle = 10 * time.Second
	DefaultFind        = 5 * time.Second
	DefaultKeyEvent    = 1 * time.Second
)

func ms(v int, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return time.Duration(v) * time.Millisecond
}

// WaitForIdle is the idle wait before device actions.
func (t Timeouts) WaitForIdle() time.Duration { return ms(t.WaitForIdleMs, DefaultWaitForIdle) }

// IdleQuiet is the quiet window; zero leaves the wait default.
func (t Timeouts) IdleQuiet() time.Duration { return ms(t.IdleQuietMs, 0) }

// PollInterval is the poll period; zero leaves the wait default.
func (t Timeouts) PollInterval() time.Duration { return ms(t.PollIntervalMs, 0) }

// MinInterval is the minimum gap between evaluations; zero leaves the wait default.
func (t Timeouts) MinInterval() time.Duration { return ms(t.MinIntervalMs, 0) }

// Find is the default WaitForObject timeout.
func (t Timeouts) Find() time.Duration { return ms(t.FindMs, DefaultFind) }

// KeyEvent is how long press helpers wait for the screen to react.
func (t Timeouts) KeyEvent() time.Duration { return ms(t.KeyEventMs, DefaultKeyEvent) }

// WatcherSpec is a scripted watcher.
type WatcherSpec struct {
	Name   string `yaml:"name"`
	Script string `yaml:"script"`
}

// Validate checks the values YAML decoding cannot.
func (c *Config) Validate() error {
	for _, v := range []struct {
		key string
		ms  int
	}{
		{"waitForIdleMs", c.Timeouts.WaitForIdleMs},
		{"idleQuietMs", c.Timeouts.IdleQuietMs},
		{"pollIntervalMs", c.Timeouts.PollIntervalMs},
		{"minIntervalMs", c.Timeouts.MinIntervalMs},
		{"findMs", c.Timeouts.FindMs},
		{"keyEventMs", c.Timeouts.KeyEventMs},
	} {
		if v.ms < 0 {
			return core.ErrInvalidConfig.WithMessage(fmt.Sprintf("timeouts.%s must not be negative", v.key))
		}
	}
	seen := make(map[string]bool, len(c.Watchers))
	for i, w := range c.Watchers {
		if w.Name == "" {
			return core.ErrInvalidConfig.WithMessage(fmt.Sprintf("watchers[%d]: name is required", i))
		}
		if w.Script == "" {
			return core.ErrInvalidConfig.WithMessage(fmt.Sprintf("watcher %q: script is required", w.Name))
		}
		if seen[w.Name] {
			return core.ErrInvalidConfig.WithMessage(fmt.Sprintf("watcher %q defined twice", w.Name))
		}
		seen[w.Name] = true
	}
	return nil
}

// Selector returns a named selector.
func (c *Config) Selector(name string) (by.Selector, error) {
	sel, ok := c.Selectors[name]
	if !ok {
		return by.Selector{}, core.ErrInvalidConfig.WithMessage(fmt.Sprintf("no selector named %q", name))
	}
	return sel, nil
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, core.ErrInvalidConfig.WithMessage("invalid configuration " + path).WithCause(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Hierarchy != "" && !filepath.IsAbs(cfg.Hierarchy) {
		cfg.Hierarchy = filepath.Join(filepath.Dir(path), cfg.Hierarchy)
	}

	return &cfg, nil
}

// LoadFromDir looks for config.yaml or config.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	// Try config.yaml first
	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// Try config.yml
	configPath = filepath.Join(dir, "config.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// No config file found, return empty config
	return &Config{}, nil
}
