package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/devicelab-dev/uimatch/pkg/core"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfig(t, dir, "config.yaml", `
hierarchy: window_dump.xml
timeouts:
  waitForIdleMs: 2000
  findMs: 750
selectors:
  allow: Allow
  row:
    class: .LinearLayout
    hasChild:
      - textStartsWith: Row
watchers:
  - name: permissions
    script: exists("Allow") && tap("Allow")
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Hierarchy != filepath.Join(dir, "window_dump.xml") {
		t.Errorf("expected hierarchy relative to config, got %s", cfg.Hierarchy)
	}
	if cfg.Timeouts.WaitForIdle() != 2*time.Second {
		t.Errorf("expected waitForIdle 2s, got %v", cfg.Timeouts.WaitForIdle())
	}
	if cfg.Timeouts.Find() != 750*time.Millisecond {
		t.Errorf("expected find 750ms, got %v", cfg.Timeouts.Find())
	}
	if cfg.Timeouts.KeyEvent() != DefaultKeyEvent {
		t.Errorf("expected default key event timeout, got %v", cfg.Timeouts.KeyEvent())
	}

	allow, err := cfg.Selector("allow")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allow.String() != `By[text="Allow"]` {
		t.Errorf("unexpected allow selector %s", allow)
	}
	row, _ := cfg.Selector("row")
	if row.String() != `By[class="android.widget.LinearLayout", hasChild=By[textStartsWith="Row"]]` {
		t.Errorf("unexpected row selector %s", row)
	}
	if len(cfg.Watchers) != 1 || cfg.Watchers[0].Name != "permissions" {
		t.Errorf("unexpected watchers %+v", cfg.Watchers)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "config.yaml", `selectors: [invalid yaml`)

	_, err := Load(configPath)
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("expected invalid config error, got %v", err)
	}
}

func TestLoad_InvalidSelector(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "config.yaml", "selectors:\n  bad:\n    textMatches: '('\n")

	_, err := Load(configPath)
	if !errors.Is(err, core.ErrInvalidSelector) {
		t.Errorf("expected invalid selector cause, got %v", err)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative timeout", "timeouts:\n  findMs: -1\n"},
		{"watcher without name", "watchers:\n  - script: 'true'\n"},
		{"watcher without script", "watchers:\n  - name: x\n"},
		{"duplicate watcher", "watchers:\n  - {name: x, script: 'true'}\n  - {name: x, script: 'false'}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), "config.yaml", tt.content))
			if !errors.Is(err, core.ErrInvalidConfig) {
				t.Errorf("expected invalid config error, got %v", err)
			}
		})
	}
}

func TestLoad_EmptyConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, t.TempDir(), "config.yaml", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Hierarchy != "" || len(cfg.Selectors) != 0 {
		t.Errorf("expected empty config, got %+v", cfg)
	}
	if cfg.Timeouts.Find() != DefaultFind || cfg.Timeouts.IdleQuiet() != 0 {
		t.Error("expected default timeouts")
	}
}

func TestConfig_UnknownSelector(t *testing.T) {
	_, err := (&Config{}).Selector("missing")
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("expected invalid config error, got %v", err)
	}
}

func TestLoadFromDir_ConfigYaml(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "hierarchy: /abs/dump.xml\n")

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Hierarchy != "/abs/dump.xml" {
		t.Errorf("expected absolute hierarchy kept, got %s", cfg.Hierarchy)
	}
}

func TestLoadFromDir_ConfigYml(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yml", "hierarchy: /yml.xml\n")

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Hierarchy != "/yml.xml" {
		t.Errorf("expected /yml.xml, got %s", cfg.Hierarchy)
	}
}

func TestLoadFromDir_NoConfig(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected empty config, got nil")
	}
}

func TestLoadFromDir_PrefersYamlOverYml(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "hierarchy: /from-yaml.xml\n")
	writeConfig(t, dir, "config.yml", "hierarchy: /from-yml.xml\n")

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Hierarchy != "/from-yaml.xml" {
		t.Errorf("expected config.yaml to win, got %s", cfg.Hierarchy)
	}
}
