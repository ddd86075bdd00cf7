package config

import (
	"path/filepath"
	"testing"
)

func TestGetHome_EnvVar(t *testing.T) {
	ResetHome()
	t.Setenv("UIMATCH_HOME", "/custom/path")

	got := GetHome()
	if got != "/custom/path" {
		t.Errorf("GetHome() = %q, want %q", got, "/custom/path")
	}
}

func TestGetHome_FallbackNotEmpty(t *testing.T) {
	ResetHome()
	t.Setenv("UIMATCH_HOME", "")

	if got := GetHome(); got == "" {
		t.Error("GetHome() returned empty string")
	}
}

func TestGetHome_Cached(t *testing.T) {
	ResetHome()
	t.Setenv("UIMATCH_HOME", "/first")

	first := GetHome()

	// Change env, should NOT affect cached value
	t.Setenv("UIMATCH_HOME", "/second")
	second := GetHome()

	if first != second {
		t.Errorf("GetHome() not cached: first=%q, second=%q", first, second)
	}
}

func TestGetLogDir(t *testing.T) {
	ResetHome()
	t.Setenv("UIMATCH_HOME", "/opt/uimatch")

	want := filepath.Join("/opt/uimatch", "logs")
	if got := GetLogDir(); got != want {
		t.Errorf("GetLogDir() = %q, want %q", got, want)
	}
}
