package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "brewstats.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := cfg.GetBaseURL(); got != DefaultBaseURL {
		t.Errorf("GetBaseURL() = %q, want %q", got, DefaultBaseURL)
	}
	if got := cfg.GetPageLimit(); got != DefaultPageLimit {
		t.Errorf("GetPageLimit() = %d, want %d", got, DefaultPageLimit)
	}
	if got := cfg.GetThrottle(); got != DefaultThrottle {
		t.Errorf("GetThrottle() = %v, want %v", got, DefaultThrottle)
	}
	if got := cfg.GetStatsPath(); got != DefaultStatsPath {
		t.Errorf("GetStatsPath() = %q, want %q", got, DefaultStatsPath)
	}
}

func TestLoadPartialConfigKeepsOtherDefaults(t *testing.T) {
	path := writeConfig(t, `{"page_limit": 10, "throttle": "2s"}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := cfg.GetPageLimit(); got != 10 {
		t.Errorf("GetPageLimit() = %d, want 10", got)
	}
	if got := cfg.GetThrottle(); got != 2*time.Second {
		t.Errorf("GetThrottle() = %v, want 2s", got)
	}
	// Unspecified fields fall back to defaults.
	if got := cfg.GetSiteDir(); got != DefaultSiteDir {
		t.Errorf("GetSiteDir() = %q, want %q", got, DefaultSiteDir)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"page limit too large", `{"page_limit": 1000}`},
		{"page limit zero", `{"page_limit": 0}`},
		{"bad throttle", `{"throttle": "fast"}`},
		{"bad top ingredients", `{"top_ingredients": 0}`},
		{"not json", `{page_limit}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.contents)
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	if _, err := Load("config/brewstats.yaml"); err == nil {
		t.Error("expected error for non-.json extension")
	}
}
