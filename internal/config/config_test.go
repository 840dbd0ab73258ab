package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv(EnvHome, "")

	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig() failed: %v", err)
	}

	home, _ := os.UserHomeDir()
	expectedHome := filepath.Join(home, ".updatecheck")

	if cfg.HomeDir != expectedHome {
		t.Errorf("HomeDir = %q, want %q", cfg.HomeDir, expectedHome)
	}
	if cfg.ConfigFile != filepath.Join(expectedHome, "config.toml") {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, filepath.Join(expectedHome, "config.toml"))
	}
}

func TestDefaultConfig_EnvOverride(t *testing.T) {
	custom := t.TempDir()
	t.Setenv(EnvHome, custom)

	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig() failed: %v", err)
	}
	if cfg.HomeDir != custom {
		t.Errorf("HomeDir = %q, want %q", cfg.HomeDir, custom)
	}
	if cfg.ConfigFile != filepath.Join(custom, "config.toml") {
		t.Errorf("ConfigFile = %q", cfg.ConfigFile)
	}
}

func TestDefaultConfig_HomeOverride(t *testing.T) {
	t.Setenv(EnvHome, "")
	original := DefaultHomeOverride
	defer func() { DefaultHomeOverride = original }()

	DefaultHomeOverride = "/opt/updatecheck-dev"
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig() failed: %v", err)
	}
	if cfg.HomeDir != "/opt/updatecheck-dev" {
		t.Errorf("HomeDir = %q, want override", cfg.HomeDir)
	}

	t.Setenv(EnvHome, "/from/env")
	cfg, _ = DefaultConfig()
	if cfg.HomeDir != "/from/env" {
		t.Errorf("UPDATECHECK_HOME should win over DefaultHomeOverride, got %q", cfg.HomeDir)
	}
}

func TestEnsureHome(t *testing.T) {
	cfg := &Config{HomeDir: filepath.Join(t.TempDir(), "a", "b")}
	if err := cfg.EnsureHome(); err != nil {
		t.Fatalf("EnsureHome() failed: %v", err)
	}
	info, err := os.Stat(cfg.HomeDir)
	if err != nil || !info.IsDir() {
		t.Errorf("expected %s to be a directory (err=%v)", cfg.HomeDir, err)
	}
}

func TestGetAPITimeout(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected time.Duration
	}{
		{"default when not set", "", DefaultAPITimeout},
		{"custom seconds", "10s", 10 * time.Second},
		{"custom minutes", "2m", 2 * time.Minute},
		{"complex duration", "1m30s", 90 * time.Second},
		{"invalid format uses default", "invalid", DefaultAPITimeout},
		{"too low uses minimum", "100ms", 1 * time.Second},
		{"too high uses maximum", "15m", 10 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvAPITimeout, tt.envValue)
			if got := GetAPITimeout(); got != tt.expected {
				t.Errorf("GetAPITimeout() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetMaxConcurrency(t *testing.T) {
	tests := []struct {
		envValue string
		expected int
	}{
		{"", DefaultMaxConcurrency},
		{"8", 8},
		{" 2 ", 2},
		{"0", DefaultMaxConcurrency},
		{"-3", DefaultMaxConcurrency},
		{"many", DefaultMaxConcurrency},
		{"1000", 32},
	}

	for _, tt := range tests {
		t.Run(tt.envValue, func(t *testing.T) {
			t.Setenv(EnvMaxConcurrency, tt.envValue)
			if got := GetMaxConcurrency(); got != tt.expected {
				t.Errorf("GetMaxConcurrency() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	t.Setenv(EnvGitHubToken, " ghp_abc \n")
	t.Setenv(EnvGiteaToken, "")

	if got := GetGitHubToken(); got != "ghp_abc" {
		t.Errorf("GetGitHubToken() = %q", got)
	}
	if got := GetGiteaToken(); got != "" {
		t.Errorf("GetGiteaToken() = %q, want empty", got)
	}
}
