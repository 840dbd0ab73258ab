// Package userconfig manages ~/.updatecheck/config.toml, edited through
// `updatecheck config`. Settings here are defaults; flags and environment
// variables override them.
package userconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/tsukumogami/updatecheck/internal/config"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents user-configurable settings.
type Config struct {
	// Format is the default output format: text, json or yaml.
	Format string `toml:"format"`

	// Color is auto, always or never.
	Color string `toml:"color"`

	// Icons prefixes text output with emoji.
	Icons bool `toml:"icons"`

	// ChangelogLines caps the changelog shown in text output. 0 shows all.
	ChangelogLines int `toml:"changelog_lines"`

	// GitHubAPIURL points at a GitHub Enterprise API root.
	GitHubAPIURL string `toml:"github_api_url,omitempty"`

	// CratesIOURL points at a crates.io mirror.
	CratesIOURL string `toml:"crates_io_url,omitempty"`

	// Secrets holds API tokens. Environment variables take precedence.
	Secrets map[string]string `toml:"secrets,omitempty"`
}

// secretKeys are stored in Secrets and never printed in full.
var secretKeys = map[string]bool{
	"github_token": true,
	"gitea_token":  true,
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Format:         "text",
		Color:          ColorAuto,
		Icons:          true,
		ChangelogLines: 4,
	}
}

// Load reads the config file. A missing file yields defaults; only a file
// that cannot be read or parsed is an error.
func Load() (*Config, error) {
	cfg, err := config.DefaultConfig()
	if err != nil {
		return DefaultConfig(), nil
	}
	return loadFromPath(cfg.ConfigFile)
}

func loadFromPath(path string) (*Config, error) {
	userCfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return userCfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if _, err := toml.Decode(string(data), userCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return userCfg, nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	cfg, err := config.DefaultConfig()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	if err := cfg.EnsureHome(); err != nil {
		return err
	}
	return c.saveToPath(cfg.ConfigFile)
}

// saveToPath writes the file with 0600 permissions, since it may hold tokens.
func (c *Config) saveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Get returns the value of a config key as a string. Secrets are masked.
// Returns "" and false if the key doesn't exist.
func (c *Config) Get(key string) (string, bool) {
	key = strings.ToLower(key)
	switch key {
	case "format":
		return c.Format, true
	case "color":
		return c.Color, true
	case "icons":
		return strconv.FormatBool(c.Icons), true
	case "changelog_lines":
		return strconv.Itoa(c.ChangelogLines), true
	case "github_api_url":
		return c.GitHubAPIURL, true
	case "crates_io_url":
		return c.CratesIOURL, true
	}
	if secretKeys[key] {
		v, ok := c.Secret(key)
		if !ok {
			return "", true
		}
		return mask(v), true
	}
	return "", false
}

// Secret returns the raw value of a secret key.
func (c *Config) Secret(key string) (string, bool) {
	v, ok := c.Secrets[strings.ToLower(key)]
	return v, ok && v != ""
}

// Set updates a config value from a string.
// Returns an error if the key doesn't exist or the value is invalid.
func (c *Config) Set(key, value string) error {
	key = strings.ToLower(key)
	switch key {
	case "format":
		v := strings.ToLower(value)
		if v == "yml" {
			v = "yaml"
		}
		if v != "text" && v != "json" && v != "yaml" {
			return fmt.Errorf("invalid value for format: must be text, json or yaml")
		}
		c.Format = v
	case "color":
		v := strings.ToLower(value)
		if v != ColorAuto && v != ColorAlways && v != ColorNever {
			return fmt.Errorf("invalid value for color: must be auto, always or never")
		}
		c.Color = v
	case "icons":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for icons: must be true or false")
		}
		c.Icons = b
	case "changelog_lines":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid value for changelog_lines: must be a non-negative integer")
		}
		c.ChangelogLines = n
	case "github_api_url", "crates_io_url":
		if value != "" && !strings.HasPrefix(value, "https://") && !strings.HasPrefix(value, "http://") {
			return fmt.Errorf("invalid value for %s: must be an http(s) URL", key)
		}
		if key == "github_api_url" {
			c.GitHubAPIURL = value
		} else {
			c.CratesIOURL = value
		}
	default:
		if !secretKeys[key] {
			return fmt.Errorf("unknown config key: %s", key)
		}
		if c.Secrets == nil {
			c.Secrets = make(map[string]string)
		}
		if value == "" {
			delete(c.Secrets, key)
		} else {
			c.Secrets[key] = value
		}
	}
	return nil
}

// AvailableKeys returns all configurable keys with descriptions.
func AvailableKeys() map[string]string {
	return map[string]string{
		"format":          "Default output format (text/json/yaml)",
		"color":           "Colored text output (auto/always/never)",
		"icons":           "Emoji in text output (true/false)",
		"changelog_lines": "Changelog lines shown before '(and more...)'; 0 shows all",
		"github_api_url":  "GitHub API root, for GitHub Enterprise",
		"crates_io_url":   "crates.io registry root, for mirrors",
		"github_token":    "GitHub token (GITHUB_TOKEN takes precedence)",
		"gitea_token":     "Gitea token (GITEA_TOKEN takes precedence)",
	}
}

// Keys returns the configurable keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(AvailableKeys()))
	for k := range AvailableKeys() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + strings.Repeat("*", 8)
}
