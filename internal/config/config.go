// Package config reads the environment knobs of the updatecheck CLI.
// The library packages never read the environment; cmd/updatecheck does,
// through this package, and passes explicit options down.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tsukumogami/updatecheck/internal/log"
)

const (
	// EnvHome overrides the default updatecheck home directory
	EnvHome = "UPDATECHECK_HOME"

	// EnvAPITimeout configures the per-request timeout
	EnvAPITimeout = "UPDATECHECK_API_TIMEOUT"

	// EnvMaxConcurrency bounds the number of requests the batch command runs at once
	EnvMaxConcurrency = "UPDATECHECK_MAX_CONCURRENCY"

	// EnvGitHubToken authenticates GitHub API requests
	EnvGitHubToken = "GITHUB_TOKEN"

	// EnvGiteaToken authenticates Gitea API requests
	EnvGiteaToken = "GITEA_TOKEN"

	// DefaultAPITimeout is the default timeout for API requests (30 seconds)
	DefaultAPITimeout = 30 * time.Second

	// DefaultMaxConcurrency is the default batch parallelism
	DefaultMaxConcurrency = 4

	minAPITimeout     = 1 * time.Second
	maxAPITimeout     = 10 * time.Minute
	maxMaxConcurrency = 32
)

// GetAPITimeout returns UPDATECHECK_API_TIMEOUT as a duration ("30s", "1m",
// "2m30s"), clamped to 1s..10m. Unset or invalid values yield
// DefaultAPITimeout.
func GetAPITimeout() time.Duration {
	envValue := os.Getenv(EnvAPITimeout)
	if envValue == "" {
		return DefaultAPITimeout
	}

	duration, err := time.ParseDuration(envValue)
	if err != nil {
		log.Default().Warn("invalid duration, using default",
			"variable", EnvAPITimeout, "value", envValue, "default", DefaultAPITimeout)
		return DefaultAPITimeout
	}

	if duration < minAPITimeout {
		log.Default().Warn("timeout too low, using minimum", "variable", EnvAPITimeout, "value", duration)
		return minAPITimeout
	}
	if duration > maxAPITimeout {
		log.Default().Warn("timeout too high, using maximum", "variable", EnvAPITimeout, "value", duration)
		return maxAPITimeout
	}
	return duration
}

// GetMaxConcurrency returns UPDATECHECK_MAX_CONCURRENCY clamped to 1..32,
// or DefaultMaxConcurrency when unset or invalid.
func GetMaxConcurrency() int {
	envValue := strings.TrimSpace(os.Getenv(EnvMaxConcurrency))
	if envValue == "" {
		return DefaultMaxConcurrency
	}

	n, err := strconv.Atoi(envValue)
	if err != nil || n < 1 {
		log.Default().Warn("invalid concurrency, using default",
			"variable", EnvMaxConcurrency, "value", envValue, "default", DefaultMaxConcurrency)
		return DefaultMaxConcurrency
	}
	if n > maxMaxConcurrency {
		return maxMaxConcurrency
	}
	return n
}

// GetGitHubToken returns GITHUB_TOKEN, or "".
func GetGitHubToken() string {
	return strings.TrimSpace(os.Getenv(EnvGitHubToken))
}

// GetGiteaToken returns GITEA_TOKEN, or "".
func GetGiteaToken() string {
	return strings.TrimSpace(os.Getenv(EnvGiteaToken))
}

// DefaultHomeOverride can be set by the main package (via ldflags) to change
// the default home directory. UPDATECHECK_HOME still takes precedence.
var DefaultHomeOverride string

// Config holds filesystem locations.
type Config struct {
	HomeDir    string // $UPDATECHECK_HOME
	ConfigFile string // $UPDATECHECK_HOME/config.toml
}

// DefaultConfig resolves the home directory from UPDATECHECK_HOME,
// DefaultHomeOverride, or ~/.updatecheck, in that order.
func DefaultConfig() (*Config, error) {
	home := os.Getenv(EnvHome)
	if home == "" {
		if DefaultHomeOverride != "" {
			home = DefaultHomeOverride
		} else {
			userHome, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get user home directory: %w", err)
			}
			home = filepath.Join(userHome, ".updatecheck")
		}
	}

	return &Config{
		HomeDir:    home,
		ConfigFile: filepath.Join(home, "config.toml"),
	}, nil
}

// EnsureHome creates the home directory if needed.
func (c *Config) EnsureHome() error {
	if err := os.MkdirAll(c.HomeDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", c.HomeDir, err)
	}
	return nil
}
