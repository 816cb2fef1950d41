// Package config loads and merges the repowatch configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spiffcs/repowatch/internal/constants"
	"github.com/spiffcs/repowatch/internal/duration"
)

// ErrInvalid marks fatal configuration errors. A run aborts on these
// before anything is fetched or evaluated.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the application configuration
type Config struct {
	Repos         []string `yaml:"repos,omitempty"`
	DefaultFormat string   `yaml:"default_format,omitempty"`
	StorePath     string   `yaml:"store_path,omitempty"`

	// Top-level config sections
	Thresholds *ThresholdOverrides `yaml:"thresholds,omitempty"`
	Watch      *WatchOverrides     `yaml:"watch,omitempty"`
}

// ThresholdOverrides allows customizing alert thresholds.
// Unset fields keep their defaults.
type ThresholdOverrides struct {
	OpenIssues   *int `yaml:"open_issues,omitempty"`
	OpenPRs      *int `yaml:"open_prs,omitempty"`
	StalePRDays  *int `yaml:"stale_pr_days,omitempty"`
	InactiveDays *int `yaml:"inactive_days,omitempty"`
}

// WatchOverrides - watch dashboard settings
type WatchOverrides struct {
	Interval *string `yaml:"interval,omitempty"`
}

// Thresholds is the resolved, immutable set of alert thresholds handed to
// the evaluator. Counts alert when strictly above a threshold; day values
// alert when an age or gap in whole days is strictly above.
type Thresholds struct {
	OpenIssues   int
	OpenPRs      int
	StalePRDays  int
	InactiveDays int
}

// DefaultThresholds returns the default alert thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		OpenIssues:   80,
		OpenPRs:      20,
		StalePRDays:  7,
		InactiveDays: 3,
	}
}

// Validate checks that every threshold is a positive integer.
func (t Thresholds) Validate() error {
	fields := []struct {
		name  string
		value int
	}{
		{"open_issues", t.OpenIssues},
		{"open_prs", t.OpenPRs},
		{"stale_pr_days", t.StalePRDays},
		{"inactive_days", t.InactiveDays},
	}
	for _, f := range fields {
		if f.value <= 0 {
			return fmt.Errorf("%w: threshold %s must be positive, got %d", ErrInvalid, f.name, f.value)
		}
	}
	return nil
}

// GetThresholds returns thresholds with user overrides merged with defaults
func (c *Config) GetThresholds() Thresholds {
	t := DefaultThresholds()

	if c.Thresholds != nil {
		o := c.Thresholds
		if o.OpenIssues != nil {
			t.OpenIssues = *o.OpenIssues
		}
		if o.OpenPRs != nil {
			t.OpenPRs = *o.OpenPRs
		}
		if o.StalePRDays != nil {
			t.StalePRDays = *o.StalePRDays
		}
		if o.InactiveDays != nil {
			t.InactiveDays = *o.InactiveDays
		}
	}

	return t
}

// GetWatchInterval returns the refresh interval for the watch dashboard.
func (c *Config) GetWatchInterval() (time.Duration, error) {
	if c.Watch == nil || c.Watch.Interval == nil {
		return constants.WatchRefreshInterval, nil
	}
	d, err := duration.Parse(*c.Watch.Interval)
	if err != nil {
		return 0, fmt.Errorf("%w: watch interval: %w", ErrInvalid, err)
	}
	return d, nil
}

// ValidRepo reports whether s is an owner/name repository slug.
func ValidRepo(s string) bool {
	owner, name, ok := strings.Cut(s, "/")
	return ok && owner != "" && name != "" && !strings.Contains(name, "/")
}

// Validate checks the whole configuration. Any failure is fatal.
func (c *Config) Validate() error {
	for _, r := range c.Repos {
		if !ValidRepo(r) {
			return fmt.Errorf("%w: repo %q is not in owner/name form", ErrInvalid, r)
		}
	}

	switch c.DefaultFormat {
	case "", "table", "json", "markdown":
	default:
		return fmt.Errorf("%w: unknown default_format %q", ErrInvalid, c.DefaultFormat)
	}

	if err := c.GetThresholds().Validate(); err != nil {
		return err
	}
	if _, err := c.GetWatchInterval(); err != nil {
		return err
	}
	return nil
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".repowatch"
	}
	return filepath.Join(configDir, "repowatch")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".repowatch.yaml"
}

// ConfigFileExists returns true if the config file exists on disk
func ConfigFileExists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// DefaultStorePath returns the default snapshot database location.
func DefaultStorePath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return ".repowatch.db"
	}
	return filepath.Join(cacheDir, "repowatch", "repowatch.db")
}

// GetStorePath returns the snapshot database path, honoring the
// store_path override and expanding a leading ~.
func (c *Config) GetStorePath() string {
	if c.StorePath == "" {
		return DefaultStorePath()
	}
	return expandHome(c.StorePath)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// Load loads the configuration from disk.
// It first loads the global config from the XDG config directory, then
// merges any local .repowatch.yaml on top (local values take precedence).
func Load() (*Config, error) {
	// Start with defaults
	cfg := &Config{
		DefaultFormat: "table",
	}

	// Load global config if it exists
	globalPath := ConfigPath()
	if _, err := os.Stat(globalPath); err == nil {
		data, err := os.ReadFile(globalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read global config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse global config file: %w", err)
		}
	}

	// Load local config if it exists and merge on top
	localPath := LocalConfigPath()
	if _, err := os.Stat(localPath); err == nil {
		data, err := os.ReadFile(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read local config file: %w", err)
		}

		var localCfg Config
		if err := yaml.Unmarshal(data, &localCfg); err != nil {
			return nil, fmt.Errorf("failed to parse local config file: %w", err)
		}

		cfg = mergeConfig(cfg, &localCfg)
	}

	// Set defaults if still empty
	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = "table"
	}

	return cfg, nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := &Config{}

	// Merge simple fields (local wins if set)
	if local.DefaultFormat != "" {
		result.DefaultFormat = local.DefaultFormat
	} else {
		result.DefaultFormat = global.DefaultFormat
	}

	if local.StorePath != "" {
		result.StorePath = local.StorePath
	} else {
		result.StorePath = global.StorePath
	}

	// Merge arrays (local replaces if non-empty)
	if len(local.Repos) > 0 {
		result.Repos = local.Repos
	} else {
		result.Repos = global.Repos
	}

	result.Thresholds = mergeThresholds(global.Thresholds, local.Thresholds)
	result.Watch = mergeWatch(global.Watch, local.Watch)

	return result
}

func mergeThresholds(global, local *ThresholdOverrides) *ThresholdOverrides {
	if global == nil && local == nil {
		return nil
	}
	result := &ThresholdOverrides{}

	if global != nil {
		result.OpenIssues = global.OpenIssues
		result.OpenPRs = global.OpenPRs
		result.StalePRDays = global.StalePRDays
		result.InactiveDays = global.InactiveDays
	}

	if local != nil {
		if local.OpenIssues != nil {
			result.OpenIssues = local.OpenIssues
		}
		if local.OpenPRs != nil {
			result.OpenPRs = local.OpenPRs
		}
		if local.StalePRDays != nil {
			result.StalePRDays = local.StalePRDays
		}
		if local.InactiveDays != nil {
			result.InactiveDays = local.InactiveDays
		}
	}

	// Return nil if all fields are nil
	if result.OpenIssues == nil && result.OpenPRs == nil &&
		result.StalePRDays == nil && result.InactiveDays == nil {
		return nil
	}

	return result
}

func mergeWatch(global, local *WatchOverrides) *WatchOverrides {
	if global == nil && local == nil {
		return nil
	}
	result := &WatchOverrides{}

	if global != nil {
		result.Interval = global.Interval
	}
	if local != nil && local.Interval != nil {
		result.Interval = local.Interval
	}

	if result.Interval == nil {
		return nil
	}

	return result
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	configDir := DefaultConfigDir()

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := ConfigPath()
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SetDefaultFormat updates the default output format and persists the
// global config file.
func (c *Config) SetDefaultFormat(format string) error {
	c.DefaultFormat = format
	return c.Save()
}

// GetGitHubToken returns the GitHub token from the GITHUB_TOKEN environment
// variable. Following 12-factor app best practices, tokens are only read
// from the environment.
func (c *Config) GetGitHubToken() string {
	return os.Getenv("GITHUB_TOKEN")
}

// GetTelegramBotToken returns the Telegram bot token from the
// TELEGRAM_BOT_TOKEN environment variable.
func GetTelegramBotToken() string {
	return os.Getenv("TELEGRAM_BOT_TOKEN")
}

// GetTelegramChatID returns the Telegram chat ID from the
// TELEGRAM_CHAT_ID environment variable.
func GetTelegramChatID() string {
	return os.Getenv("TELEGRAM_CHAT_ID")
}

// DefaultConfig returns a fully populated config with all default values.
// This is useful for generating a complete config file template.
func DefaultConfig() *Config {
	t := DefaultThresholds()
	interval := "15m"

	return &Config{
		Repos:         []string{},
		DefaultFormat: "table",
		Thresholds: &ThresholdOverrides{
			OpenIssues:   &t.OpenIssues,
			OpenPRs:      &t.OpenPRs,
			StalePRDays:  &t.StalePRDays,
			InactiveDays: &t.InactiveDays,
		},
		Watch: &WatchOverrides{
			Interval: &interval,
		},
	}
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	// Get absolute path for local config
	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# repowatch configuration file
# See: repowatch config defaults  (for all available options)

# Repositories to monitor
repos:
  - microsoft/fabric-samples

# Output format: table, json or markdown
default_format: table

# Alert thresholds (optional)
# thresholds:
#   open_issues: 80
#   open_prs: 20
#   stale_pr_days: 7
#   inactive_days: 3

# Watch dashboard refresh (optional)
# watch:
#   interval: 15m

# Tokens are read from the environment only:
#   GITHUB_TOKEN          GitHub API token (optional, raises rate limits)
#   TELEGRAM_BOT_TOKEN    Telegram bot token (required to send alerts)
#   TELEGRAM_CHAT_ID      Telegram chat to alert (required to send alerts)
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
