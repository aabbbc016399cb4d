package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/ratch/internal/errors"
)

// Config represents the complete ratch configuration
type Config struct {
	Watch   WatchConfig   `mapstructure:"watch" yaml:"watch"`
	TUI     TUIConfig     `mapstructure:"tui" yaml:"tui"`
	Search  SearchConfig  `mapstructure:"search" yaml:"search"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// WatchConfig controls how the watched command is scheduled and run
type WatchConfig struct {
	// Interval is the number of seconds between runs (default: 2.0)
	Interval float64 `mapstructure:"interval" yaml:"interval"`
	// Constrain clamps the scroll cursor to the buffer (default: true)
	Constrain bool `mapstructure:"constrain" yaml:"constrain"`
	// MaxInFlight caps concurrently running commands; 0 = unlimited (default: 4)
	MaxInFlight int `mapstructure:"max_in_flight" yaml:"max_in_flight"`
	// CancelSuperseded kills runs older than the last admitted one (default: true)
	CancelSuperseded bool `mapstructure:"cancel_superseded" yaml:"cancel_superseded"`
	// TimeoutSeconds kills a run after this many seconds; 0 = never (default: 0)
	TimeoutSeconds float64 `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	// PTY runs the command under a pseudo-terminal (default: false)
	PTY bool `mapstructure:"pty" yaml:"pty"`
	// Shell, when set, runs `<shell> -c "<command>"` instead of exec'ing the command
	Shell string `mapstructure:"shell" yaml:"shell"`
}

// TUIConfig controls the terminal front end
type TUIConfig struct {
	// Backend selects the terminal backend: "bubbletea" or "raw" (default: "bubbletea")
	Backend string `mapstructure:"backend" yaml:"backend"`
	// QuantumMs is the main loop tick in milliseconds (default: 8)
	QuantumMs int `mapstructure:"quantum_ms" yaml:"quantum_ms"`
	// AltScreen draws on the alternate screen buffer (default: true)
	AltScreen bool `mapstructure:"alt_screen" yaml:"alt_screen"`
	// Prompt is the status line glyph shown outside search mode (default: ":")
	Prompt string `mapstructure:"prompt" yaml:"prompt"`
	// Theme is the color theme name (default: "default")
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// SearchConfig controls search pattern compilation
type SearchConfig struct {
	// IgnoreCase compiles search patterns case-insensitively (default: false)
	IgnoreCase bool `mapstructure:"ignore_case" yaml:"ignore_case"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled writes a JSON log file (default: false)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the log directory; empty means <config dir>/logs
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated log files (default: false)
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// Backend names
const (
	BackendBubbletea = "bubbletea"
	BackendRaw       = "raw"
)

// DefaultInterval is the interval used when none is given, in seconds.
const DefaultInterval = 2.0

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Watch: WatchConfig{
			Interval:         DefaultInterval,
			Constrain:        true,
			MaxInFlight:      4,
			CancelSuperseded: true,
			TimeoutSeconds:   0, // Hung commands are left running
			PTY:              false,
			Shell:            "",
		},
		TUI: TUIConfig{
			Backend:   BackendBubbletea,
			QuantumMs: 8,
			AltScreen: true,
			Prompt:    ":",
			Theme:     "default",
		},
		Search: SearchConfig{
			IgnoreCase: false,
		},
		Logging: LoggingConfig{
			Enabled:    false,
			Level:      "info",
			Dir:        "",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
	}
}

// IntervalDuration returns the interval as a time.Duration
func (c *WatchConfig) IntervalDuration() time.Duration {
	return secondsToDuration(c.Interval)
}

// Timeout returns the per-run timeout as a time.Duration (0 means disabled)
func (c *WatchConfig) Timeout() time.Duration {
	return secondsToDuration(c.TimeoutSeconds)
}

// Quantum returns the main loop tick as a time.Duration
func (c *TUIConfig) Quantum() time.Duration {
	return time.Duration(c.QuantumMs) * time.Millisecond
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// ParseInterval parses a user-supplied interval in seconds.
// It rejects values that are not finite positive numbers.
func ParseInterval(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, errors.NewArgumentError("interval", value, errors.ErrInvalidInterval).
			WithMessage(fmt.Sprintf("could not take `%s` as a float value", value))
	}
	if parsed <= 0 || math.IsInf(parsed, 0) || math.IsNaN(parsed) {
		return 0, errors.NewArgumentError("interval", value, errors.ErrInvalidInterval).
			WithMessage("interval must be a positive number of seconds")
	}
	return parsed, nil
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("watch.interval", defaults.Watch.Interval)
	viper.SetDefault("watch.constrain", defaults.Watch.Constrain)
	viper.SetDefault("watch.max_in_flight", defaults.Watch.MaxInFlight)
	viper.SetDefault("watch.cancel_superseded", defaults.Watch.CancelSuperseded)
	viper.SetDefault("watch.timeout_seconds", defaults.Watch.TimeoutSeconds)
	viper.SetDefault("watch.pty", defaults.Watch.PTY)
	viper.SetDefault("watch.shell", defaults.Watch.Shell)

	viper.SetDefault("tui.backend", defaults.TUI.Backend)
	viper.SetDefault("tui.quantum_ms", defaults.TUI.QuantumMs)
	viper.SetDefault("tui.alt_screen", defaults.TUI.AltScreen)
	viper.SetDefault("tui.prompt", defaults.TUI.Prompt)
	viper.SetDefault("tui.theme", defaults.TUI.Theme)

	viper.SetDefault("search.ignore_case", defaults.Search.IgnoreCase)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// WatchChanges reloads the config whenever the config file in use changes and
// passes the result to onChange. Invalid edits are reported to onError and
// otherwise ignored. onChange and onError run on viper's watcher goroutine.
// Returns false when no config file is in use.
func WatchChanges(onChange func(*Config), onError func(error)) bool {
	if viper.ConfigFileUsed() == "" {
		return false
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Load()
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	viper.WatchConfig()
	return true
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ratch")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ratch"
	}
	return filepath.Join(home, ".config", "ratch")
}

// ConfigFile returns the path to the default config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LogDir returns the configured log directory, defaulting to <config dir>/logs.
// A leading ~ is expanded to the home directory.
func (c *LoggingConfig) LogDir() string {
	dir := c.Dir
	if dir == "" {
		return filepath.Join(ConfigDir(), "logs")
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, strings.TrimPrefix(dir[1:], "/"))
		}
	}
	return dir
}

// ValidBackends returns the list of valid terminal backends
func ValidBackends() []string {
	return []string{BackendBubbletea, BackendRaw}
}
