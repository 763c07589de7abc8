package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete tourguide configuration
type Config struct {
	Tours   ToursConfig   `mapstructure:"tours"`
	TUI     TUIConfig     `mapstructure:"tui"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ToursConfig controls where tours come from and how they run
type ToursConfig struct {
	// Dir is the tour definition directory.
	// If empty, defaults to "tours" inside the config directory.
	// Supports ~ for home directory expansion.
	Dir string `mapstructure:"dir"`
	// Watch reloads definitions when files in Dir change (default: true)
	Watch bool `mapstructure:"watch"`
	// FallbackPolicy selects how fallback steps are reached: "jump" or "on_close"
	FallbackPolicy string `mapstructure:"fallback_policy"`
	// Exclusive shows at most one tour at a time; others wait their turn (default: true)
	Exclusive bool `mapstructure:"exclusive"`
	// Disabled lists tour ids that never run
	Disabled []string `mapstructure:"disabled"`
}

// TUIConfig controls the terminal tour player
type TUIConfig struct {
	// Theme is the color theme: a built-in name or a custom theme file name
	Theme string `mapstructure:"theme"`
	// TooltipWidth is the tooltip width in columns (default: 52, min: 24, max: 120)
	TooltipWidth int `mapstructure:"tooltip_width"`
	// NextLabel, PrevLabel and StartLabel caption the tooltip footer buttons
	NextLabel  string `mapstructure:"next_label"`
	PrevLabel  string `mapstructure:"prev_label"`
	StartLabel string `mapstructure:"start_label"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Dir is the log directory. If empty, defaults to "logs" inside the config directory.
	Dir string `mapstructure:"dir"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	// Enabled serves /metrics while tours play (default: false)
	Enabled bool `mapstructure:"enabled"`
	// Listen is the address of the metrics endpoint
	Listen string `mapstructure:"listen"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Tours: ToursConfig{
			Watch:          true,
			FallbackPolicy: "jump",
			Exclusive:      true,
			Disabled:       []string{},
		},
		TUI: TUIConfig{
			Theme:        "default",
			TooltipWidth: 52,
			NextLabel:    "Next",
			PrevLabel:    "Back",
			StartLabel:   "Get started",
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  "127.0.0.1:9464",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Tours defaults
	viper.SetDefault("tours.dir", defaults.Tours.Dir)
	viper.SetDefault("tours.watch", defaults.Tours.Watch)
	viper.SetDefault("tours.fallback_policy", defaults.Tours.FallbackPolicy)
	viper.SetDefault("tours.exclusive", defaults.Tours.Exclusive)
	viper.SetDefault("tours.disabled", defaults.Tours.Disabled)

	// TUI defaults
	viper.SetDefault("tui.theme", defaults.TUI.Theme)
	viper.SetDefault("tui.tooltip_width", defaults.TUI.TooltipWidth)
	viper.SetDefault("tui.next_label", defaults.TUI.NextLabel)
	viper.SetDefault("tui.prev_label", defaults.TUI.PrevLabel)
	viper.SetDefault("tui.start_label", defaults.TUI.StartLabel)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
	viper.SetDefault("metrics.listen", defaults.Metrics.Listen)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ResolveToursDir returns the tour definition directory.
// If Dir is empty, it returns ToursDir().
func (t *ToursConfig) ResolveToursDir() string {
	if t.Dir == "" {
		return ToursDir()
	}
	return expandHome(t.Dir)
}

// ResolveLogDir returns the log directory.
// If Dir is empty, it returns LogDir().
func (l *LoggingConfig) ResolveLogDir() string {
	if l.Dir == "" {
		return LogDir()
	}
	return expandHome(l.Dir)
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tourguide")
	}
	// Fall back to ~/.config/tourguide
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tourguide"
	}
	return filepath.Join(home, ".config", "tourguide")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ToursDir returns the default tour definition directory
func ToursDir() string {
	return filepath.Join(ConfigDir(), "tours")
}

// ThemesDir returns the custom themes directory
func ThemesDir() string {
	return filepath.Join(ConfigDir(), "themes")
}

// LogDir returns the default log directory
func LogDir() string {
	return filepath.Join(ConfigDir(), "logs")
}
