// Package config provides CLI commands for managing tourguide configuration.
package config

import (
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	appconfig "github.com/Iron-Ham/tourguide/internal/config"
	"github.com/Iron-Ham/tourguide/internal/tour"
	"github.com/Iron-Ham/tourguide/internal/tui/styles"
)

// Wrapper functions for exec to allow testing
var execLookPath = exec.LookPath
var execCommand = exec.Command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify tourguide configuration",
	Long: `View or modify tourguide configuration.

Without arguments, shows the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  tourguide config set tours.fallback_policy on_close
  tourguide config set tui.tooltip_width 60
  tourguide config set tours.disabled welcome,shortcuts

Valid keys:
  tours.dir              - Tour definition directory
  tours.watch            - Reload definitions when they change (true/false)
  tours.fallback_policy  - Where a fallback step leads: jump, on_close
  tours.exclusive        - Show one tour at a time (true/false)
  tours.disabled         - Comma-separated tour ids that never become eligible
  tui.theme              - Color theme (see 'tourguide config theme list')
  tui.tooltip_width      - Tooltip width in columns (24-120)
  tui.next_label         - Caption of the next button
  tui.prev_label         - Caption of the back button
  tui.start_label        - Caption of the final button
  logging.enabled        - Write a log file (true/false)
  logging.dir            - Log directory
  logging.level          - Minimum level: debug, info, warn, error
  logging.max_size_mb    - Rotate the log file past this size
  logging.max_backups    - Rotated log files to keep
  metrics.enabled        - Serve Prometheus metrics (true/false)
  metrics.listen         - Metrics address (host:port)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/tourguide/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in your editor",
	Long: `Open the config file in your preferred editor.

Uses $EDITOR environment variable, or falls back to common editors (vim, nano, vi).
If no config file exists, creates one with default values first.`,
	RunE: runConfigEdit,
}

var configResetCmd = &cobra.Command{
	Use:   "reset [key]",
	Short: "Reset configuration to defaults",
	Long: `Reset configuration values to their defaults.

Without arguments, resets all configuration to defaults.
With a key argument, resets only that specific key.

Examples:
  tourguide config reset                       # Reset all to defaults
  tourguide config reset tours.fallback_policy # Reset only the fallback policy`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigReset,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configResetCmd)
}

// Register adds all config-related commands to the given parent command.
func Register(parent *cobra.Command) {
	parent.AddCommand(configCmd)
}

// keyType describes how a value given on the command line is parsed.
type keyType int

const (
	typeString keyType = iota
	typeBool
	typeInt
	typeList
	typePolicy
	typeTheme
	typeLevel
)

// validKeys maps every settable key to its value type.
var validKeys = map[string]keyType{
	"tours.dir":             typeString,
	"tours.watch":           typeBool,
	"tours.fallback_policy": typePolicy,
	"tours.exclusive":       typeBool,
	"tours.disabled":        typeList,
	"tui.theme":             typeTheme,
	"tui.tooltip_width":     typeInt,
	"tui.next_label":        typeString,
	"tui.prev_label":        typeString,
	"tui.start_label":       typeString,
	"logging.enabled":       typeBool,
	"logging.dir":           typeString,
	"logging.level":         typeLevel,
	"logging.max_size_mb":   typeInt,
	"logging.max_backups":   typeInt,
	"metrics.enabled":       typeBool,
	"metrics.listen":        typeString,
}

// defaultValues returns the default of every settable key.
func defaultValues() map[string]any {
	d := appconfig.Default()
	return map[string]any{
		"tours.dir":             d.Tours.Dir,
		"tours.watch":           d.Tours.Watch,
		"tours.fallback_policy": d.Tours.FallbackPolicy,
		"tours.exclusive":       d.Tours.Exclusive,
		"tours.disabled":        d.Tours.Disabled,
		"tui.theme":             d.TUI.Theme,
		"tui.tooltip_width":     d.TUI.TooltipWidth,
		"tui.next_label":        d.TUI.NextLabel,
		"tui.prev_label":        d.TUI.PrevLabel,
		"tui.start_label":       d.TUI.StartLabel,
		"logging.enabled":       d.Logging.Enabled,
		"logging.dir":           d.Logging.Dir,
		"logging.level":         d.Logging.Level,
		"logging.max_size_mb":   d.Logging.MaxSizeMB,
		"logging.max_backups":   d.Logging.MaxBackups,
		"metrics.enabled":       d.Metrics.Enabled,
		"metrics.listen":        d.Metrics.Listen,
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out)

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Config file: (none - using defaults)\n")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "tours:")
	fmt.Fprintf(out, "  dir: %s\n", cfg.Tours.ResolveToursDir())
	fmt.Fprintf(out, "  watch: %v\n", cfg.Tours.Watch)
	fmt.Fprintf(out, "  fallback_policy: %s\n", cfg.Tours.FallbackPolicy)
	fmt.Fprintf(out, "  exclusive: %v\n", cfg.Tours.Exclusive)
	fmt.Fprintf(out, "  disabled: [%s]\n", strings.Join(cfg.Tours.Disabled, ", "))

	fmt.Fprintln(out, "tui:")
	fmt.Fprintf(out, "  theme: %s\n", cfg.TUI.Theme)
	fmt.Fprintf(out, "  tooltip_width: %d\n", cfg.TUI.TooltipWidth)
	fmt.Fprintf(out, "  next_label: %s\n", cfg.TUI.NextLabel)
	fmt.Fprintf(out, "  prev_label: %s\n", cfg.TUI.PrevLabel)
	fmt.Fprintf(out, "  start_label: %s\n", cfg.TUI.StartLabel)

	fmt.Fprintln(out, "logging:")
	fmt.Fprintf(out, "  enabled: %v\n", cfg.Logging.Enabled)
	fmt.Fprintf(out, "  dir: %s\n", cfg.Logging.ResolveLogDir())
	fmt.Fprintf(out, "  level: %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  max_size_mb: %d\n", cfg.Logging.MaxSizeMB)
	fmt.Fprintf(out, "  max_backups: %d\n", cfg.Logging.MaxBackups)

	fmt.Fprintln(out, "metrics:")
	fmt.Fprintf(out, "  enabled: %v\n", cfg.Metrics.Enabled)
	fmt.Fprintf(out, "  listen: %s\n", cfg.Metrics.Listen)

	return nil
}

// parseValue converts value to the type of key.
func parseValue(key, value string) (any, error) {
	kt, ok := validKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nRun 'tourguide config set --help' to see valid keys", key)
	}

	switch kt {
	case typePolicy:
		if _, err := tour.ParseFallbackPolicy(value); err != nil || value == "" {
			return nil, fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(tour.ValidFallbackPolicies(), ", "))
		}
		return value, nil
	case typeLevel:
		if !slices.Contains(appconfig.ValidLogLevels(), value) {
			return nil, fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(appconfig.ValidLogLevels(), ", "))
		}
		return value, nil
	case typeTheme:
		// Discover custom themes first
		_, _ = styles.DiscoverCustomThemes(themesDir())
		if !styles.IsValidTheme(value) {
			return nil, fmt.Errorf("invalid theme: %s\nValid options: %s",
				value, strings.Join(styles.ValidThemes(), ", "))
		}
		return value, nil
	case typeBool:
		if value != "true" && value != "false" {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return value == "true", nil
	case typeInt:
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if intVal < 0 {
			return nil, fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		return intVal, nil
	case typeList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	default:
		return value, nil
	}
}

// writeConfig validates the configuration viper now holds and writes it to
// the config file.
func writeConfig() (string, error) {
	if _, err := appconfig.Load(); err != nil {
		return "", err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(appconfig.ConfigDir(), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := appconfig.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return configFile, nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]

	typedValue, err := parseValue(key, args[1])
	if err != nil {
		return err
	}

	previous := viper.Get(key)
	viper.Set(key, typedValue)

	configFile, err := writeConfig()
	if err != nil {
		viper.Set(key, previous)
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", key, typedValue)
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}

// configTemplate is the commented config file written by init.
const configTemplate = `# tourguide configuration

# Tour definitions
tours:
  # Directory holding *.yaml tour definitions (default: ~/.config/tourguide/tours)
  dir: ""
  # Reload definitions when files in the directory change
  watch: true
  # Where a fallback step leads: jump (skip to the end) or on_close (only shown on close)
  fallback_policy: jump
  # Show at most one tour at a time; others wait in subscription order
  exclusive: true
  # Tour ids that never become eligible
  disabled: []

# TUI (terminal user interface) settings
tui:
  # Color theme: default, dracula, nord, solarized-dark, solarized-light,
  # or the name of a custom theme in ~/.config/tourguide/themes
  theme: default
  # Tooltip width in columns (24-120)
  tooltip_width: 52
  # Footer button captions
  next_label: Next
  prev_label: Back
  start_label: Get started

# Log file settings
logging:
  enabled: true
  # Directory holding tourguide.log (default: ~/.config/tourguide/logs)
  dir: ""
  # Minimum level: debug, info, warn, error
  level: info
  # Rotate the log file once it grows past this size
  max_size_mb: 10
  # Rotated log files to keep
  max_backups: 3

# Prometheus metrics endpoint
metrics:
  enabled: false
  listen: "127.0.0.1:9464"
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := appconfig.ConfigDir()
	configFile := appconfig.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'tourguide config set' to modify values", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configFile, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file at %s\n", configFile)
	fmt.Fprintln(out, "Edit this file to customize tourguide's behavior.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", appconfig.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", appconfig.ConfigFile())
	fmt.Fprintf(out, "  2. ./config.yaml (current directory)\n")
	fmt.Fprintln(out, "\nEnvironment variables: TOURGUIDE_* (e.g., TOURGUIDE_TOURS_FALLBACK_POLICY)")
	return nil
}

// findEditor returns $EDITOR, $VISUAL or the first common editor found.
func findEditor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	if editor := os.Getenv("VISUAL"); editor != "" {
		return editor
	}
	for _, e := range []string{"vim", "nano", "vi"} {
		if _, err := execLookPath(e); err == nil {
			return e
		}
	}
	return ""
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configFile := appconfig.ConfigFile()
	out := cmd.OutOrStdout()

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		fmt.Fprintf(out, "Config file doesn't exist, creating with defaults...\n")
		if err := runConfigInit(cmd, args); err != nil {
			return err
		}
	}

	editor := findEditor()
	if editor == "" {
		return fmt.Errorf("no editor found. Set $EDITOR environment variable")
	}

	editorCmd := execCommand(editor, configFile)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}

	fmt.Fprintf(out, "Config file saved: %s\n", configFile)
	return nil
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	defaults := defaultValues()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		for key, value := range defaults {
			viper.Set(key, value)
		}
		fmt.Fprintln(out, "Reset all configuration to defaults.")
	} else {
		key := args[0]
		value, ok := defaults[key]
		if !ok {
			return fmt.Errorf("unknown configuration key: %s\nRun 'tourguide config set --help' to see valid keys", key)
		}
		viper.Set(key, value)
		fmt.Fprintf(out, "Reset %s to default: %v\n", key, value)
	}

	configFile, err := writeConfig()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}
