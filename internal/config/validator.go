package config

import (
	"fmt"
	"net"
	"regexp"
	"slices"
	"strings"

	"github.com/Iron-Ham/tourguide/internal/tour"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "tui.tooltip_width")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// themeNameRegex validates theme names: built-in names and custom theme
// file names without extension.
var themeNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// Tooltip width bounds. These values must match tooltip.MinWidth and
// tooltip.MaxWidth.
const (
	minTooltipWidth = 24
	maxTooltipWidth = 120
)

// maxLabelLength bounds footer button captions.
const maxLabelLength = 24

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateTours()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateMetrics()...)

	return errors
}

// validateTours validates the ToursConfig
func (c *Config) validateTours() []ValidationError {
	var errors []ValidationError

	if c.Tours.FallbackPolicy != "" {
		if _, err := tour.ParseFallbackPolicy(c.Tours.FallbackPolicy); err != nil {
			errors = append(errors, ValidationError{
				Field:   "tours.fallback_policy",
				Value:   c.Tours.FallbackPolicy,
				Message: fmt.Sprintf("must be one of: %s", strings.Join(tour.ValidFallbackPolicies(), ", ")),
			})
		}
	}

	if strings.ContainsRune(c.Tours.Dir, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "tours.dir",
			Value:   c.Tours.Dir,
			Message: "path contains invalid null character",
		})
	}

	for i, id := range c.Tours.Disabled {
		if strings.TrimSpace(id) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("tours.disabled[%d]", i),
				Value:   id,
				Message: "tour id cannot be empty",
			})
		}
	}

	return errors
}

// validateTUI validates the TUIConfig
func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	if c.TUI.Theme != "" && !themeNameRegex.MatchString(c.TUI.Theme) {
		errors = append(errors, ValidationError{
			Field:   "tui.theme",
			Value:   c.TUI.Theme,
			Message: "must contain only letters, digits, hyphens and underscores",
		})
	}

	// 0 means use default
	if c.TUI.TooltipWidth != 0 {
		if c.TUI.TooltipWidth < minTooltipWidth {
			errors = append(errors, ValidationError{
				Field:   "tui.tooltip_width",
				Value:   c.TUI.TooltipWidth,
				Message: fmt.Sprintf("must be at least %d columns", minTooltipWidth),
			})
		}
		if c.TUI.TooltipWidth > maxTooltipWidth {
			errors = append(errors, ValidationError{
				Field:   "tui.tooltip_width",
				Value:   c.TUI.TooltipWidth,
				Message: fmt.Sprintf("exceeds maximum of %d columns", maxTooltipWidth),
			})
		}
	}

	labels := []struct{ field, value string }{
		{"tui.next_label", c.TUI.NextLabel},
		{"tui.prev_label", c.TUI.PrevLabel},
		{"tui.start_label", c.TUI.StartLabel},
	}
	for _, l := range labels {
		if len([]rune(l.value)) > maxLabelLength {
			errors = append(errors, ValidationError{
				Field:   l.field,
				Value:   l.value,
				Message: fmt.Sprintf("exceeds maximum of %d characters", maxLabelLength),
			})
		}
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Max size must be positive
	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	// Reasonable upper bound for log file size
	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	// Max backups must be non-negative
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateMetrics validates the MetricsConfig
func (c *Config) validateMetrics() []ValidationError {
	var errors []ValidationError

	if !c.Metrics.Enabled {
		return errors
	}

	if _, port, err := net.SplitHostPort(c.Metrics.Listen); err != nil || port == "" {
		errors = append(errors, ValidationError{
			Field:   "metrics.listen",
			Value:   c.Metrics.Listen,
			Message: "must be a host:port address",
		})
	}

	return errors
}
