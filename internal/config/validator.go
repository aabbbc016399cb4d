package config

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/Iron-Ham/ratch/internal/tui/styles"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "watch.interval")
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

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateWatch()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateWatch() []ValidationError {
	var errors []ValidationError

	if c.Watch.Interval <= 0 || math.IsNaN(c.Watch.Interval) || math.IsInf(c.Watch.Interval, 0) {
		errors = append(errors, ValidationError{
			Field:   "watch.interval",
			Value:   c.Watch.Interval,
			Message: "must be a positive number of seconds",
		})
	}

	if c.Watch.MaxInFlight < 0 {
		errors = append(errors, ValidationError{
			Field:   "watch.max_in_flight",
			Value:   c.Watch.MaxInFlight,
			Message: "must be non-negative (0 = unlimited)",
		})
	}

	if c.Watch.TimeoutSeconds < 0 || math.IsNaN(c.Watch.TimeoutSeconds) {
		errors = append(errors, ValidationError{
			Field:   "watch.timeout_seconds",
			Value:   c.Watch.TimeoutSeconds,
			Message: "must be non-negative (0 = no timeout)",
		})
	}

	if strings.ContainsRune(c.Watch.Shell, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "watch.shell",
			Value:   c.Watch.Shell,
			Message: "contains invalid null character",
		})
	}

	return errors
}

func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidBackends(), c.TUI.Backend) {
		errors = append(errors, ValidationError{
			Field:   "tui.backend",
			Value:   c.TUI.Backend,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidBackends(), ", ")),
		})
	}

	// Below 1ms the loop busy-spins; above 100ms typing feels laggy.
	const minQuantum, maxQuantum = 1, 100
	if c.TUI.QuantumMs < minQuantum || c.TUI.QuantumMs > maxQuantum {
		errors = append(errors, ValidationError{
			Field:   "tui.quantum_ms",
			Value:   c.TUI.QuantumMs,
			Message: fmt.Sprintf("must be between %d and %d", minQuantum, maxQuantum),
		})
	}

	if strings.ContainsAny(c.TUI.Prompt, "\n\r") {
		errors = append(errors, ValidationError{
			Field:   "tui.prompt",
			Value:   c.TUI.Prompt,
			Message: "must be a single line",
		})
	}

	if c.TUI.Theme != "" && !styles.IsValidTheme(c.TUI.Theme) {
		errors = append(errors, ValidationError{
			Field:   "tui.theme",
			Value:   c.TUI.Theme,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(styles.BuiltinThemes(), ", ")),
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("must be between 0 and %d (0 = no rotation)", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
