package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// validateConfig performs comprehensive validation of configuration values
func validateConfig(config *Config) error {
	var validationErrors []string

	validationErrors = append(validationErrors, validateLogging(config)...)
	validationErrors = append(validationErrors, validateWindows(config)...)
	validationErrors = append(validationErrors, validateLayout(config)...)
	validationErrors = append(validationErrors, validateStorage(config)...)
	validationErrors = append(validationErrors, validateAutosave(config)...)

	if len(validationErrors) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}

	return nil
}

func validateLogging(config *Config) []string {
	var validationErrors []string
	if _, err := zerolog.ParseLevel(strings.ToLower(config.Logging.Level)); err != nil || config.Logging.Level == "" {
		validationErrors = append(validationErrors,
			fmt.Sprintf("logging.level must be one of trace, debug, info, warn, error (got %q)", config.Logging.Level))
	}
	switch config.Logging.Format {
	case "console", "json":
	default:
		validationErrors = append(validationErrors,
			fmt.Sprintf("logging.format must be console or json (got %q)", config.Logging.Format))
	}
	return validationErrors
}

func validateWindows(config *Config) []string {
	if config.Windows.DestroyDelayMs < 0 {
		return []string{"windows.destroy_delay_ms must be non-negative"}
	}
	return nil
}

func validateLayout(config *Config) []string {
	var validationErrors []string
	if config.Layout.DefaultWidth <= 0 {
		validationErrors = append(validationErrors, "layout.default_width must be positive")
	}
	if config.Layout.DefaultHeight <= 0 {
		validationErrors = append(validationErrors, "layout.default_height must be positive")
	}
	return validationErrors
}

func validateStorage(config *Config) []string {
	switch config.Storage.Backend {
	case StorageBackendSQLite, StorageBackendDisk:
		return nil
	default:
		return []string{fmt.Sprintf("storage.backend must be sqlite or disk (got %q)", config.Storage.Backend)}
	}
}

func validateAutosave(config *Config) []string {
	if config.Autosave.IntervalMs < 0 {
		return []string{"autosave.interval_ms must be non-negative"}
	}
	return nil
}
