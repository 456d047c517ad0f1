package config

import "time"

// Config represents the complete configuration for panetree.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" toml:"logging" json:"logging"`
	// Windows controls window lifecycle timing.
	Windows WindowsConfig `mapstructure:"windows" toml:"windows" json:"windows"`
	// Layout holds the default extent used when laying out a tree.
	Layout LayoutConfig `mapstructure:"layout" toml:"layout" json:"layout"`
	// Storage selects where named layouts are persisted.
	Storage StorageConfig `mapstructure:"storage" toml:"storage" json:"storage"`
	// Autosave controls debounced saving of the live tree.
	Autosave AutosaveConfig `mapstructure:"autosave" toml:"autosave" json:"autosave"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" toml:"level" json:"level" jsonschema:"enum=trace,enum=debug,enum=info,enum=warn,enum=error"`
	Format string `mapstructure:"format" toml:"format" json:"format" jsonschema:"enum=console,enum=json"`
}

// WindowsConfig holds window lifecycle settings.
type WindowsConfig struct {
	// DestroyDelayMs is how long a closing window lingers before it is destroyed.
	DestroyDelayMs int `mapstructure:"destroy_delay_ms" toml:"destroy_delay_ms" json:"destroy_delay_ms" jsonschema:"minimum=0"`
}

// DestroyDelay returns DestroyDelayMs as a duration.
func (w WindowsConfig) DestroyDelay() time.Duration {
	return time.Duration(w.DestroyDelayMs) * time.Millisecond
}

// LayoutConfig holds the default layout extent.
type LayoutConfig struct {
	DefaultWidth  float64 `mapstructure:"default_width" toml:"default_width" json:"default_width" jsonschema:"exclusiveMinimum=0"`
	DefaultHeight float64 `mapstructure:"default_height" toml:"default_height" json:"default_height" jsonschema:"exclusiveMinimum=0"`
}

// StorageBackend names a layout store implementation.
type StorageBackend string

const (
	StorageBackendSQLite StorageBackend = "sqlite"
	StorageBackendDisk   StorageBackend = "disk"
)

// StorageConfig selects the layout store.
type StorageConfig struct {
	Backend StorageBackend `mapstructure:"backend" toml:"backend" json:"backend" jsonschema:"enum=sqlite,enum=disk"`
	// Path is the sqlite file or the layouts directory. Empty means the XDG data dir.
	Path string `mapstructure:"path" toml:"path" json:"path"`
}

// AutosaveConfig controls the debounced autosave of the live tree.
type AutosaveConfig struct {
	Enabled    bool `mapstructure:"enabled" toml:"enabled" json:"enabled"`
	IntervalMs int  `mapstructure:"interval_ms" toml:"interval_ms" json:"interval_ms" jsonschema:"minimum=0"`
}

// Interval returns IntervalMs as a duration.
func (a AutosaveConfig) Interval() time.Duration {
	return time.Duration(a.IntervalMs) * time.Millisecond
}
