package config

// Default configuration constants
const (
	defaultLogLevel  = "info"
	defaultLogFormat = "console"

	defaultDestroyDelayMs = 1000

	defaultLayoutWidth  = 1920
	defaultLayoutHeight = 1080

	defaultAutosaveIntervalMs = 5000
)

// DefaultConfig returns the default configuration values for panetree.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Windows: WindowsConfig{
			DestroyDelayMs: defaultDestroyDelayMs,
		},
		Layout: LayoutConfig{
			DefaultWidth:  defaultLayoutWidth,
			DefaultHeight: defaultLayoutHeight,
		},
		Storage: StorageConfig{
			Backend: StorageBackendSQLite,
		},
		Autosave: AutosaveConfig{
			Enabled:    true,
			IntervalMs: defaultAutosaveIntervalMs,
		},
	}
}

// setDefaults registers every default with viper so env overrides resolve
// even when the config file omits a key.
func (m *Manager) setDefaults() {
	defaults := DefaultConfig()

	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)

	m.viper.SetDefault("windows.destroy_delay_ms", defaults.Windows.DestroyDelayMs)

	m.viper.SetDefault("layout.default_width", defaults.Layout.DefaultWidth)
	m.viper.SetDefault("layout.default_height", defaults.Layout.DefaultHeight)

	m.viper.SetDefault("storage.backend", string(defaults.Storage.Backend))
	m.viper.SetDefault("storage.path", defaults.Storage.Path)

	m.viper.SetDefault("autosave.enabled", defaults.Autosave.Enabled)
	m.viper.SetDefault("autosave.interval_ms", defaults.Autosave.IntervalMs)
}
