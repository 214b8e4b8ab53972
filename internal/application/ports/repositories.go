package ports

// ConfigurationRepository defines the interface for configuration persistence
type ConfigurationRepository interface {
	// Load retrieves the current configuration
	Load() (*Configuration, error)

	// Save persists the configuration
	Save(config *Configuration) error

	// LoadDefault returns the default configuration
	LoadDefault() *Configuration

	// LoadPersisted returns the defaults merged with the stored file only
	LoadPersisted() (*Configuration, error)

	// Validate validates the configuration
	Validate(config *Configuration) error

	// GetConfigPath returns the path to the configuration file
	GetConfigPath() string
}

// Configuration represents application configuration
type Configuration struct {
	StoreURL       string              `json:"store_url"`
	Author         string              `json:"author"`
	SettingsPath   string              `json:"settings_path"`
	PluginDirs     []string            `json:"plugin_dirs"`
	RequestTimeout int                 `json:"request_timeout"` // seconds
	RequestMethod  string              `json:"request_method"`
	TitleFilters   []string            `json:"title_filters,omitempty"`
	LogLevel       string              `json:"log_level"`
	Debug          bool                `json:"debug"`
	Plugins        []PluginDeclaration `json:"plugins"`
}

// PluginDeclaration is a plugin registered at startup
type PluginDeclaration struct {
	File      string         `json:"file"`
	OptionKey string         `json:"option_key,omitempty"`
	APIData   map[string]any `json:"api_data,omitempty"`
}

// SettingsStore reads host settings. Missing keys yield "".
type SettingsStore interface {
	GetSetting(key string) string
}

// WritableSettingsStore also persists settings
type WritableSettingsStore interface {
	SettingsStore
	SetSetting(key, value string) error
}

// LicenseKeyIndex records which setting holds the license for which plugin
type LicenseKeyIndex interface {
	Put(optionKey, pluginID string)
	Entries() map[string]string
}
