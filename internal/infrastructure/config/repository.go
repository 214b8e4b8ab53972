package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"apppresser.com/updater/internal/application/ports"
	"apppresser.com/updater/internal/core/domain"
)

// CompositeConfigRepository implements the ConfigurationRepository interface
type CompositeConfigRepository struct {
	sources    []ConfigSource
	configPath string
	validator  *ConfigValidator

	cached *ports.Configuration
	mutex  sync.Mutex
}

// ConfigSource defines the interface for configuration sources
type ConfigSource interface {
	Load() (*ports.Configuration, error)
	Priority() int
	Name() string
}

// NewCompositeConfigRepository creates a repository reading configPath and
// the environment. An empty configPath falls back to APPP_CONFIG_FILE and
// then $HOME/.appp/config.json.
func NewCompositeConfigRepository(configPath string) *CompositeConfigRepository {
	if configPath == "" {
		configPath = os.Getenv("APPP_CONFIG_FILE")
	}
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	repo := &CompositeConfigRepository{
		sources:    make([]ConfigSource, 0, 2),
		configPath: configPath,
		validator:  NewConfigValidator(),
	}

	// Add default sources in priority order
	repo.AddSource(NewEnvironmentConfigSource())
	repo.AddSource(NewFileConfigSource(repo.configPath))

	return repo
}

// AddSource adds a configuration source
func (r *CompositeConfigRepository) AddSource(source ConfigSource) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.sources = append(r.sources, source)
	r.cached = nil
}

// Load retrieves the current configuration
func (r *CompositeConfigRepository) Load() (*ports.Configuration, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.cached != nil {
		return cloneConfiguration(r.cached), nil
	}

	config := r.LoadDefault()

	// Lower priority number wins, so apply from the highest number down
	sorted := make([]ConfigSource, len(r.sources))
	copy(sorted, r.sources)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})

	for _, source := range sorted {
		sourceConfig, err := source.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load %s configuration: %w", source.Name(), err)
		}
		config = mergeConfigurations(config, sourceConfig)
	}

	if err := r.Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	r.cached = config
	return cloneConfiguration(config), nil
}

// LoadPersisted returns the defaults merged with the config file only, so
// that saving it back does not capture environment overrides.
func (r *CompositeConfigRepository) LoadPersisted() (*ports.Configuration, error) {
	fileConfig, err := NewFileConfigSource(r.configPath).Load()
	if err != nil {
		return nil, err
	}
	return mergeConfigurations(r.LoadDefault(), fileConfig), nil
}

// Save persists the configuration
func (r *CompositeConfigRepository) Save(config *ports.Configuration) error {
	if err := r.Validate(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	if err := os.WriteFile(r.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	r.mutex.Lock()
	r.cached = nil
	r.mutex.Unlock()

	return nil
}

// LoadDefault returns the default configuration
func (r *CompositeConfigRepository) LoadDefault() *ports.Configuration {
	return &ports.Configuration{
		StoreURL:       domain.DefaultStoreURL,
		Author:         domain.DefaultAuthor,
		SettingsPath:   filepath.Join(filepath.Dir(r.configPath), "settings.json"),
		PluginDirs:     []string{},
		RequestTimeout: 15,
		RequestMethod:  "POST",
		LogLevel:       "info",
		Plugins:        []ports.PluginDeclaration{},
	}
}

// Validate validates the configuration
func (r *CompositeConfigRepository) Validate(config *ports.Configuration) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	return r.validator.ValidateConfiguration(config)
}

// GetConfigPath returns the path to the configuration file
func (r *CompositeConfigRepository) GetConfigPath() string {
	return r.configPath
}

// mergeConfigurations merges two configurations (source overwrites target)
func mergeConfigurations(target, source *ports.Configuration) *ports.Configuration {
	if source == nil {
		return target
	}
	if target == nil {
		return source
	}

	result := *target

	if source.StoreURL != "" {
		result.StoreURL = source.StoreURL
	}
	if source.Author != "" {
		result.Author = source.Author
	}
	if source.SettingsPath != "" {
		result.SettingsPath = source.SettingsPath
	}
	if source.RequestTimeout != 0 {
		result.RequestTimeout = source.RequestTimeout
	}
	if source.RequestMethod != "" {
		result.RequestMethod = source.RequestMethod
	}
	if source.LogLevel != "" {
		result.LogLevel = source.LogLevel
	}
	if source.Debug {
		result.Debug = true
	}

	if len(source.PluginDirs) > 0 {
		result.PluginDirs = source.PluginDirs
	}
	if len(source.TitleFilters) > 0 {
		result.TitleFilters = source.TitleFilters
	}
	if len(source.Plugins) > 0 {
		result.Plugins = source.Plugins
	}

	return &result
}

func cloneConfiguration(c *ports.Configuration) *ports.Configuration {
	out := *c
	out.PluginDirs = append([]string(nil), c.PluginDirs...)
	out.TitleFilters = append([]string(nil), c.TitleFilters...)
	out.Plugins = make([]ports.PluginDeclaration, len(c.Plugins))
	for i, p := range c.Plugins {
		out.Plugins[i] = p
		if p.APIData != nil {
			out.Plugins[i].APIData = make(map[string]any, len(p.APIData))
			for k, v := range p.APIData {
				out.Plugins[i].APIData[k] = v
			}
		}
	}
	return &out
}

func getDefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".appp", "config.json")
	}
	return filepath.Join(home, ".appp", "config.json")
}

// FileConfigSource loads configuration from a JSON file
type FileConfigSource struct {
	filePath string
}

// NewFileConfigSource creates a new file configuration source
func NewFileConfigSource(filePath string) *FileConfigSource {
	return &FileConfigSource{
		filePath: filePath,
	}
}

// Load loads configuration from file
func (f *FileConfigSource) Load() (*ports.Configuration, error) {
	if _, err := os.Stat(f.filePath); os.IsNotExist(err) {
		return nil, nil // File doesn't exist, return nil config
	}

	data, err := os.ReadFile(f.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config ports.Configuration
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// Priority returns the priority of this source (lower number = higher priority)
func (f *FileConfigSource) Priority() int {
	return 100
}

// Name returns the name of this source
func (f *FileConfigSource) Name() string {
	return "file"
}

// EnvironmentConfigSource loads configuration from environment variables
type EnvironmentConfigSource struct{}

// NewEnvironmentConfigSource creates a new environment configuration source
func NewEnvironmentConfigSource() *EnvironmentConfigSource {
	return &EnvironmentConfigSource{}
}

// Load loads configuration from environment variables
func (e *EnvironmentConfigSource) Load() (*ports.Configuration, error) {
	config := &ports.Configuration{}

	if val := os.Getenv("APPP_STORE_URL"); val != "" {
		config.StoreURL = val
	}
	if val := os.Getenv("APPP_AUTHOR"); val != "" {
		config.Author = val
	}
	if val := os.Getenv("APPP_SETTINGS_FILE"); val != "" {
		config.SettingsPath = val
	}
	if val := os.Getenv("APPP_PLUGINS_DIR"); val != "" {
		config.PluginDirs = splitList(val)
	}
	if val := os.Getenv("APPP_TITLE_FILTERS"); val != "" {
		config.TitleFilters = splitList(val)
	}
	if val := os.Getenv("APPP_REQUEST_TIMEOUT"); val != "" {
		if timeout, err := strconv.Atoi(val); err == nil && timeout > 0 {
			config.RequestTimeout = timeout
		}
	}
	if val := os.Getenv("APPP_REQUEST_METHOD"); val != "" {
		config.RequestMethod = strings.ToUpper(val)
	}
	if val := os.Getenv("APPP_LOG_LEVEL"); val != "" {
		config.LogLevel = strings.ToLower(val)
	}
	if val := os.Getenv("APPP_DEBUG"); val == "true" || val == "1" {
		config.Debug = true
	}

	return config, nil
}

// Priority returns the priority of this source (lower number = higher priority)
func (e *EnvironmentConfigSource) Priority() int {
	return 10
}

// Name returns the name of this source
func (e *EnvironmentConfigSource) Name() string {
	return "environment"
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
