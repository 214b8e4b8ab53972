package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"apppresser.com/updater/internal/application/ports"
	"apppresser.com/updater/internal/infrastructure/logging"
)

// ConfigurationService handles configuration management
type ConfigurationService struct {
	configRepo ports.ConfigurationRepository
	logger     ports.LoggingGateway
}

// NewConfigurationService creates a new configuration service
func NewConfigurationService(configRepo ports.ConfigurationRepository, logger ports.LoggingGateway) *ConfigurationService {
	if logger == nil {
		logger = logging.NewSilentLogger()
	}
	return &ConfigurationService{
		configRepo: configRepo,
		logger:     logger,
	}
}

// LoadConfiguration loads the current configuration
func (s *ConfigurationService) LoadConfiguration(ctx context.Context) (*ports.Configuration, error) {
	config, err := s.configRepo.Load()
	if err != nil {
		s.logger.LogError(err, "Failed to load configuration", nil)
		return nil, err
	}
	return config, nil
}

// SaveConfiguration saves the configuration
func (s *ConfigurationService) SaveConfiguration(ctx context.Context, config *ports.Configuration) error {
	if err := s.configRepo.Validate(config); err != nil {
		s.logger.LogError(err, "Configuration validation failed", nil)
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := s.configRepo.Save(config); err != nil {
		s.logger.LogError(err, "Failed to save configuration", nil)
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	s.logger.Log(ports.LogLevelInfo, "Configuration saved successfully", map[string]interface{}{
		"config_path": s.configRepo.GetConfigPath(),
	})

	return nil
}

// UpsertPlugin stores decl in the configuration file. A declaration whose
// file resolves to the same identifier (per pluginID) is replaced; it
// reports whether that happened.
func (s *ConfigurationService) UpsertPlugin(ctx context.Context, decl ports.PluginDeclaration, pluginID func(string) string) (bool, error) {
	if strings.TrimSpace(decl.File) == "" {
		return false, fmt.Errorf("plugin file cannot be empty")
	}
	if pluginID == nil {
		pluginID = func(file string) string { return file }
	}

	config, err := s.configRepo.LoadPersisted()
	if err != nil {
		s.logger.LogError(err, "Failed to load configuration", nil)
		return false, fmt.Errorf("failed to load configuration: %w", err)
	}

	target := pluginID(decl.File)
	replaced := false
	plugins := make([]ports.PluginDeclaration, 0, len(config.Plugins)+1)
	for _, existing := range config.Plugins {
		if pluginID(existing.File) == target {
			if !replaced {
				plugins = append(plugins, decl)
				replaced = true
			}
			continue
		}
		plugins = append(plugins, existing)
	}
	if !replaced {
		plugins = append(plugins, decl)
	}
	sort.SliceStable(plugins, func(i, j int) bool {
		return plugins[i].File < plugins[j].File
	})
	config.Plugins = plugins

	if err := s.SaveConfiguration(ctx, config); err != nil {
		return false, err
	}
	return replaced, nil
}

// GetConfigurationPath returns the path to the configuration file
func (s *ConfigurationService) GetConfigurationPath(ctx context.Context) string {
	return s.configRepo.GetConfigPath()
}
