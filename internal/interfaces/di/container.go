package di

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"apppresser.com/updater/internal/application/ports"
	"apppresser.com/updater/internal/application/services"
	"apppresser.com/updater/internal/core/filtering"
	"apppresser.com/updater/internal/infrastructure/config"
	httpinfra "apppresser.com/updater/internal/infrastructure/http"
	"apppresser.com/updater/internal/infrastructure/logging"
	"apppresser.com/updater/internal/infrastructure/settings"
	"apppresser.com/updater/internal/infrastructure/updater"
	"apppresser.com/updater/internal/interfaces/cli"
)

// Container holds all application dependencies
type Container struct {
	// Configuration
	ConfigRepo *config.CompositeConfigRepository
	Config     *ports.Configuration

	// Infrastructure
	Settings      *settings.JSONStore
	Factory       *updater.EDDUpdaterFactory
	Registry      *updater.Registry
	LicenseClient *httpinfra.LicenseClient
	TitleFilter   *filtering.FilterChain

	// Application services
	ConfigService  *services.ConfigurationService
	LicenseService *services.LicenseService

	// CLI
	CLIContainer *cli.CLIContainer

	// LogOutput receives log lines; defaults to stderr
	LogOutput io.Writer

	logger      ports.LoggingGateway
	initialized bool
	mu          sync.Mutex
}

// NewContainer creates the container. Components are built by Initialize
// once the global flags are known.
func NewContainer() *Container {
	c := &Container{
		LogOutput: os.Stderr,
		logger:    logging.NewSilentLogger(),
	}
	c.CLIContainer = &cli.CLIContainer{
		Initialize: c.Initialize,
	}
	return c
}

// Logger returns the active logger. Before Initialize it discards everything.
func (c *Container) Logger() ports.LoggingGateway {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logger
}

// Initialize builds every component. Calling it again is a no-op.
func (c *Container) Initialize(overrides cli.Overrides) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if err := c.initializeComponents(overrides); err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}
	c.initialized = true
	return nil
}

// initializeComponents initializes all components with proper dependencies
func (c *Container) initializeComponents(overrides cli.Overrides) error {
	// 1. Load configuration
	c.ConfigRepo = config.NewCompositeConfigRepository(overrides.ConfigPath)

	appConfig, err := c.ConfigRepo.Load()
	if err != nil {
		return err
	}
	if overrides.SettingsPath != "" {
		appConfig.SettingsPath = overrides.SettingsPath
	}
	if overrides.Debug {
		appConfig.Debug = true
	}
	c.Config = appConfig

	// 2. Logging
	level := logging.ParseLogLevel(appConfig.LogLevel)
	if appConfig.Debug {
		level = ports.LogLevelDebug
	}
	logger := logging.NewZerologGateway(logging.Options{
		Level:   level,
		Console: appConfig.Debug,
		Output:  c.LogOutput,
	})
	c.logger = logger

	// 3. Settings store, which also holds the license-key index
	c.Settings, err = settings.Open(appConfig.SettingsPath)
	if err != nil {
		return err
	}

	// 4. Updater registry
	c.Factory = updater.NewEDDUpdaterFactory()
	c.Registry, err = updater.NewRegistry(c.Factory, c.Settings, c.Settings,
		updater.WithAuthor(appConfig.Author),
		updater.WithStoreURL(appConfig.StoreURL),
		updater.WithPluginDirs(appConfig.PluginDirs...),
		updater.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	for _, decl := range appConfig.Plugins {
		if _, err := c.Registry.Register(decl.File, decl.OptionKey, decl.APIData); err != nil {
			return fmt.Errorf("failed to register declared plugin: %w", err)
		}
	}

	// 5. Licensing client
	timeout := time.Duration(appConfig.RequestTimeout) * time.Second
	if overrides.Timeout > 0 {
		timeout = overrides.Timeout
	}
	c.LicenseClient = httpinfra.NewLicenseClient(
		httpinfra.WithTimeout(timeout),
		httpinfra.WithMethod(appConfig.RequestMethod),
		httpinfra.WithUserAgent("appp-updater/"+cli.Version),
		httpinfra.WithClientLogger(logger),
	)

	// 6. Title filters and the license service
	c.TitleFilter, err = filtering.NewNamedFilter(appConfig.TitleFilters)
	if err != nil {
		return err
	}
	c.LicenseService = services.NewLicenseService(c.Registry, c.LicenseClient, c.TitleFilter, logger)
	c.ConfigService = services.NewConfigurationService(c.ConfigRepo, logger)

	// 7. Expose everything to the CLI
	c.CLIContainer.ConfigService = c.ConfigService
	c.CLIContainer.Config = c.Config
	c.CLIContainer.Registry = c.Registry
	c.CLIContainer.Settings = c.Settings
	c.CLIContainer.LicenseService = c.LicenseService
	c.CLIContainer.Logger = logger

	logger.LogDebug("Dependency injection container initialized", map[string]interface{}{
		"config":   c.ConfigRepo.GetConfigPath(),
		"settings": c.Settings.Path(),
		"plugins":  c.Registry.Len(),
		"timeout":  timeout.String(),
		"method":   c.LicenseClient.Method(),
	})
	return nil
}

// GetCLIContainer returns the CLI container for command execution
func (c *Container) GetCLIContainer() *cli.CLIContainer {
	return c.CLIContainer
}

// Shutdown writes settings changes that are still pending
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return nil
	}

	c.logger.LogDebug("Shutting down application", nil)

	if err := c.Settings.Flush(); err != nil {
		c.logger.LogError(err, "Error saving settings", nil)
		return err
	}
	return nil
}

// HealthCheck reports whether every component was built
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return fmt.Errorf("container not initialized")
	}
	if c.Registry == nil {
		return fmt.Errorf("updater registry not initialized")
	}
	if c.Factory.Inits() != 1 {
		return fmt.Errorf("updater library initialized %d times", c.Factory.Inits())
	}
	if c.LicenseService == nil {
		return fmt.Errorf("license service not initialized")
	}
	return nil
}

// GetVersion returns version information
func (c *Container) GetVersion() map[string]string {
	return map[string]string{
		"version":    cli.Version,
		"build_time": cli.BuildTime,
	}
}
