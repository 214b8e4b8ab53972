package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"apppresser.com/updater/internal/application/ports"
	"apppresser.com/updater/internal/application/services"
	"apppresser.com/updater/internal/infrastructure/settings"
	"apppresser.com/updater/internal/infrastructure/updater"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// Overrides carries the global flags that shape how dependencies are built
type Overrides struct {
	ConfigPath   string
	SettingsPath string
	Debug        bool
	Timeout      time.Duration
}

// CLIContainer holds all the dependencies for CLI commands
type CLIContainer struct {
	ConfigService  *services.ConfigurationService
	Config         *ports.Configuration
	Registry       *updater.Registry
	Settings       *settings.JSONStore
	LicenseService *services.LicenseService
	Logger         ports.LoggingGateway

	// Initialize fills the fields above once global flags are parsed
	Initialize func(Overrides) error
}

// NewRootCommand RootCommand represents the base command when called without any subcommands
func NewRootCommand(container *CLIContainer) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "appp",
		Short: "AppPresser plugin updater and license tool",
		Long: `appp registers AppPresser add-on plugins with the update service and
validates their license keys against the Easy Digital Downloads store.

Plugins are declared in the configuration file; license keys live in the
settings file and are looked up by each plugin's option key.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := readOverrides(cmd)
			if err != nil {
				return err
			}
			if container.Initialize == nil {
				return nil
			}
			if err := container.Initialize(overrides); err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			return nil
		},
	}

	// Set custom version template
	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	// Add persistent flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default is $HOME/.appp/config.json)")
	rootCmd.PersistentFlags().String("settings", "", "Settings file holding license keys")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Licensing request timeout (default from config, 15s)")

	// Add subcommands
	rootCmd.AddCommand(NewPluginCommand(container))
	rootCmd.AddCommand(NewLicenseCommand(container))
	rootCmd.AddCommand(NewConfigCommand(container))

	return rootCmd
}

// goVersion returns the Go version used to build the binary
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

// readOverrides collects the persistent flags
func readOverrides(cmd *cobra.Command) (Overrides, error) {
	flags := cmd.Flags()

	var o Overrides
	var err error
	if o.ConfigPath, err = flags.GetString("config"); err != nil {
		return o, err
	}
	if o.SettingsPath, err = flags.GetString("settings"); err != nil {
		return o, err
	}
	if o.Debug, err = flags.GetBool("debug"); err != nil {
		return o, err
	}
	if o.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return o, err
	}
	if o.Timeout < 0 {
		return o, fmt.Errorf("timeout cannot be negative")
	}
	return o, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context, container *CLIContainer) {
	rootCmd := NewRootCommand(container)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
