package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"apppresser.com/updater/internal/application/ports"
)

// NewConfigCommand creates the config command
func NewConfigCommand(container *CLIContainer) *cobra.Command {
	var configCmd = &cobra.Command{
		Use:   "config",
		Short: "Show configuration settings",
		Long: `Show the effective configuration, after defaults, the config file and
APPP_* environment variables have been merged.`,
	}

	// Add subcommands
	configCmd.AddCommand(NewConfigShowCommand(container))
	configCmd.AddCommand(NewConfigPathCommand(container))

	return configCmd
}

// NewConfigShowCommand creates the show subcommand
func NewConfigShowCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printConfig(cmd.OutOrStdout(), container.Config)
			return nil
		},
	}
}

func printConfig(out io.Writer, config *ports.Configuration) {
	fmt.Fprintln(out, titleStyle.Render("Current Configuration:"))
	fmt.Fprintf(out, "Store URL: %s\n", config.StoreURL)
	fmt.Fprintf(out, "Author: %s\n", config.Author)
	fmt.Fprintf(out, "Settings file: %s\n", config.SettingsPath)
	fmt.Fprintf(out, "Plugin dirs: %s\n", listOrNone(config.PluginDirs))
	fmt.Fprintf(out, "Request: %s, timeout %ds\n", config.RequestMethod, config.RequestTimeout)
	fmt.Fprintf(out, "Title filters: %s\n", listOrNone(config.TitleFilters))
	fmt.Fprintf(out, "Log level: %s\n", config.LogLevel)
	fmt.Fprintf(out, "Debug: %t\n", config.Debug)
	fmt.Fprintf(out, "Declared plugins: %d\n", len(config.Plugins))
}

func listOrNone(values []string) string {
	if len(values) == 0 {
		return mutedStyle.Render("(none)")
	}
	return strings.Join(values, ", ")
}

// NewConfigPathCommand creates the path subcommand
func NewConfigPathCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := container.ConfigService.GetConfigurationPath(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file path: %s\n", path)
			return nil
		},
	}
}
