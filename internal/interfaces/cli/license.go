package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"apppresser.com/updater/internal/core/domain"
)

// NewLicenseCommand creates the license command
func NewLicenseCommand(container *CLIContainer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "license",
		Short: "Validate and manage license keys",
		Long: `Validate license keys against the store each plugin was registered with.

When no license is given, the key stored under the plugin's option key is used.`,
		Example: `  # Activate the stored license of a plugin
  appp license validate apppush/apppush.php

  # Check a specific key without activating it
  appp license check apppush/apppush.php 0123456789abcdef

  # Store a key and refresh every stored status
  appp license set apppush_license 0123456789abcdef
  appp license refresh`,
	}

	cmd.AddCommand(newLicenseValidateCommand(container))
	cmd.AddCommand(newLicenseActionCommand(container, domain.ActionCheck, "check", "Check a license without activating it"))
	cmd.AddCommand(newLicenseActionCommand(container, domain.ActionDeactivate, "deactivate", "Release this site's activation"))
	cmd.AddCommand(newLicenseSetCommand(container))
	cmd.AddCommand(newLicenseRefreshCommand(container))

	return cmd
}

func newLicenseValidateCommand(container *CLIContainer) *cobra.Command {
	var tui bool

	cmd := &cobra.Command{
		Use:   "validate <plugin> [license]",
		Short: "Activate a license and print its status",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plugin, license := licenseArgs(container, args)

			if tui {
				return runValidateTUI(cmd.Context(), cmd.OutOrStdout(), container, plugin, license)
			}

			result := container.LicenseService.Validate(cmd.Context(), license, plugin)
			return reportResult(cmd.OutOrStdout(), plugin, domain.ActionActivate, result)
		},
	}

	cmd.Flags().BoolVar(&tui, "tui", false, "Show an interactive progress view")

	return cmd
}

func newLicenseActionCommand(container *CLIContainer, action domain.LicenseAction, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <plugin> [license]",
		Short: short,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			plugin, license := licenseArgs(container, args)

			var result domain.LicenseResult
			switch action {
			case domain.ActionCheck:
				result = container.LicenseService.Check(cmd.Context(), license, plugin)
			case domain.ActionDeactivate:
				result = container.LicenseService.Deactivate(cmd.Context(), license, plugin)
			default:
				result = container.LicenseService.Validate(cmd.Context(), license, plugin)
			}
			return reportResult(cmd.OutOrStdout(), plugin, action, result)
		},
	}
}

// licenseArgs returns the plugin argument and the license to use, falling
// back to the license stored for that plugin.
func licenseArgs(container *CLIContainer, args []string) (string, string) {
	plugin := args[0]
	if len(args) > 1 {
		return plugin, args[1]
	}
	if record, ok := container.Registry.Lookup(plugin); ok {
		return plugin, record.License
	}
	return plugin, ""
}

func reportResult(out io.Writer, plugin string, action domain.LicenseAction, result domain.LicenseResult) error {
	fmt.Fprintln(out, renderResult(plugin, action, result))
	if !result.OK() {
		return fmt.Errorf("license %s failed: %w", actionLabel(action), result.Err)
	}
	return nil
}

func newLicenseSetCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "set <option-key> <license>",
		Short: "Store a license key in the settings file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Settings.SetSetting(args[0], args[1]); err != nil {
				return fmt.Errorf("failed to store license: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Stored %s for %s\n", validStyle.Render("✓"), maskLicense(args[1]), titleStyle.Render(args[0]))
			if path := container.Settings.Path(); path != "" {
				fmt.Fprintln(out, mutedStyle.Render("Saved to "+path))
			}
			return nil
		},
	}
}

func newLicenseRefreshCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Validate every stored license and save the statuses",
		Long: `Validate the license stored under each registered option key and save the
returned status under "<option-key>_status" in the settings file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLicenseRefresh(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}
}

func runLicenseRefresh(ctx context.Context, out io.Writer, container *CLIContainer) error {
	reports, err := container.LicenseService.RefreshStatuses(ctx, container.Settings, container.Settings)
	if len(reports) == 0 && err == nil {
		fmt.Fprintln(out, mutedStyle.Render("No plugins declare an option key; nothing to refresh."))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OPTION KEY\tPLUGIN\tSTATUS")
	for _, report := range reports {
		status := warningStyle.Render("unknown (" + string(report.Result.Kind) + ")")
		if s, ok := report.Result.Lookup(); ok {
			status = renderStatus(s)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", report.OptionKey, report.PluginID, status)
	}
	if flushErr := w.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}

	return err
}
