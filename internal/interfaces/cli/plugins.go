package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"apppresser.com/updater/internal/application/ports"
	"apppresser.com/updater/internal/core/domain"
)

// NewPluginCommand creates the plugin command
func NewPluginCommand(container *CLIContainer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugin",
		Short: "Manage registered plugins",
		Long: `Manage the plugins registered with the update service.

Plugins declared in the configuration file are registered on startup.`,
		Example: `  # List registered plugins
  appp plugin list

  # Show the resolved metadata of one plugin
  appp plugin show apppush/apppush.php

  # Declare a new plugin
  appp plugin register apppush/apppush.php --option-key apppush_license --item-name AppPush`,
	}

	cmd.AddCommand(newPluginListCommand(container))
	cmd.AddCommand(newPluginShowCommand(container))
	cmd.AddCommand(newPluginRegisterCommand(container))

	return cmd
}

func newPluginListCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPluginList(cmd.OutOrStdout(), container)
		},
	}
}

func runPluginList(out io.Writer, container *CLIContainer) error {
	records := container.Registry.List()
	if len(records) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No plugins registered. Use 'appp plugin register' to add one."))
		return nil
	}

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Registered plugins (%d)", len(records))))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLUGIN\tITEM NAME\tAPI URL\tLICENSE")
	for _, record := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			record.PluginID,
			record.ItemName(),
			record.APIURL,
			renderLicenseSet(record.License),
		)
	}
	return w.Flush()
}

func newPluginShowCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "show <plugin>",
		Short: "Show the resolved metadata of a plugin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, ok := container.Registry.Lookup(args[0])
			if !ok {
				return fmt.Errorf("plugin %s is not registered", args[0])
			}
			printRecord(cmd.OutOrStdout(), record)
			return nil
		},
	}
}

func printRecord(out io.Writer, record *domain.UpdaterRecord) {
	fmt.Fprintln(out, titleStyle.Render(record.PluginID))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Plugin file:\t%s\n", record.PluginFile)
	fmt.Fprintf(w, "API URL:\t%s\n", record.APIURL)
	fmt.Fprintf(w, "Author:\t%s\n", record.Author)
	fmt.Fprintf(w, "License:\t%s\n", renderLicenseSet(record.License))
	for _, key := range record.ExtraKeys() {
		fmt.Fprintf(w, "%s:\t%v\n", key, record.Extra[key])
	}
	w.Flush()
}

func newPluginRegisterCommand(container *CLIContainer) *cobra.Command {
	var (
		optionKey string
		itemName  string
		apiURL    string
		version   string
		extra     map[string]string
	)

	cmd := &cobra.Command{
		Use:   "register <plugin-file>",
		Short: "Declare a plugin in the configuration file",
		Long: `Register a plugin with the update service and save the declaration to the
configuration file so it is registered on every run.

The license key is read from the settings entry named by --option-key.`,
		Example: `  appp plugin register apppush/apppush.php --option-key apppush_license --item-name AppPush
  appp plugin register appcamera/appcamera.php --url https://store.example.com --set beta=true`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiData := make(map[string]any, len(extra)+3)
			for k, v := range extra {
				apiData[k] = v
			}
			if itemName != "" {
				apiData[domain.MetaItemName] = itemName
			}
			if apiURL != "" {
				apiData[domain.MetaURL] = apiURL
			}
			if version != "" {
				apiData[domain.MetaVersion] = version
			}

			return runPluginRegister(cmd.Context(), cmd.OutOrStdout(), container, ports.PluginDeclaration{
				File:      args[0],
				OptionKey: optionKey,
				APIData:   apiData,
			})
		},
	}

	cmd.Flags().StringVar(&optionKey, "option-key", "", "Settings key holding the license")
	cmd.Flags().StringVar(&itemName, "item-name", "", "Product name in the store")
	cmd.Flags().StringVar(&apiURL, "url", "", "Store URL (default from config)")
	cmd.Flags().StringVar(&version, "version", "", "Installed plugin version")
	cmd.Flags().StringToStringVar(&extra, "set", nil, "Extra metadata as key=value")

	return cmd
}

func runPluginRegister(ctx context.Context, out io.Writer, container *CLIContainer, decl ports.PluginDeclaration) error {
	record, err := container.Registry.Register(decl.File, decl.OptionKey, decl.APIData)
	if err != nil {
		return err
	}

	replaced, err := container.ConfigService.UpsertPlugin(ctx, decl, container.Registry.PluginID)
	if err != nil {
		return err
	}

	verb := "Registered"
	if replaced {
		verb = "Updated"
	}
	fmt.Fprintf(out, "%s %s %s\n", validStyle.Render("✓"), verb, titleStyle.Render(record.PluginID))
	fmt.Fprintf(out, "%s\n", mutedStyle.Render("Saved to "+container.ConfigService.GetConfigurationPath(ctx)))
	return nil
}
