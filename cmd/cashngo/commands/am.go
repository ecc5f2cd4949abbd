package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/cashngo/am"
	"github.com/teranos/cashngo/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Show and validate configuration",
	Long: `am - Show and validate cashngo configuration ("I am")

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (CASHNGO_* prefix, .env is loaded first)
3. Project config (./am.toml, searching up directories)
4. User config (~/.cashngo/am.toml)
5. System config (/etc/cashngo/am.toml)
6. Default values

Examples:
  cashngo am show                 # Show current configuration
  cashngo am show --format yaml   # Show configuration in YAML format
  cashngo am get storage.backend  # Get a specific value
  cashngo am validate             # Validate config files and values`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., database.path, storage.backend)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := am.GetViper()
		if !v.IsSet(args[0]) {
			return fmt.Errorf("configuration key %q not found", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), v.Get(args[0]))
		return nil
	},
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long:  "Check every config file for syntax errors and unknown keys, then validate the merged result",
	RunE:  runAmValidate,
}

var configFormat string

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	// Render masks secrets; json and yaml are derived from the masked copy
	rendered, err := am.Render(cfg)
	if err != nil {
		return err
	}
	masked := *cfg
	if masked.Redis.Password != "" {
		masked.Redis.Password = "********"
	}

	out := cmd.OutOrStdout()
	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(masked, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(out, string(data))
	case "yaml":
		data, err := yaml.Marshal(masked)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(out, "# cashngo configuration\n%s", data)
	case "toml":
		fmt.Fprintf(out, "# cashngo configuration\n%s", rendered)
	default:
		return fmt.Errorf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	problems := 0
	for _, path := range am.ConfigPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		unknown, err := am.CheckFile(path)
		if err != nil {
			pterm.Error.Printf("%s: %v\n", path, err)
			problems++
			continue
		}
		for _, key := range unknown {
			pterm.Warning.Printf("%s: unknown key %s\n", path, key)
		}
		if len(unknown) == 0 {
			pterm.Success.Printf("%s\n", path)
		}
	}

	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	if problems > 0 {
		return errors.Newf("%d config file(s) failed validation", problems)
	}

	pterm.Success.Println("Configuration is valid")
	return nil
}
