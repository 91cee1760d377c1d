package commands

import (
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/gmsctl/am"
	"github.com/teranos/gmsctl/display"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the client configuration",
	Long: `Display the client configuration and where each setting comes from.

Connection sources (in order of precedence):
1. --gms-url / --token flags
2. Environment variables (DATAHUB_GMS_URL, DATAHUB_GMS_HOST, DATAHUB_GMS_TOKEN, ...)
3. Config file (~/.datahubenv)

With DATAHUB_SKIP_CONFIG=true the config file is never read.

Examples:
  gmsctl config show                  # Show the config file
  gmsctl config show --format json    # Show the config file as JSON
  gmsctl config where                 # Show the resolved host and token sources`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the config file",
	Long:  "Display the contents of the config file. The token is masked.",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where the connection settings are loaded from",
	Args:  cobra.NoArgs,
	RunE:  runConfigWhere,
}

var configFormat string

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "yaml", "Output format: yaml, json, toml")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configWhereCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	resolver := newResolver()
	if _, err := am.EnsureConfig(resolver.ConfigPath()); err != nil {
		return err
	}

	cfg, err := am.LoadFromFile(resolver.ConfigPath())
	if err != nil {
		return err
	}
	if cfg.Gms.Token != nil {
		masked := am.MaskToken(*cfg.Gms.Token)
		cfg.Gms.Token = &masked
	}

	format := configFormat
	if display.ShouldOutputJSON(cmd) {
		format = "json"
	}

	var data []byte
	switch format {
	case "json":
		data, err = json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
	case "yaml":
		data, err = yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
	case "toml":
		data, err = toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config to TOML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format: %s (use yaml, json, or toml)", format)
	}

	fmt.Fprintln(display.Out, string(data))
	return nil
}

func runConfigWhere(cmd *cobra.Command, args []string) error {
	resolved, err := newResolver().Resolve()
	if err != nil {
		return err
	}

	settings := resolved.Settings()
	return display.Output(cmd, settings, func() error {
		rows := make([][]string, 0, len(settings))
		for _, s := range settings {
			rows = append(rows, []string{s.Key, s.Value, string(s.Source), s.SourcePath})
		}
		return display.Table([]string{"Setting", "Value", "Source", "From"}, rows)
	})
}
