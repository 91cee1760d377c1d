package commands

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/gmsctl/am"
	"github.com/teranos/gmsctl/display"
)

// InitCmd writes the connection settings to the config file
var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Configure which metadata service to connect to",
	Long: `Write the metadata service host and access token to the config file.

Values not given as flags are prompted for. Other top-level sections already
present in the file are kept.

Examples:
  gmsctl init
  gmsctl init --host http://gms:8080 --token-value "{GMS_TOKEN}" --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var (
	initHost  string
	initToken string
	initForce bool
)

func init() {
	InitCmd.Flags().StringVar(&initHost, "host", "", "Metadata service URL (prompted when empty)")
	InitCmd.Flags().StringVar(&initToken, "token-value", "", "Access token to store, may contain {ENV_VAR} placeholders")
	InitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file without asking")
}

func runInit(cmd *cobra.Command, args []string) error {
	resolver := newResolver()
	path := resolver.ConfigPath()

	if _, err := os.Stat(path); err == nil && !initForce {
		overwrite, err := pterm.DefaultInteractiveConfirm.Show(path + " already exists. Overwrite?")
		if err != nil {
			return err
		}
		if !overwrite {
			display.Info("Keeping existing configuration")
			return nil
		}
	}

	host := initHost
	token := initToken
	if !cmd.Flags().Changed("host") {
		var err error
		host, err = pterm.DefaultInteractiveTextInput.WithDefaultValue(am.DefaultGmsHost).Show("Enter your metadata service host")
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("token-value") {
			token, err = pterm.DefaultInteractiveTextInput.WithMask("*").Show("Enter your access token (leave empty for none)")
			if err != nil {
				return err
			}
		}
	}

	if err := resolver.Write(host, token, true); err != nil {
		return err
	}

	display.Success("Written to %s", path)
	return nil
}
