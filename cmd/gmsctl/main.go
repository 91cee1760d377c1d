package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teranos/gmsctl/cmd/gmsctl/commands"
	"github.com/teranos/gmsctl/errors"
	"github.com/teranos/gmsctl/logger"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gmsctl",
		Short: "gmsctl - command line client for the metadata service (GMS)",
		Long: `gmsctl - command line client for the metadata service (GMS).

Reads, writes, searches, deletes and rolls back metadata entities over the
service's REST API.

Connection settings come from ~/.datahubenv, overridden field by field by the
DATAHUB_GMS_* environment variables. Set DATAHUB_SKIP_CONFIG=true to ignore the
file entirely.

Examples:
  gmsctl init                                   # Write ~/.datahubenv
  gmsctl check                                  # Test connectivity
  gmsctl get 'urn:li:dataset:(...)'             # Fetch all aspects of an entity
  gmsctl search --platform hive --env PROD      # List matching urns
  gmsctl rollback <run-id> --dry-run            # Preview an ingestion rollback`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbosity, _ := cmd.Flags().GetCount("verbose")
			jsonLogs, _ := cmd.Flags().GetBool("log-json")
			if err := logger.Initialize(jsonLogs, verbosity); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	flags.Bool("json", false, "Output results as JSON")
	flags.Bool("log-json", false, "Emit structured JSON log lines on stderr")
	flags.StringVar(&commands.Globals.ConfigPath, "config", "", "Config file (default ~/.datahubenv)")
	flags.DurationVar(&commands.Globals.Timeout, "timeout", 0, "Per-request timeout, e.g. 30s (default: from config, none)")
	flags.StringVar(&commands.Globals.URL, "gms-url", "", "Metadata service URL, takes precedence over config and environment")
	flags.StringVar(&commands.Globals.Token, "token", "", "Access token, used together with --gms-url")

	rootCmd.AddCommand(commands.InitCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.GetCmd)
	rootCmd.AddCommand(commands.PutCmd)
	rootCmd.AddCommand(commands.SearchCmd)
	rootCmd.AddCommand(commands.RelationshipsCmd)
	rootCmd.AddCommand(commands.BatchGetCmd)
	rootCmd.AddCommand(commands.DeleteCmd)
	rootCmd.AddCommand(commands.RollbackCmd)
	rootCmd.AddCommand(commands.UrnCmd)
	rootCmd.AddCommand(commands.VersionCmd)

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	logger.Cleanup()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
