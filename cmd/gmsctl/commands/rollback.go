package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/gmsctl/display"
	"github.com/teranos/gmsctl/gms"
)

// RollbackCmd reverts what an ingestion run wrote
var RollbackCmd = &cobra.Command{
	Use:   "rollback <run-id>",
	Short: "Roll back an ingestion run",
	Long: `Revert the aspects written by one ingestion run.

Examples:
  gmsctl rollback my-run-2024-01-01 --dry-run
  gmsctl rollback my-run-2024-01-01 --safe
  gmsctl rollback my-run-2024-01-01 --hard-delete`,
	Args: cobra.ExactArgs(1),
	RunE: runRollback,
}

var rollbackReq gms.RollbackRequest

func init() {
	RollbackCmd.Flags().BoolVarP(&rollbackReq.DryRun, "dry-run", "n", false, "Report what would be rolled back")
	RollbackCmd.Flags().BoolVar(&rollbackReq.Safe, "safe", false, "Skip entities other runs also wrote to")
	RollbackCmd.Flags().BoolVar(&rollbackReq.HardDelete, "hard-delete", false, "Remove entities instead of soft-deleting them")
}

func runRollback(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}

	req := rollbackReq
	req.RunID = args[0]

	result, err := client.RollbackRun(commandContext(cmd), req)
	if err != nil {
		return err
	}

	return display.Output(cmd, result, func() error {
		if err := display.Table([]string{"Urn", "Aspect", "Created at"}, gms.FormatRows(result.Rows)); err != nil {
			return err
		}

		verb := "Rolled back"
		if req.DryRun {
			verb = "[dry-run] would roll back"
		}
		display.Success("%s %d aspects across %d entities", verb, result.AspectsAffected, result.EntitiesAffected)
		if result.UnsafeEntitiesCount > 0 {
			display.Warning("%d entities were also written by other runs and were left alone", result.UnsafeEntitiesCount)
		}
		return nil
	})
}
