package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/gmsctl/display"
	"github.com/teranos/gmsctl/gms"
	"github.com/teranos/gmsctl/internal/util"
)

// DeleteCmd removes an entity
var DeleteCmd = &cobra.Command{
	Use:   "delete <urn>",
	Short: "Delete an entity or one of its aspects",
	Long: `Delete an entity.

By default the entity is soft-deleted: its status aspect is set to removed and
it disappears from search. With --hard its rows are removed from the store;
--aspect restricts a hard delete to one aspect, and for timeseries aspects
--start-time/--end-time restrict which values are removed.

Examples:
  gmsctl delete <urn>
  gmsctl delete <urn> --hard
  gmsctl delete <urn> --hard --aspect datasetProfile --start-time 2024-01-01T00:00:00Z
  gmsctl delete references <urn> --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteReferencesCmd = &cobra.Command{
	Use:   "references <urn>",
	Short: "Remove references to an entity from other entities",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteReferences,
}

var (
	deleteHard      bool
	deleteAspect    string
	deleteStartTime string
	deleteEndTime   string
	deleteDryRun    bool
)

func init() {
	DeleteCmd.Flags().BoolVar(&deleteHard, "hard", false, "Remove rows instead of marking the entity removed")
	DeleteCmd.Flags().StringVar(&deleteAspect, "aspect", "", "Only delete this aspect (requires --hard)")
	DeleteCmd.Flags().StringVar(&deleteStartTime, "start-time", "", "Timeseries lower bound, RFC 3339 or epoch millis")
	DeleteCmd.Flags().StringVar(&deleteEndTime, "end-time", "", "Timeseries upper bound, RFC 3339 or epoch millis")
	DeleteCmd.PersistentFlags().BoolVarP(&deleteDryRun, "dry-run", "n", false, "Report what would be deleted without deleting")

	DeleteCmd.AddCommand(deleteReferencesCmd)
}

// parseMillis accepts RFC 3339 timestamps and epoch milliseconds. Empty gives nil.
func parseMillis(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return util.Ptr(ms), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q: use RFC 3339 or epoch milliseconds", s)
	}
	return util.Ptr(t.UnixMilli()), nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	entityUrn := args[0]

	if !deleteHard && (deleteAspect != "" || deleteStartTime != "" || deleteEndTime != "") {
		return fmt.Errorf("--aspect, --start-time and --end-time require --hard")
	}

	req := gms.DeleteRequest{Urn: entityUrn, AspectName: deleteAspect}
	var err error
	if req.StartTimeMillis, err = parseMillis(deleteStartTime); err != nil {
		return err
	}
	if req.EndTimeMillis, err = parseMillis(deleteEndTime); err != nil {
		return err
	}

	if deleteDryRun {
		mode := "soft"
		if deleteHard {
			mode = "hard"
		}
		return display.Output(cmd, map[string]interface{}{"dryRun": true, "mode": mode, "request": req}, func() error {
			display.Info("[dry-run] would %s-delete %s", mode, entityUrn)
			return nil
		})
	}

	client, err := openClient()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	if !deleteHard {
		status, err := client.SoftDelete(ctx, entityUrn)
		if err != nil {
			return err
		}
		return display.Output(cmd, map[string]interface{}{"urn": entityUrn, "status": status}, func() error {
			display.Success("Soft-deleted %s", entityUrn)
			return nil
		})
	}

	result, err := client.DeleteEntity(ctx, req)
	if err != nil {
		return err
	}
	return display.Output(cmd, result, func() error {
		display.Success("Deleted %d rows and %d timeseries rows of %s", result.Rows, result.TimeseriesRows, result.Urn)
		return nil
	})
}

func runDeleteReferences(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}

	result, err := client.DeleteReferences(commandContext(cmd), args[0], deleteDryRun)
	if err != nil {
		return err
	}

	return display.Output(cmd, result, func() error {
		rows := make([][]string, 0, len(result.RelatedAspects))
		for _, a := range result.RelatedAspects {
			rows = append(rows, []string{a.Entity, a.Aspect, a.Relationship})
		}
		if err := display.Table([]string{"Entity", "Aspect", "Relationship"}, rows); err != nil {
			return err
		}
		if deleteDryRun {
			display.Info("[dry-run] %d references would be removed", result.Total)
		} else {
			display.Success("Removed %d references", result.Total)
		}
		return nil
	})
}
