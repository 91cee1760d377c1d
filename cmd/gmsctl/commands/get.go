package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/gmsctl/display"
)

// GetCmd fetches the aspects of one entity
var GetCmd = &cobra.Command{
	Use:   "get <urn>",
	Short: "Get the aspects of an entity",
	Long: `Fetch an entity's aspects as JSON.

Timeseries aspects (profiles, usage statistics, operations) are fetched
separately and report their latest value. With --typed every aspect is decoded
and validated; aspects without a known shape are left out.

Examples:
  gmsctl get 'urn:li:dataset:(urn:li:dataPlatform:hive,db.tbl,PROD)'
  gmsctl get <urn> --aspect ownership --aspect datasetProfile`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// BatchGetCmd fetches several entities in one request
var BatchGetCmd = &cobra.Command{
	Use:   "batch-get <urn>...",
	Short: "Get several entities in one request",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatchGet,
}

var (
	getAspects []string
	getTyped   bool
)

func init() {
	GetCmd.Flags().StringSliceVarP(&getAspects, "aspect", "a", nil, "Aspect to fetch (repeatable, default all)")
	GetCmd.Flags().BoolVar(&getTyped, "typed", false, "Decode and validate each aspect")
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}

	aspects, err := client.AspectsForEntity(commandContext(cmd), args[0], getAspects, getTyped)
	if err != nil {
		return err
	}
	return display.OutputJSON(aspects)
}

func runBatchGet(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}

	entities, err := client.BatchGet(commandContext(cmd), args)
	if err != nil {
		return err
	}
	return display.OutputJSON(entities.Slice())
}
