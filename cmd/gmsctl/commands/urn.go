package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/gmsctl/display"
	"github.com/teranos/gmsctl/urn"
)

// UrnCmd groups urn helpers that run without a connection
var UrnCmd = &cobra.Command{
	Use:   "urn",
	Short: "Build and encode urns",
}

var urnContainerCmd = &cobra.Command{
	Use:   "container",
	Short: "Compute the urn of a database or schema container",
	Long: `Compute a container urn from its key the way ingestion does.

Examples:
  gmsctl urn container --platform postgres --instance prod --database sales
  gmsctl urn container --platform postgres --database sales --schema public`,
	Args: cobra.NoArgs,
	RunE: runUrnContainer,
}

var urnEncodeCmd = &cobra.Command{
	Use:   "encode <urn>",
	Short: "Percent-encode a urn for use in a request path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(display.Out, urn.Encode(args[0]))
		return nil
	},
}

var (
	containerPlatform string
	containerInstance string
	containerDatabase string
	containerSchema   string
)

func init() {
	urnContainerCmd.Flags().StringVar(&containerPlatform, "platform", "", "Platform name, e.g. postgres")
	urnContainerCmd.Flags().StringVar(&containerInstance, "instance", "", "Platform instance")
	urnContainerCmd.Flags().StringVar(&containerDatabase, "database", "", "Database name")
	urnContainerCmd.Flags().StringVar(&containerSchema, "schema", "", "Schema name (gives a schema container)")
	_ = urnContainerCmd.MarkFlagRequired("platform")
	_ = urnContainerCmd.MarkFlagRequired("database")

	UrnCmd.AddCommand(urnContainerCmd)
	UrnCmd.AddCommand(urnEncodeCmd)
}

func runUrnContainer(cmd *cobra.Command, args []string) error {
	key := urn.DatabaseKey(containerPlatform, containerInstance, containerDatabase)
	if containerSchema != "" {
		key = urn.SchemaKey(containerPlatform, containerInstance, containerDatabase, containerSchema)
	}

	containerUrn, err := key.Urn()
	if err != nil {
		return err
	}

	return display.Output(cmd, map[string]interface{}{"urn": containerUrn, "key": key.GUIDDict()}, func() error {
		fmt.Fprintln(display.Out, containerUrn)
		return nil
	})
}
