package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/gmsctl/display"
	"github.com/teranos/gmsctl/gms"
)

// SearchCmd lists the urns matching a filter
var SearchCmd = &cobra.Command{
	Use:   "search",
	Short: "List entity urns matching a filter",
	Long: `Search entities by platform, environment and free-text query.

Soft-deleted entities are excluded unless --include-removed or
--only-soft-deleted is given.

Examples:
  gmsctl search --platform hive --env PROD
  gmsctl search --entity-type dashboard --platform looker
  gmsctl search containers --env PROD`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

var searchContainersCmd = &cobra.Command{
	Use:   "containers",
	Short: "List container urns (databases, schemas, projects, datasets)",
	Args:  cobra.NoArgs,
	RunE:  runSearchContainers,
}

var (
	searchReq           gms.SearchRequest
	containerEntityType string
)

func init() {
	flags := SearchCmd.PersistentFlags()
	flags.StringVar(&searchReq.Env, "env", "", "Environment (origin), e.g. PROD")
	flags.StringVar(&searchReq.Query, "query", gms.DefaultQuery, "Free-text query")

	SearchCmd.Flags().StringVar(&searchReq.EntityType, "entity-type", gms.DefaultEntityType, "Entity type")
	SearchCmd.Flags().StringVar(&searchReq.Platform, "platform", "", "Platform name, e.g. hive")
	SearchCmd.Flags().BoolVar(&searchReq.IncludeRemoved, "include-removed", false, "Also match soft-deleted entities")
	SearchCmd.Flags().BoolVar(&searchReq.OnlySoftDeleted, "only-soft-deleted", false, "Only match soft-deleted entities")

	searchContainersCmd.Flags().StringVar(&containerEntityType, "entity-type", "container", "Entity type")

	SearchCmd.AddCommand(searchContainersCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}

	urns, err := client.SearchByFilter(commandContext(cmd), searchReq)
	if err != nil {
		return err
	}
	return outputUrns(cmd, urns)
}

func runSearchContainers(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}

	urns, err := client.SearchContainerIDs(commandContext(cmd), searchReq.Env, containerEntityType, searchReq.Query)
	if err != nil {
		return err
	}
	return outputUrns(cmd, urns)
}

func outputUrns(cmd *cobra.Command, urns *gms.Seq[string]) error {
	values := urns.Slice()
	return display.Output(cmd, values, func() error {
		display.Lines(values)
		return nil
	})
}
