package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/gmsctl/display"
	"github.com/teranos/gmsctl/gms"
)

// RelationshipsCmd lists the edges of an entity
var RelationshipsCmd = &cobra.Command{
	Use:   "relationships <urn>",
	Short: "List relationships of an entity",
	Long: `List the entities related to <urn> through the given relationship types.

Examples:
  gmsctl relationships <urn> --types DownstreamOf
  gmsctl relationships <urn> --types IsPartOf,Contains --direction outgoing`,
	Args: cobra.ExactArgs(1),
	RunE: runRelationships,
}

var (
	relTypes     []string
	relDirection string
)

func init() {
	RelationshipsCmd.Flags().StringSliceVarP(&relTypes, "types", "t", nil, "Relationship types (comma-separated)")
	RelationshipsCmd.Flags().StringVarP(&relDirection, "direction", "d", "incoming", "incoming or outgoing")
	_ = RelationshipsCmd.MarkFlagRequired("types")
}

func parseDirection(s string) (gms.Direction, error) {
	switch strings.ToLower(s) {
	case "incoming", "in":
		return gms.Incoming, nil
	case "outgoing", "out":
		return gms.Outgoing, nil
	default:
		return "", fmt.Errorf("unsupported direction: %s (use incoming or outgoing)", s)
	}
}

func runRelationships(cmd *cobra.Command, args []string) error {
	direction, err := parseDirection(relDirection)
	if err != nil {
		return err
	}

	client, err := openClient()
	if err != nil {
		return err
	}

	rels, err := client.Relationships(commandContext(cmd), args[0], relTypes, direction)
	if err != nil {
		return err
	}

	edges := rels.Slice()
	return display.Output(cmd, edges, func() error {
		rows := make([][]string, 0, len(edges))
		for rel := range rels.All() {
			rows = append(rows, []string{rel.Type, rel.Entity})
		}
		return display.Table([]string{"Type", "Entity"}, rows)
	})
}
