package commands

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/gmsctl/display"
	"github.com/teranos/gmsctl/errors"
	"github.com/teranos/gmsctl/urn"
)

// PutCmd upserts one aspect
var PutCmd = &cobra.Command{
	Use:   "put <urn> <aspect> <json|@file>",
	Short: "Upsert one aspect of an entity",
	Long: `Write an aspect value through an ingest proposal.

The value is a JSON document, or @path to read it from a file. The entity type
is guessed from the urn unless --entity-type is given.

Examples:
  gmsctl put <urn> status '{"removed": false}'
  gmsctl put <urn> ownership @ownership.json --async`,
	Args: cobra.ExactArgs(3),
	RunE: runPut,
}

var (
	putEntityType string
	putAsync      bool
)

func init() {
	PutCmd.Flags().StringVar(&putEntityType, "entity-type", "", "Entity type (default: guessed from the urn)")
	PutCmd.Flags().BoolVar(&putAsync, "async", false, "Let the service apply the proposal asynchronously")
}

func runPut(cmd *cobra.Command, args []string) error {
	entityUrn, aspectName := args[0], args[1]

	raw := []byte(args[2])
	if path, ok := strings.CutPrefix(args[2], "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "failed to read %s", path)
		}
		raw = data
	}

	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return errors.WithHint(errors.Wrap(err, "aspect value is not valid JSON"),
			"pass a JSON document or @path to a file holding one")
	}

	entityType := putEntityType
	if entityType == "" {
		var err error
		if entityType, err = urn.GuessEntityType(entityUrn); err != nil {
			return err
		}
	}

	client, err := openClient()
	if err != nil {
		return err
	}

	status, err := client.PostEntity(commandContext(cmd), entityUrn, entityType, aspectName, value, putAsync)
	if err != nil {
		return err
	}

	result := map[string]interface{}{"urn": entityUrn, "aspect": aspectName, "status": status}
	return display.Output(cmd, result, func() error {
		display.Success("Updated %s of %s (HTTP %d)", aspectName, entityUrn, status)
		return nil
	})
}
