package display

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Out receives command results. Tests swap it for a buffer.
var Out io.Writer = os.Stdout

// ShouldOutputJSON determines if a command should output JSON based on its flags
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}

	// Check if --json flag was explicitly set on the command itself
	if cmd.Flags().Changed("json") {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		return jsonFlag
	}

	// Check global --json flag
	globalFlag, _ := cmd.Root().PersistentFlags().GetBool("json")
	return globalFlag
}

// OutputJSON marshals and prints JSON using display.MarshalJSON
func OutputJSON(v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(Out, string(data))
	return nil
}

// Output prints v as JSON when the command asks for it, otherwise calls human.
func Output(cmd *cobra.Command, v interface{}, human func() error) error {
	if ShouldOutputJSON(cmd) {
		return OutputJSON(v)
	}
	return human()
}
