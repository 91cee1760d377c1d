package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/gmsctl/display"
	"github.com/teranos/gmsctl/version"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show gmsctl version information",
	Long:  `Display version, build time, commit hash, and platform information for the gmsctl binary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		return display.Output(cmd, info, func() error {
			fmt.Fprintln(display.Out, info.String())
			fmt.Fprintf(display.Out, "Platform: %s\n", info.Platform)
			fmt.Fprintf(display.Out, "Go: %s\n", info.GoVersion)
			return nil
		})
	},
}
