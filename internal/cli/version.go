package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			version := "(devel)"
			revision := ""
			if info, ok := debug.ReadBuildInfo(); ok {
				if info.Main.Version != "" {
					version = info.Main.Version
				}
				for _, setting := range info.Settings {
					if setting.Key == "vcs.revision" {
						revision = setting.Value
					}
				}
			}
			if revision != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "parley %s (%s)\n", version, revision)
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "parley %s\n", version)
		},
	}
}
