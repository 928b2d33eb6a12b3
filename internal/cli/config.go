package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/parley/internal/config"
)

func newConfigCmd(ctx *context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the job manifest",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the job manifest without running anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := config.Load(*ctx.manifestFile)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Manifest %s is valid (%d jobs)\n", *ctx.manifestFile, len(doc.Jobs))
			for _, name := range config.JobNames(doc) {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: worker %s\n", name, doc.Jobs[name].Worker)
			}
			return nil
		},
	})

	return cmd
}
