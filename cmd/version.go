package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/example-api/internal/health"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			v := Version
			if v == "" {
				v = health.DefaultVersion
			}
			fmt.Fprintf(cmd.OutOrStdout(), "example-api %s (%s)\n", v, runtime.Version())
		},
	}
}
