package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/example-api/internal/bootstrap"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server. The server stops gracefully on SIGINT or SIGTERM.
Set database.auto_migrate (DB_AUTO_MIGRATE=true) to apply pending migrations first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bootstrap.Start(cmd.Context(), bootstrap.Options{
				ConfigPath: cfgFile,
				Version:    Version,
			})
		},
	}
}
