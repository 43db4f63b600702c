package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	infralogger "github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/example-api/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/example-api/internal/database"
)

func newMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrator(cmd.Context(), func(m *database.Migrator) error {
				return m.Down(steps)
			})
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrator(cmd.Context(), (*database.Migrator).Up)
			},
		},
		downCmd,
		&cobra.Command{
			Use:   "version",
			Short: "Show the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrator(cmd.Context(), func(m *database.Migrator) error {
					version, dirty, err := m.Version()
					if err != nil {
						return err
					}
					renderVersion(cmd, version, dirty)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Set the schema version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				return runMigrator(cmd.Context(), func(m *database.Migrator) error {
					return m.Force(version)
				})
			},
		},
	)

	return migrateCmd
}

func runMigrator(ctx context.Context, fn func(*database.Migrator) error) error {
	cfg, err := bootstrap.LoadConfig(cfgFile, Version)
	if err != nil {
		return err
	}

	log, err := bootstrap.CreateLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("Running migrations", infralogger.String("migrations_path", cfg.Database.MigrationsPath))
	return bootstrap.WithMigrator(ctx, cfg, log, fn)
}

func renderVersion(cmd *cobra.Command, version uint, dirty bool) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Version", "Dirty"})
	t.AppendRow(table.Row{version, dirty})
	t.Render()
}
