package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "migrate",
		Aliases: []string{"create-tables"},
		Short:   "Create or upgrade the database schema",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()
			version, err := migrateDatabase(a.cfg.Database)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema at version %d [%s]\n",
				a.cfg.Database.Driver, version, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}
