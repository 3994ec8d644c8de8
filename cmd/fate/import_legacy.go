package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/fate/internal/importer/legacy"
)

func newImportLegacyCmd(a *app) *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:     "import-legacy FILE",
		Aliases: []string{"load-legacy"},
		Short:   "Import profiles and fast channels from a legacy YAML database",
		Long: `Reads a YAML file written by earlier releases and copies its fast channels
and profiles into the configured database. Profiles that already exist are
left untouched, so the import may be repeated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := legacy.DecodeFile(args[0])
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), a.cfg.Database, a.logger)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer store.Close()

			sum, err := legacy.New(store, prefix, a.logger).Run(cmd.Context(), doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"imported %d profile(s) with %d entries, skipped %d existing, enabled %d fast channel(s)\n",
				sum.Profiles, sum.Entries, sum.Skipped, sum.Channels)
			if sum.UnknownKeys > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "ignored %d unknown sheet key(s)\n", sum.UnknownKeys)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "id-prefix", "discord:", "prefix added to legacy user and channel ids")
	return cmd
}
