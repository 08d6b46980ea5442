package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banshee-data/stopwindow/internal/evalstore"
)

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|version]",
		Short:     "Manage the evaluation database schema.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			s, err := evalstore.Open(a.cfg.Database, a.clock)
			if err != nil {
				return err
			}
			defer s.Close()

			switch action {
			case "up":
				err = s.MigrateUp()
			case "down":
				err = s.MigrateDown()
			}
			if err != nil {
				return err
			}

			version, dirty, err := s.MigrateVersion()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t)\n", version, dirty)
			return err
		},
	}
}
