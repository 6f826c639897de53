package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/wordcoach/internal/database"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}

			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Open() > %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			applied, err := database.Migrate(cmd.Context(), db, cfg.Database.Driver)
			if err != nil {
				return fmt.Errorf("database.Migrate() > %w", err)
			}
			p := newPrinter(cmd.OutOrStdout())
			if len(applied) == 0 {
				_, _ = fmt.Fprintln(p.out, "Database is up to date.")
				return nil
			}
			for _, name := range applied {
				_, _ = p.good.Fprintf(p.out, "applied %s\n", name)
			}
			return nil
		},
	}
}
