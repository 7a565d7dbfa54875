package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"prospect-engine/internal/store"
)

var errNoDatabase = errors.New("no database configured (DATABASE_URL env or database.url)")

func newMigrateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Args:  cobra.NoArgs,
		Short: "Create the company and person tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Database.URL) == "" {
				return errNoDatabase
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}

			st, err := store.Open(cmd.Context(), cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()
			if err := st.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("[store] schema up to date")
			return nil
		},
	}
}
