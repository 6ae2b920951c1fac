// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/fitlens/internal/app"
	"github.com/tomtom215/fitlens/internal/config"
	"github.com/tomtom215/fitlens/internal/database"
	"github.com/tomtom215/fitlens/internal/logging"
)

func newSeedCmd(st *state) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a JSON product catalog into the store",
		Long: `Upsert every product in a JSON array file into the catalog. Existing
products with the same id are replaced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			ctx := cmd.Context()

			db, err := openStore(ctx, st.cfg)
			if err != nil {
				return err
			}
			defer closeStore(db)

			n, err := db.SeedFile(ctx, file)
			if err != nil {
				return err
			}
			total, err := db.CountProducts(ctx)
			if err != nil {
				return err
			}

			cmd.Printf("Seeded %d products from %s (%d in catalog)\n", n, file, total)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "JSON catalog file")
	return cmd
}

// openStore opens the configured store without applying its seed file.
func openStore(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	dbCfg := cfg.Database
	dbCfg.SeedFile = ""
	return app.OpenDatabase(ctx, &dbCfg)
}

func closeStore(db *database.DB) {
	if err := db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}
