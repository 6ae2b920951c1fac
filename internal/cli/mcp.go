// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package cli

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/fitlens/internal/app"
	"github.com/tomtom215/fitlens/internal/database"
	"github.com/tomtom215/fitlens/internal/logging"
	"github.com/tomtom215/fitlens/internal/mcp"
)

func newMCPCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the FitLens MCP server on stdio",
		Long: `Launch a Model Context Protocol server that lets AI agents request
recommendations through the recommend_products tool. The catalog and the
model store come from the normal configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, err := openStore(ctx, st.cfg)
			if err != nil {
				return err
			}
			defer closeStore(db)

			catalog := database.NewCatalogBreaker(db, st.cfg.Database.Breaker)
			engine, err := app.NewEngine(&st.cfg.Recommend, catalog, nil, logging.WithComponent("recommend"))
			if err != nil {
				return err
			}

			// stdout carries the protocol; logs stay on stderr.
			return mcp.ServeStdio(engine, version)
		},
	}
}
