// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package cli

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/fitlens/internal/app"
	"github.com/tomtom215/fitlens/internal/logging"
	"github.com/tomtom215/fitlens/internal/metrics"
)

func newServeCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long:  `Run the FitLens API server under the supervisor tree until interrupted. Equivalent to the standalone server binary.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			metrics.SetAppInfo(version)

			a, err := app.New(ctx, st.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Run(ctx); err != nil {
				return err
			}
			logging.Info().Msg("Server stopped gracefully")
			return nil
		},
	}
}
