// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/fitlens/internal/dataset"
)

func newExportCmd(st *state) *cobra.Command {
	var (
		out   string
		since time.Duration
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tracked events to Parquet",
		Long: `Write recorded clicks and likes to a snappy-compressed Parquet file for
offline analysis or for building a labeled training set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			ctx := cmd.Context()

			db, err := openStore(ctx, st.cfg)
			if err != nil {
				return err
			}
			defer closeStore(db)

			var from int64
			if since > 0 {
				from = time.Now().Add(-since).Unix()
			}
			events, err := db.ListEvents(ctx, from)
			if err != nil {
				return fmt.Errorf("list events: %w", err)
			}
			if err := dataset.ExportParquetFile(out, events); err != nil {
				return err
			}

			cmd.Printf("Exported %d events to %s\n", len(events), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output Parquet file")
	cmd.Flags().DurationVar(&since, "since", 0, "only events newer than this (e.g. 24h), 0 for all")
	return cmd
}
