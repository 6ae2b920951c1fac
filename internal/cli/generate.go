// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/fitlens/internal/dataset"
)

func newGenerateCmd() *cobra.Command {
	opts := dataset.DefaultSyntheticOptions()
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic labeled training CSV",
		Long: `Generate simulated recommendation slates with like/no-like labels.

The output has the columns the trainer reads, so it can bootstrap a model
before real engagement data exists. The same --seed always produces the
same file.`,
		Args: cobra.NoArgs,
		// No configuration needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			var w io.Writer = cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(out) //nolint:gosec // operator-supplied path
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer func() {
					if cerr := f.Close(); cerr != nil && err == nil {
						err = cerr
					}
				}()
				w = f
			}

			n, err := dataset.GenerateSynthetic(w, opts)
			if err != nil {
				return err
			}
			if out != "-" {
				cmd.Printf("Wrote %d rows to %s\n", n, out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "training.csv", `output file, "-" for stdout`)
	cmd.Flags().IntVar(&opts.Sessions, "sessions", opts.Sessions, "number of simulated sessions")
	cmd.Flags().IntVar(&opts.ItemsPerSession, "items", opts.ItemsPerSession, "items per session slate")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 42, "random seed")
	return cmd
}
