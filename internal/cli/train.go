// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/tomtom215/fitlens/internal/dataset"
	"github.com/tomtom215/fitlens/internal/recommend"
	"github.com/tomtom215/fitlens/internal/recommend/algorithms"
	"github.com/tomtom215/fitlens/internal/recommend/storage"
)

const topWeightCount = 10

func newTrainCmd(st *state) *cobra.Command {
	var csvPath, modelDir string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the logistic model from a labeled CSV",
		Long: `Fit the logistic regression scorer on a labeled slate CSV and save it
to the model store as a new version. A running server picks the new model
up after its next training run or restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if csvPath == "" {
				csvPath = st.cfg.Recommend.TrainingCSV
			}
			if modelDir == "" {
				modelDir = st.cfg.Recommend.ModelPath
			}
			if csvPath == "" {
				return fmt.Errorf("--csv is required when recommend.training_csv is not configured")
			}

			rows, err := dataset.NewFileSource(csvPath).GetTrainingRows(ctx)
			if err != nil {
				return err
			}
			engineCfg := st.cfg.Recommend.Engine()
			if need := engineCfg.Training.MinInteractions; len(rows) < need {
				return fmt.Errorf("%w: %d rows, need %d", recommend.ErrInsufficientData, len(rows), need)
			}

			store, err := storage.NewStore(modelDir)
			if err != nil {
				return err
			}
			scorer := algorithms.NewLogisticScorer(store)
			scorer.Configure(engineCfg)

			start := time.Now()
			result, err := scorer.Train(ctx, rows)
			if err != nil {
				return fmt.Errorf("train: %w", err)
			}
			weights, err := scorer.TopWeights(ctx, topWeightCount)
			if err != nil {
				return err
			}

			return writeTrainingSummary(cmd.OutOrStdout(), result, weights, store.Dir(), time.Since(start))
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "labeled training CSV (default: recommend.training_csv)")
	cmd.Flags().StringVar(&modelDir, "model-dir", "", "model store directory (default: recommend.model_path)")
	return cmd
}

// writeTrainingSummary renders the result and the strongest coefficients
// as two tables.
func writeTrainingSummary(w io.Writer, result *recommend.TrainingResult, weights []algorithms.FeatureWeight, dir string, elapsed time.Duration) error {
	summary := tablewriter.NewWriter(w)
	defer func() { _ = summary.Close() }()

	summary.Header([]string{"Metric", "Value"})
	if err := summary.Bulk([][]string{
		{"Rows", strconv.Itoa(result.Rows)},
		{"Train / validation", fmt.Sprintf("%d / %d", result.TrainRows, result.ValidRows)},
		{"Positives", strconv.Itoa(result.Positives)},
		{"Features", strconv.Itoa(result.Features)},
		{"Validation AUC", strconv.FormatFloat(result.ValidationAUC, 'f', 4, 64)},
		{"Model version", strconv.Itoa(result.Version)},
		{"Model store", dir},
		{"Duration", elapsed.Round(time.Millisecond).String()},
	}); err != nil {
		return err
	}
	if err := summary.Render(); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Rank", "Feature", "Weight"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	data := make([][]string, len(weights))
	for i, fw := range weights {
		data[i] = []string{strconv.Itoa(i + 1), fw.Feature, strconv.FormatFloat(fw.Weight, 'f', 4, 64)}
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Showing top %d of %d features\n", len(weights), result.Features)
	return err
}
