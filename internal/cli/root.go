// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/fitlens/internal/config"
	"github.com/tomtom215/fitlens/internal/logging"
)

// All linker flags are set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// state is shared by every subcommand. The configuration is loaded once in
// the root PersistentPreRunE.
type state struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

// NewRootCmd builds the fitlens command tree.
func NewRootCmd() *cobra.Command {
	st := &state{}

	root := &cobra.Command{
		Use:           "fitlens",
		Short:         "Trait-aware clothing recommendations.",
		Long:          `FitLens ranks catalog clothing for a person's appearance traits and tracks how they engage with the results.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.load()
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&st.configPath, "config", "", "config file (default: CONFIG_PATH or ./config.yaml)")
	root.PersistentFlags().StringVar(&st.logLevel, "log-level", "", "override LOG_LEVEL")

	root.AddCommand(
		newServeCmd(st),
		newGenerateCmd(),
		newTrainCmd(st),
		newExportCmd(st),
		newSeedCmd(st),
		newMCPCmd(st),
		newVersionCmd(),
	)
	return root
}

// load reads the configuration and initializes logging. Logs go to stderr
// so stdout stays free for command output and the MCP protocol.
func (st *state) load() error {
	if st.configPath != "" {
		if err := os.Setenv(config.ConfigPathEnvVar, st.configPath); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if st.logLevel != "" {
		cfg.Logging.Level = st.logLevel
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
		Output: os.Stderr,
	})
	st.cfg = cfg
	return nil
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
