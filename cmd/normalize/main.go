package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dataset/internal/config"
	"github.com/spec-kit/ticket-dataset/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize, categorize and repair support ticket exports",
	Long: `normalize unifies ticket exports from several sources into one dataset.
Rows are mapped to the canonical columns, categorized with the weighted
keyword engine and their close timestamps repaired. Every repair is written
to the change log.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(newRunCmd(), newCategorizeCmd(), newRepairCmd(), newHashSecretCmd())
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads the environment configuration and a logger for it.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}
