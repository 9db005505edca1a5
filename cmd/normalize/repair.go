package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dataset/internal/export"
	"github.com/spec-kit/ticket-dataset/internal/normalize"
	"github.com/spec-kit/ticket-dataset/internal/service"
	"github.com/spec-kit/ticket-dataset/internal/timestamp"
	"github.com/spec-kit/ticket-dataset/internal/worker"
)

func newRepairCmd() *cobra.Command {
	var (
		in      string
		out     string
		changes string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Repair close timestamps of an already normalized dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in == "" || out == "" {
				return errors.New("--in and --out are required")
			}
			_, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			tickets, err := normalize.LoadDataset(in)
			if err != nil {
				return err
			}

			repairSvc := service.NewRepairService(worker.NewPool(workers), nil, nil)
			fixed, entries, now, err := repairSvc.RepairBatch(cmd.Context(), tickets)
			if err != nil {
				return err
			}
			if err := export.WriteDatasetFile(out, fixed); err != nil {
				return err
			}
			if changes == "" {
				changes = filepath.Join(filepath.Dir(out), export.ChangeLogFile)
			}
			sink := export.ChangeLogFileSink{Path: changes}
			if err := sink.Record(cmd.Context(), "", entries); err != nil {
				return err
			}

			logger.Info("dataset repaired",
				zap.String("in", in),
				zap.String("out", out),
				zap.Int("rows", len(fixed)),
				zap.Int("changes", len(entries)),
				zap.String("processing_time", timestamp.Format(now)))
			fmt.Printf("%d rows, %d close timestamps changed; change log at %s\n", len(fixed), len(entries), changes)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&in, "in", "", "normalized dataset to repair")
	flags.StringVar(&out, "out", "", "where to write the repaired dataset")
	flags.StringVar(&changes, "changes", "", "change log path (default: next to --out)")
	flags.IntVar(&workers, "workers", 0, "parallel workers (0 = one per CPU)")
	return cmd
}
