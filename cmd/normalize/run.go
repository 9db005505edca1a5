package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-dataset/internal/bootstrap"
	"github.com/spec-kit/ticket-dataset/internal/domain"
)

func newRunCmd() *cobra.Command {
	var (
		sources  []string
		outDir   string
		logsDir  string
		workers  int
		workbook bool
		persist  bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline over the configured sources",
		Example: `  normalize run --source kaggle_1=data/raw/kaggle1.csv --source synthetic=data/raw/synthetic.csv
  normalize run --out data/s3 --logs logs --xlsx`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			flags := cmd.Flags()
			if flags.Changed("source") {
				cfg.Pipeline.Sources = sources
			}
			if flags.Changed("out") {
				cfg.Pipeline.OutDir = outDir
			}
			if flags.Changed("logs") {
				cfg.Pipeline.LogsDir = logsDir
			}
			if flags.Changed("workers") {
				cfg.Pipeline.Workers = workers
			}
			if flags.Changed("xlsx") {
				cfg.Pipeline.ExportXLSX = workbook
			}
			if flags.Changed("persist") {
				cfg.Pipeline.Persist = persist
			}

			c, err := bootstrap.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer c.Close()

			report, err := c.Pipeline.Run(cmd.Context())
			if err != nil {
				return err
			}
			renderReport(report)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringArrayVarP(&sources, "source", "s", nil, "source as name=path (repeatable)")
	flags.StringVar(&outDir, "out", "", "dataset output directory")
	flags.StringVar(&logsDir, "logs", "", "change log and report directory")
	flags.IntVar(&workers, "workers", 0, "parallel workers (0 = one per CPU)")
	flags.BoolVar(&workbook, "xlsx", false, "also write the XLSX workbook")
	flags.BoolVar(&persist, "persist", true, "upsert the dataset into Postgres when configured")
	return cmd
}

func renderReport(r domain.RunReport) {
	fmt.Printf("run %s %s in %s (processing time %s)\n",
		r.ID, r.Status, r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond), r.ProcessingTime)

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetTitle("Tickets")
	tw.AppendHeader(table.Row{"Channel", "Rows"})
	for _, ch := range domain.Channels {
		tw.AppendRow(table.Row{ch, r.ByChannel[ch]})
	}
	tw.AppendFooter(table.Row{"Total", r.Total})
	tw.Render()

	tw = table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetTitle("Categories")
	tw.AppendHeader(table.Row{"Category", "Rows"})
	for _, c := range domain.Categories {
		tw.AppendRow(table.Row{c, r.ByCategory[c]})
	}
	tw.Render()

	names := make([]string, 0, len(r.DictionaryImpact))
	for name := range r.DictionaryImpact {
		names = append(names, name)
	}
	sort.Strings(names)
	tw = table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetTitle("Dictionary impact")
	tw.AppendHeader(table.Row{"Source", "Rows", "Reinforced", "Penalized", "Adjusted by rules"})
	for _, name := range names {
		imp := r.DictionaryImpact[name]
		tw.AppendRow(table.Row{name, imp.Rows, imp.RowsWithAdd, imp.RowsWithNeg, imp.RowsAdjustedByRules})
	}
	tw.Render()

	tw = table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetTitle("Close timestamp repairs")
	tw.AppendHeader(table.Row{"Rule", "Changes"})
	for _, rule := range domain.RepairRules {
		tw.AppendRow(table.Row{rule, r.ChangesByRule[rule]})
	}
	tw.Render()

	fmt.Println("dataset:", r.Outputs.Dataset)
	fmt.Println("change log:", r.Outputs.ChangeLog)
	if r.Outputs.Workbook != "" {
		fmt.Println("workbook:", r.Outputs.Workbook)
	}
}
