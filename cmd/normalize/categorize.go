package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-dataset/internal/categorize"
	"github.com/spec-kit/ticket-dataset/internal/domain"
)

func newCategorizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categorize <text>...",
		Short: "Score a text against every category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			res := categorize.Default().Score(strings.Join(args, " "))

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Category", "Keywords", "After rules", ""})
			for _, c := range categorize.PriorityOrder {
				mark := ""
				if c == res.Category {
					mark = "*"
				}
				tw.AppendRow(table.Row{c, res.Raw[c], res.Scores[c], mark})
			}
			tw.Render()

			fmt.Printf("category: %s (reinforcements %d, penalties %d, adjusted by rules %t)\n",
				res.Category, res.AddHits, res.NegHits, res.Adjusted)
			if res.Category == domain.CategoryDefault && res.Scores[domain.CategoryDefault] <= 0 {
				fmt.Println("no category scored above zero; default applied")
			}
			return nil
		},
	}
}
