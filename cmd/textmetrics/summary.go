package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsawler/textmetrics"
	"github.com/tsawler/textmetrics/internal/tabular"
	"github.com/tsawler/textmetrics/internal/ui"
)

var summaryJSON bool

var summaryCmd = &cobra.Command{
	Use:   "summary [report]",
	Short: "Show mean, spread and range of each metric in a report",
	Long: `Reads a report written by 'textmetrics analyze' (xlsx, csv or json;
default: the configured output) and prints per-metric statistics over the
articles that were scored. Rows of failed articles are skipped when the
report records them (json reports).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path = cfg.Output
		}

		rows, err := tabular.ReadReport(path)
		if err != nil {
			return err
		}

		summaries := textmetrics.SummarizeRows(rows)
		if summaryJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if summaries == nil {
				summaries = []textmetrics.FieldSummary{}
			}
			return enc.Encode(summaries)
		}

		if len(summaries) == 0 {
			fmt.Println(ui.Dimf("No scored articles in %s.", path))
			return nil
		}

		fmt.Println(ui.Boldf("Metric Summary") + ui.Dimf(" (%s, %d rows)", path, len(rows)))
		fmt.Println()
		tabular.WriteSummary(os.Stdout, summaries)
		return nil
	},
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "print the statistics as JSON")
	rootCmd.AddCommand(summaryCmd)
}
