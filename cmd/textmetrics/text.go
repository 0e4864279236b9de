package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/tsawler/textmetrics"
	"github.com/tsawler/textmetrics/internal/ui"
)

var textJSON bool

var textCmd = &cobra.Command{
	Use:   "text [file]",
	Short: "Score a local text file, or stdin when no file is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var data []byte
		if len(args) == 1 && args[0] != "-" {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return fmt.Errorf("read text: %w", err)
		}

		analyzer, err := newAnalyzer(cfg)
		if err != nil {
			return err
		}
		fv := analyzer.Analyze(string(data))

		if textJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(fv)
		}
		printFeatures(fv)
		return nil
	},
}

func printFeatures(fv textmetrics.FeatureVector) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetBorder(false)
	table.SetAutoFormatHeaders(false)
	table.SetColumnSeparator("  ")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	columns := textmetrics.MetricColumns()
	for i, v := range fv.Values() {
		var value string
		switch {
		case textmetrics.IntegerColumn(i):
			value = fmt.Sprintf("%d", int(v))
		case columns[i] == "POLARITY SCORE":
			value = ui.PolarityColor(v)
		case columns[i] == "FOG INDEX":
			value = ui.FogColor(v)
		default:
			value = fmt.Sprintf("%.4f", v)
		}
		table.Append([]string{columns[i], value})
	}
	table.Render()
}

func init() {
	textCmd.Flags().BoolVar(&textJSON, "json", false, "print the metrics as JSON")
	rootCmd.AddCommand(textCmd)
}
