package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/tsawler/textmetrics/internal/store"
	"github.com/tsawler/textmetrics/internal/tabular"
	"github.com/tsawler/textmetrics/internal/ui"
)

var (
	historyLimit  int
	historyOutput string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past analysis runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openHistory()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signalContext()
		defer stop()

		runs, err := st.ListRuns(ctx, historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println(ui.Dimf("No runs recorded yet."))
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Run", "Input", "Started", "Articles", "Succeeded", "Failed", "Status"})
		table.SetBorder(false)
		table.SetAutoFormatHeaders(false)
		table.SetColumnAlignment([]int{
			tablewriter.ALIGN_LEFT,
			tablewriter.ALIGN_LEFT,
			tablewriter.ALIGN_LEFT,
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_LEFT,
		})

		for _, r := range runs {
			table.Append([]string{
				ui.Cyanf("%s", r.ID),
				r.Input,
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				fmt.Sprintf("%d", r.Articles),
				fmt.Sprintf("%d", r.Succeeded),
				fmt.Sprintf("%d", r.Failed),
				ui.RunStatus(r.FinishedAt != nil, r.Failed),
			})
		}
		table.Render()
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the rows of a past run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", args[0], err)
		}

		st, err := openHistory()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signalContext()
		defer stop()

		if _, err := st.GetRun(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("run %s not found", id)
			}
			return err
		}

		rows, err := st.RunRows(ctx, id)
		if err != nil {
			return err
		}

		if historyOutput != "" {
			if err := tabular.WriteFile(historyOutput, "", rows); err != nil {
				return err
			}
			fmt.Printf("Wrote %d rows to %s\n", len(rows), ui.Cyanf("%s", historyOutput))
			return nil
		}
		return tabular.WriteTable(os.Stdout, rows)
	},
}

func openHistory() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Database == "" {
		return nil, errors.New("no database configured (set database in the config or TEXTMETRICS_DATABASE)")
	}
	return store.Open(cfg.Database, newLogger())
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to list")
	historyShowCmd.Flags().StringVarP(&historyOutput, "output", "o", "", "write the rows to a report file instead of printing them")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}
