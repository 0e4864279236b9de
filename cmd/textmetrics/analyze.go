package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tsawler/textmetrics/internal/batch"
	"github.com/tsawler/textmetrics/internal/cache"
	"github.com/tsawler/textmetrics/internal/config"
	"github.com/tsawler/textmetrics/internal/fetch"
	"github.com/tsawler/textmetrics/internal/observability"
	"github.com/tsawler/textmetrics/internal/store"
	"github.com/tsawler/textmetrics/internal/tabular"
	"github.com/tsawler/textmetrics/internal/ui"
)

var (
	analyzeInput   string
	analyzeOutput  string
	analyzeFormat  string
	analyzeRefresh bool
	analyzeTable   bool
	analyzeUpload  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score every article listed in the input file",
	Long: `Reads URL_ID and URL columns from the input (xlsx, csv or an RSS/Atom
feed URL), fetches each article unless its text is cached, scores it and
writes one row per article to the output report.

Articles that cannot be fetched are reported with zero metrics and counted
as failed; they never stop the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if analyzeInput != "" {
			cfg.Input = analyzeInput
		}
		if analyzeOutput != "" {
			cfg.Output = analyzeOutput
		}

		var format tabular.Format
		if analyzeFormat != "" {
			if format, err = tabular.ParseFormat(analyzeFormat); err != nil {
				return err
			}
		}

		ctx, stop := signalContext()
		defer stop()

		logger := newLogger()

		report, err := runAnalysis(ctx, cfg, format, analyzeRefresh, logger)
		if err != nil {
			return err
		}

		if analyzeTable {
			if err := tabular.WriteTable(os.Stdout, report.Rows); err != nil {
				return err
			}
			fmt.Println()
		}

		fmt.Printf("%s %s, %s in %s\n",
			ui.Boldf("Analyzed %d articles:", len(report.Rows)),
			ui.Greenf("%d succeeded", report.Succeeded),
			failedLabel(report.Failed),
			report.Duration.Round(time.Millisecond),
		)
		fmt.Printf("Report written to %s\n", ui.Cyanf("%s", cfg.Output))
		if report.RunID != uuid.Nil {
			fmt.Println(ui.Dimf("Run %s recorded", report.RunID))
		}

		if analyzeUpload || cfg.Upload.Enabled() {
			key, err := uploadReport(ctx, cfg, cfg.Output)
			if err != nil {
				return err
			}
			fmt.Printf("Uploaded to s3://%s/%s\n", cfg.Upload.Bucket, key)
		}

		return nil
	},
}

// runAnalysis scores every input listed in cfg.Input and writes the report
// to cfg.Output. An input without articles still produces a header-only
// report.
func runAnalysis(ctx context.Context, cfg *config.Config, format tabular.Format, refresh bool, logger *log.Logger) (batch.Report, error) {
	inputs, err := tabular.ReadInputs(ctx, cfg.Input)
	if err != nil {
		return batch.Report{}, fmt.Errorf("read inputs: %w", err)
	}
	if len(inputs) == 0 {
		logger.Printf("no articles listed in %s", cfg.Input)
	}

	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return batch.Report{}, err
	}

	var history *store.Store
	if cfg.Database != "" {
		history, err = store.Open(cfg.Database, logger)
		if err != nil {
			return batch.Report{}, err
		}
		defer history.Close()
	}

	textCache, err := openCache(cfg, history, logger)
	if err != nil {
		return batch.Report{}, err
	}
	defer textCache.Close()

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	runner := batch.NewRunner(analyzer, fetch.FromConfig(cfg.Fetch), batch.Options{
		Cache:   textCache,
		History: history,
		Metrics: metrics,
		Logger:  logger,
		Workers: cfg.Workers,
		Refresh: refresh,
	})

	report, err := runner.Run(ctx, cfg.Input, inputs)
	if err != nil {
		return batch.Report{}, err
	}

	if err := tabular.WriteFile(cfg.Output, format, report.Rows); err != nil {
		return batch.Report{}, fmt.Errorf("write report: %w", err)
	}

	if cfg.Metrics.Textfile != "" {
		if err := observability.WriteTextfile(cfg.Metrics.Textfile, reg); err != nil {
			logger.Printf("warn: %v", err)
		}
	}
	return report, nil
}

func failedLabel(n int) string {
	if n == 0 {
		return ui.Dimf("0 failed")
	}
	return ui.Redf("%d failed", n)
}

// openCache returns the configured text cache. Database backends reuse the
// history store when one is open.
func openCache(cfg *config.Config, history *store.Store, logger *log.Logger) (cache.Cache, error) {
	backend := strings.ToLower(cfg.Cache.Backend)
	if history != nil && (backend == "sqlite" || backend == "postgres") {
		return cache.NewStore(history, false), nil
	}
	c, err := cache.Open(cfg.Cache, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return c, nil
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "input file or feed URL (overrides config)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "output report path (overrides config)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "", "report format: xlsx, csv, json or table (default: from output extension)")
	analyzeCmd.Flags().BoolVar(&analyzeRefresh, "refresh", false, "fetch every article even when its text is cached")
	analyzeCmd.Flags().BoolVar(&analyzeTable, "table", false, "also print the report as a table")
	analyzeCmd.Flags().BoolVar(&analyzeUpload, "upload", false, "upload the report to the configured S3 bucket")
	rootCmd.AddCommand(analyzeCmd)
}
