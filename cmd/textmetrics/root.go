package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tsawler/textmetrics"
	"github.com/tsawler/textmetrics/internal/config"
	"github.com/tsawler/textmetrics/internal/lexicon"
	"github.com/tsawler/textmetrics/internal/ui"
)

var (
	cfgFile     string
	workersFlag int
	quietFlag   bool
	noColorFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "textmetrics",
	Short: "Readability and sentiment metrics for web articles",
	Long: `textmetrics downloads a list of articles, extracts their text and
scores each one for sentiment (positive, negative, polarity, subjectivity)
and readability (sentence length, complex words, fog index, syllables,
personal pronouns, word length).

Usage:
  textmetrics init              Write the default configuration
  textmetrics analyze           Score every article in the input file
  textmetrics text [file]       Score a local text file or stdin
  textmetrics summary [report]  Distribution of each metric in a report
  textmetrics history           List past runs
  textmetrics serve             Start the HTTP API`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColorFlag {
			ui.SetColor(false)
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Redf("error: %v", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.textmetrics/config.yaml)")
	rootCmd.PersistentFlags().IntVar(&workersFlag, "workers", 0, "articles processed at once (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "suppress progress logging")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored output")
}

// loadConfig resolves defaults, the config file, TEXTMETRICS_* variables
// and the persistent flags, in that order.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("determine config path: %w", err)
		}
	}

	cfg, err := config.Resolve(path)
	if err != nil {
		return nil, err
	}

	if workersFlag > 0 {
		cfg.Workers = workersFlag
	}
	return cfg, nil
}

func newLogger() *log.Logger {
	if quietFlag {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "textmetrics ", log.LstdFlags|log.LUTC)
}

func newAnalyzer(cfg *config.Config) (*textmetrics.Analyzer, error) {
	lex, err := lexicon.Load(cfg.Lexicon)
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}
	match, err := textmetrics.ParseStopwordMatch(cfg.Lexicon.Match)
	if err != nil {
		return nil, err
	}
	return textmetrics.NewAnalyzer(lex,
		textmetrics.WithStopwordMatch(match),
		textmetrics.WithWorkers(cfg.Workers),
	)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
