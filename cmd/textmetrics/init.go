package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsawler/textmetrics/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize textmetrics configuration",
	Long:  `Creates the configuration directory and default config file at ~/.textmetrics/config.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			var err error
			path, err = config.DefaultConfigPath()
			if err != nil {
				return fmt.Errorf("determine config path: %w", err)
			}
		}

		// An existing file is rewritten on top of the defaults to pick up new keys.
		if _, err := os.Stat(path); err == nil {
			cfg, loadErr := config.Load(path)
			if loadErr != nil {
				return fmt.Errorf("load existing config: %w", loadErr)
			}
			if err := config.Save(path, cfg); err != nil {
				return fmt.Errorf("update config: %w", err)
			}
			fmt.Printf("Configuration updated at %s (merged new defaults)\n", path)
			return nil
		}

		cfg := config.DefaultConfig()
		if err := config.Save(path, &cfg); err != nil {
			return fmt.Errorf("create config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", path)
		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Println("  1. Place Input.xlsx and the WordLists directory in your working directory,")
		fmt.Println("     or point input and lexicon paths in the config elsewhere.")
		fmt.Println()
		fmt.Println("  2. Run the analysis:")
		fmt.Println("     textmetrics analyze")
		fmt.Println()
		fmt.Println("  3. Inspect the results:")
		fmt.Println("     textmetrics summary Output.xlsx")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
