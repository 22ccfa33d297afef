package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tbxark/hotelagent/config"
)

var rootCmd = &cobra.Command{
	Use:          "hotelagent",
	Short:        "Hotel booking dialog assistant",
	Long:         `hotelagent collects, checks and changes hotel reservations through a multi-turn conversation.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("log-level", "", "Override log.level (debug, info, warn, error)")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	return cfg, nil
}
