package main

import (
	"fmt"
	"os"

	"github.com/aretw0/weaver/internal/cli"
	"github.com/aretw0/weaver/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "weaver",
	Short: "Weaver turns a goal and source material into a reviewed, executed task blueprint",
	Long: `Weaver manages projects through a fixed lifecycle: init, ingest, plan, run.
An orchestrator model drafts a blueprint of tasks from the goal and corpus, a human
may review it, and task models execute it one step at a time with durable progress.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[weaver][error] %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", "", "Directory holding project state (overrides config)")
	rootCmd.PersistentFlags().String("config", config.DefaultConfigFile, "Path to the YAML configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
}

// loadConfig reads the configuration and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, err
	}
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.Dir = dir
	}
	return cfg, nil
}

// loadApp builds the engine for a command. Callers must Close the returned App.
func loadApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	logger, err := cli.NewLogger(cfg, debug)
	if err != nil {
		return nil, err
	}
	return cli.Build(cfg, logger)
}
