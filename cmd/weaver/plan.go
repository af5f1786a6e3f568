package main

import (
	"fmt"

	"github.com/aretw0/weaver/internal/cli"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan <name>",
	Short: "Draft a blueprint with the orchestrator model",
	Long:  `Asks the orchestrator for an ordered list of tasks. Re-planning replaces the blueprint and resets progress.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		state, err := app.Engine.Plan(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		cli.PrintSystemMessage(out, "Blueprint with %d task(s):", len(state.Blueprint))
		for _, t := range state.Blueprint {
			if t.Model != "" {
				fmt.Fprintf(out, "  %d. [%s] %s\n", t.Index, t.Model, t.Description)
				continue
			}
			fmt.Fprintf(out, "  %d. %s\n", t.Index, t.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}
