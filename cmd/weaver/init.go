package main

import (
	"strings"

	"github.com/aretw0/weaver/internal/cli"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init <name> <goal>",
	Short: "Create a project with a goal",
	Long:  `Creates a project in the CREATED stage. Words after the name are joined into the goal.`,
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		state, err := app.Engine.Initialize(cmd.Context(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Project '%s' created.", state.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
