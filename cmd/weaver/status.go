package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/weaver/internal/presentation/graph"
	"github.com/aretw0/weaver/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <name>",
	Short: "Show a project's stage, corpus and blueprint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		state, err := app.Engine.Status(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(state)
		}

		md := tui.BlueprintMarkdown(state)
		if isInteractive() {
			if rendered, err := tui.NewRenderer()(md); err == nil {
				md = rendered
			}
		}
		fmt.Fprint(out, md)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		names, err := app.Engine.List(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(names) == 0 {
			fmt.Fprintln(out, "No projects found.")
			return nil
		}
		for _, name := range names {
			state, err := app.Engine.Status(cmd.Context(), name)
			if err != nil {
				fmt.Fprintf(out, "- %s (unreadable: %v)\n", name, err)
				continue
			}
			fmt.Fprintf(out, "- %s %s %d/%d\n", name, tui.StageLabel(state.Stage), state.Cursor, len(state.Blueprint))
		}
		return nil
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph <name>",
	Short: "Export the blueprint as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart (graph TD) of the blueprint with task statuses highlighted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		state, err := app.Engine.Status(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(state))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(graphCmd)

	statusCmd.Flags().Bool("json", false, "Print the raw project state as JSON")
}
