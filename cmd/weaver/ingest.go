package main

import (
	"github.com/aretw0/weaver/internal/cli"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <name> <sources...>",
	Short: "Add source material to a project corpus",
	Long: `Reads each source (a local path or an http(s) URL) and appends it to the corpus.
Nothing is stored unless every source can be read. Ingesting into a planned project
discards its blueprint.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		state, err := app.Engine.Ingest(cmd.Context(), args[0], args[1:])
		if err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Ingested %d source(s); corpus now holds %d.", len(args)-1, len(state.Corpus))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
