package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/weaver"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of weaver",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "weaver version %s\n", strings.TrimSpace(weaver.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
