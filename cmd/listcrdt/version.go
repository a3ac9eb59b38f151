package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// buildVersion is overridable at link time (-ldflags "-X main.buildVersion=...").
var buildVersion = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the listcrdt version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), buildVersion)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
