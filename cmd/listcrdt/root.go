package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verbosity string

var rootCmd = &cobra.Command{
	Use:   "listcrdt",
	Short: "Inspect and edit list-crdt container files",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		lvl, err := logrus.ParseLevel(verbosity)
		if err != nil {
			return err
		}
		logrus.SetLevel(lvl)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&verbosity, "verbosity", "warn", "log level: trace, debug, info, warn, error")
}
