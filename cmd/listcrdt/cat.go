package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikhilsahni/listcrdt/branch"
	"github.com/nikhilsahni/listcrdt/encoding"
)

var catCmd = &cobra.Command{
	Use:   "cat <file>",
	Short: "Print a list-crdt container file's materialized content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := encoding.LoadFile(args[0])
		if err != nil {
			return err
		}
		b := branch.New(res.OpLog)
		if err := b.Checkout(res.OpLog.LocalVersion()); err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), b.Content())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
}
