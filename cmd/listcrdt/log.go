package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikhilsahni/listcrdt/encoding"
	"github.com/nikhilsahni/listcrdt/id"
)

var logCmd = &cobra.Command{
	Use:   "log <file>",
	Short: "Print the history DAG of a list-crdt container file, one entry per line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := encoding.LoadFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, e := range res.OpLog.IterHistory() {
			parents := make([]id.CRDTId, 0, len(e.Parents))
			for _, p := range e.Parents {
				if p == id.RootTime {
					parents = append(parents, id.Root)
					continue
				}
				cid, err := res.OpLog.LVToCRDTId(p)
				if err != nil {
					return err
				}
				parents = append(parents, cid)
			}
			fmt.Fprintf(out, "[%d,%d) parents=%v\n", e.Span.Start, e.Span.End, parents)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
}
