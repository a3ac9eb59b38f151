package main

import (
	"github.com/spf13/cobra"

	"github.com/nikhilsahni/listcrdt/branch"
	"github.com/nikhilsahni/listcrdt/encoding"
	"github.com/nikhilsahni/listcrdt/idgen"
	"github.com/nikhilsahni/listcrdt/oplog"
)

var (
	createAgent string
	createText  string
)

var createCmd = &cobra.Command{
	Use:   "create <file>",
	Short: "Create a new list-crdt container file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		agentName := createAgent
		if agentName == "" {
			agentName = idgen.NewAgent()
		}

		log := oplog.New()
		agent := log.GetOrCreateAgent(agentName)
		b := branch.New(log)
		if createText != "" {
			if err := b.Insert(agent, 0, createText); err != nil {
				return err
			}
		}
		return encoding.SaveFile(path, log, encoding.EncodeOptions{})
	},
}

func init() {
	createCmd.Flags().StringVar(&createAgent, "agent", "", "agent name to attribute the initial content to (default: a random id)")
	createCmd.Flags().StringVar(&createText, "text", "", "initial document content")
	rootCmd.AddCommand(createCmd)
}
