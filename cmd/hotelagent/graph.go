package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tbxark/hotelagent/agent"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the dialog graph",
	Long:  `Outputs a Mermaid diagram (graph TD) of the booking dialog nodes and transitions.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(agent.RenderMermaid())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
