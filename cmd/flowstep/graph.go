package main

import (
	"github.com/aretw0/flowstep/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <network-file>",
	Short: "Export the network or residual graph",
	Long: `Builds the network from a file, optionally runs some steps, and writes the
forward or residual graph as Mermaid, DOT, SVG or JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("view")
		format, _ := cmd.Flags().GetString("format")
		steps, _ := cmd.Flags().GetInt("steps")
		solve, _ := cmd.Flags().GetBool("solve")
		if solve {
			steps = -1
		}

		return cli.Graph(cmd.Context(), cli.GraphOptions{
			File:      args[0],
			Overrides: overrides(cmd),
			View:      kind,
			Format:    format,
			Steps:     steps,
		}, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("view", "network", "View to render: network or residual")
	graphCmd.Flags().StringP("format", "f", cli.FormatMermaid, "Output format: mermaid, dot, svg or json")
	graphCmd.Flags().Int("steps", 0, "Steps to run before rendering")
	graphCmd.Flags().Bool("solve", false, "Run to termination before rendering")
	addEngineFlags(graphCmd)
}
