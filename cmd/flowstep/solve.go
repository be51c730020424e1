package main

import (
	"github.com/aretw0/flowstep/internal/cli"
	"github.com/spf13/cobra"
)

var solveCmd = &cobra.Command{
	Use:   "solve <network-file>",
	Short: "Run the algorithm to termination and print the flow and the minimum cut",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		jsonMode, _ := cmd.Flags().GetBool("json")
		trace, _ := cmd.Flags().GetBool("trace")
		maxSteps, _ := cmd.Flags().GetInt("max-steps")

		return cli.Solve(cmd.Context(), cli.SolveOptions{
			File:      args[0],
			Overrides: overrides(cmd),
			MaxSteps:  maxSteps,
			Trace:     trace,
			JSON:      jsonMode,
			Debug:     debug,
		}, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(solveCmd)

	solveCmd.Flags().Bool("json", false, "Print the final session as JSON")
	solveCmd.Flags().Bool("trace", false, "Print every step")
	solveCmd.Flags().Int("max-steps", 0, "Stop after this many steps (0 means no limit)")
	addEngineFlags(solveCmd)
}
