package main

import (
	"os"

	"github.com/aretw0/flowstep/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <network-file>",
	Short: "Step through a network interactively",
	Long: `Loads a network file (YAML, JSON or TOML) and steps through the labeling
algorithm on demand.

Commands: [enter] or n steps, p undoes, s solves, v shows the residual
network (v network for the forward one), q quits.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		jsonMode, _ := cmd.Flags().GetBool("json")
		plain, _ := cmd.Flags().GetBool("plain")
		watch, _ := cmd.Flags().GetBool("watch")
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		solveLimit, _ := cmd.Flags().GetInt("solve-limit")

		return cli.Execute(cmd.Context(), cli.RunOptions{
			File:       args[0],
			JSON:       jsonMode,
			Pretty:     !plain && term.IsTerminal(int(os.Stdout.Fd())),
			Debug:      debug,
			Watch:      watch,
			SessionID:  sessionID,
			Fresh:      fresh,
			SolveLimit: solveLimit,
			Store:      storeOptions(cmd),
			Overrides:  overrides(cmd),
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("json", false, "Run in JSON mode (JSON Lines input/output)")
	runCmd.Flags().Bool("plain", false, "Print markdown without terminal styling (implied when stdout is not a terminal)")
	runCmd.Flags().BoolP("watch", "w", false, "Restart the run when the network file changes")
	runCmd.Flags().StringP("session", "s", "", "Session ID to save progress under and resume from")
	runCmd.Flags().Bool("fresh", false, "Discard the stored session before starting")
	runCmd.Flags().Int("solve-limit", 0, "Maximum steps taken by one solve command (0 means no limit)")
	addEngineFlags(runCmd)
}
