package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/flowstep"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of flowstep",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "flowstep version %s\n", strings.TrimSpace(flowstep.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
