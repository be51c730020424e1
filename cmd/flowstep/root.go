package main

import (
	"fmt"
	"os"

	"github.com/aretw0/flowstep/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flowstep",
	Short: "flowstep steps through the labeling maximum flow algorithm",
	Long: `flowstep runs the Ford-Fulkerson labeling algorithm one elementary step at a
time. Every step can be undone, and runs can be saved as sessions and resumed.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Project directory holding .flowstep/sessions")
	rootCmd.PersistentFlags().String("store", "", "Session store: file, memory or redis (default file, or redis when a URL is set)")
	rootCmd.PersistentFlags().String("redis-url", "", "Redis URL for the redis store (default $"+cli.EnvRedisURL+")")
	rootCmd.PersistentFlags().Bool("debug", false, "Log engine events to stderr")
}

func storeOptions(cmd *cobra.Command) cli.StoreOptions {
	dir, _ := cmd.Flags().GetString("dir")
	kind, _ := cmd.Flags().GetString("store")
	url, _ := cmd.Flags().GetString("redis-url")
	return cli.StoreOptions{Kind: kind, Dir: dir, RedisURL: url}
}

// addEngineFlags registers the flags that override network file options.
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().String("granularity", "", "Step granularity: scan or select")
	cmd.Flags().String("labeling", "", "Labeling mode: residual or forward")
	cmd.Flags().Int("history-limit", -1, "Maximum undo depth (0 keeps every step)")
}

func overrides(cmd *cobra.Command) cli.Overrides {
	g, _ := cmd.Flags().GetString("granularity")
	l, _ := cmd.Flags().GetString("labeling")
	h, _ := cmd.Flags().GetInt("history-limit")
	return cli.Overrides{Granularity: g, Labeling: l, HistoryLimit: h}
}
