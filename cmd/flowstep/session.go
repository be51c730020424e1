package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/flowstep/internal/cli"
	"github.com/aretw0/flowstep/internal/dto"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persistent sessions",
	Long:  `List, inspect, and remove sessions saved by 'run --session', the HTTP server or the MCP server.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := cli.OpenStore(storeOptions(cmd))
		if err != nil {
			return err
		}
		defer p.Close()

		sessions, err := p.Store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			return nil
		}
		fmt.Fprintln(out, "Sessions:")
		for _, s := range sessions {
			fmt.Fprintln(out, "- "+s)
		}
		return nil
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := cli.OpenStore(storeOptions(cmd))
		if err != nil {
			return err
		}
		defer p.Close()

		sess, err := p.Store.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", args[0], err)
		}

		var v any = dto.FromSession(sess)
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			v = sess
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling session: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args: func(cmd *cobra.Command, args []string) error {
		if all, _ := cmd.Flags().GetBool("all"); all {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	Run: func(cmd *cobra.Command, args []string) {
		p, err := cli.OpenStore(storeOptions(cmd))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer p.Close()

		if all, _ := cmd.Flags().GetBool("all"); all {
			if args, err = p.Store.List(cmd.Context()); err != nil {
				fmt.Fprintf(os.Stderr, "Error listing sessions: %v\n", err)
				os.Exit(1)
			}
		}

		hasError := false
		for _, sessionID := range args {
			if err := p.Store.Delete(cmd.Context(), sessionID); err != nil {
				fmt.Fprintf(os.Stderr, "Error removing '%s': %v\n", sessionID, err)
				hasError = true
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", sessionID)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionInspectCmd.Flags().Bool("raw", false, "Print the stored record, history included")
	sessionRmCmd.Flags().Bool("all", false, "Remove every session")
}
