package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/flowstep/internal/cli"
	"github.com/aretw0/flowstep/internal/logging"
	"github.com/aretw0/flowstep/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes flowstep sessions as MCP tools (create_session, step, undo, solve,
get_state, render_view) so agents can drive the algorithm.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		debug, _ := cmd.Flags().GetBool("debug")

		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		// Stdout carries JSON-RPC; logs go to stderr.
		logger := logging.New(level)
		slog.SetDefault(logger)
		log.SetOutput(os.Stderr)

		p, err := cli.OpenStore(storeOptions(cmd))
		if err != nil {
			return err
		}
		defer p.Close()

		srv := mcp.NewServer(p.Sessions(logger), logger)

		switch transport {
		case "stdio":
			logger.Info("Starting flowstep MCP server (stdio)", "store", p.Kind)
			if err := srv.ServeStdio(); err != nil {
				return fmt.Errorf("MCP server execution failed: %w", err)
			}
			return nil
		case "sse":
			logger.Info("Starting flowstep MCP server (SSE)", "port", port, "store", p.Kind)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("MCP server execution failed: %w", err)
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
