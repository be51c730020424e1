package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/flowstep"
	"github.com/aretw0/flowstep/internal/cli"
	"github.com/aretw0/flowstep/internal/logging"
	httpAdapter "github.com/aretw0/flowstep/pkg/adapters/http"
	"github.com/aretw0/flowstep/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes sessions over a JSON API with a Server-Sent Events stream of state
diffs. Prometheus metrics are served at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		level, _ := cmd.Flags().GetString("log-level")
		format, _ := cmd.Flags().GetString("log-format")
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			level = "debug"
		}

		logger := logging.New(logging.ParseLevel(level))
		if format == "json" {
			logger = logging.NewJSON(os.Stderr, logging.ParseLevel(level))
		}

		p, err := cli.OpenStore(storeOptions(cmd))
		if err != nil {
			return err
		}
		defer p.Close()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(reg)
		sessions := p.Sessions(logger, flowstep.WithLifecycleHooks(metrics.Hooks()))

		handler := httpAdapter.NewHandler(sessions,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetrics(metrics),
			httpAdapter.WithMount("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		)

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting flowstep server", "addr", srv.Addr, "store", p.Kind, "distributed_lock", p.Locker != nil)
			serverErrors <- srv.ListenAndServe()
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			logger.Info("Start shutdown")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("flowstep server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("log-level", "info", "Log level: debug, info, warn or error")
	serveCmd.Flags().String("log-format", "text", "Log format: text or json")
}
