package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeeves-cluster-organization/missionrpc/config"
	"github.com/jeeves-cluster-organization/missionrpc/kernel"
	"github.com/jeeves-cluster-organization/missionrpc/logging"
	"github.com/jeeves-cluster-organization/missionrpc/observability"
	"github.com/jeeves-cluster-organization/missionrpc/services/demo"
	"github.com/jeeves-cluster-organization/missionrpc/transport"
)

var listenAddr string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the MissionRPC host server",
	Long: `Start listens for TCP connections and dispatches every request it
reads to the service registry, until interrupted with Ctrl+C.

Examples:
  missionrpcd start
  missionrpcd start --config /etc/missionrpc/config.yaml
  missionrpcd start --listen 0.0.0.0:50051
  MISSIONRPC_LISTEN_ADDRESS=0.0.0.0:50051 missionrpcd start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&listenAddr, "listen", "", "override the configured listen address")
}

func runStart(cmd *cobra.Command, args []string) error {
	overrides := map[string]any{}
	if listenAddr != "" {
		overrides["listen.address"] = listenAddr
	}

	cfg, err := config.Load(GetConfigFile(), overrides)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := logging.StdLogger{}
	logger.Info("missionrpcd_starting", "version", Version, "address", cfg.Listen.Address)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTracer("missionrpcd", cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		defer func() {
			if err := shutdown(ctx); err != nil {
				logger.Error("tracer_shutdown_failed", "error", err.Error())
			}
		}()
		logger.Info("telemetry_enabled", "endpoint", cfg.Telemetry.OTLPEndpoint)
	} else {
		logger.Info("telemetry_disabled")
	}

	k := kernel.New(logger, kernel.RateLimitConfig{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		BurstSize:         cfg.RateLimit.BurstSize,
	})
	k.OnEvent(func(evt kernel.Event) {
		logger.Debug("kernel_event", "type", string(evt.Type), "client_id", evt.ClientID)
	})

	if err := demo.Register(k.Registry, k); err != nil {
		return fmt.Errorf("register demo services: %w", err)
	}
	logger.Info("services_registered", "services", k.Registry.ServiceNames())

	srv := transport.NewServer(logger, k, cfg.Listen.Address)

	serverDone := make(chan error, 1)
	go func() { serverDone <- srv.Start(ctx) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("missionrpcd_ready", "address", cfg.Listen.Address)
	fmt.Printf("MissionRPC host listening on %s. Press Ctrl+C to stop.\n", cfg.Listen.Address)

	select {
	case sig := <-sigCh:
		signal.Stop(sigCh)
		logger.Info("shutdown_signal_received", "signal", sig.String())
		cancel()
		if err := <-serverDone; err != nil && err != context.Canceled {
			logger.Error("server_shutdown_error", "error", err.Error())
			return err
		}
		logger.Info("missionrpcd_stopped")
	case err := <-serverDone:
		signal.Stop(sigCh)
		if err != nil {
			logger.Error("server_error", "error", err.Error())
			return err
		}
	}

	return nil
}
