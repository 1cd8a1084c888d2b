package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/officedocs/mailbridge/internal/background"
	"github.com/officedocs/mailbridge/internal/config"
	"github.com/officedocs/mailbridge/internal/instrumentation"
	"github.com/officedocs/mailbridge/internal/mail"
	"github.com/officedocs/mailbridge/internal/natmsg"
	"github.com/officedocs/mailbridge/internal/protocol"
	"github.com/officedocs/mailbridge/internal/server"
)

// MetricsConfig holds metrics server settings
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

func newServeCmd() *cobra.Command {
	var (
		configPath    string
		templatesDir  string
		debugMode     bool
		metricsConfig MetricsConfig
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the native messaging host on stdin/stdout",
		Long: `Serve speaks the native messaging framing on stdin/stdout: each frame
is a uint32 little-endian length followed by a JSON envelope. The mail
client owns both pipes, so all logging goes to stderr.

The host answers the extension's attachment and compose actions,
manages viewer windows, and exits when the pipe closes or a signal
arrives.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, templatesDir, debugMode, metricsConfig)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to the host config file (default: <user config dir>/mailbridge/config.json)")
	cmd.Flags().StringVar(&templatesDir, "templates", "", "Directory holding blank document templates (default: templates/ next to the config file)")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging on stderr")

	// Metrics server flags
	cmd.Flags().BoolVar(&metricsConfig.Enabled, "metrics-enabled", false, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsConfig.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(configPath, templatesDir string, debugMode bool, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout carries protocol frames, so logs go to stderr only.
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Load metrics config from environment if not set via flags
	if !metricsConfig.Enabled {
		if os.Getenv("METRICS_ENABLED") == "true" {
			metricsConfig.Enabled = true
		}
	}
	if metricsConfig.Addr == "" || metricsConfig.Addr == server.DefaultMetricsAddr {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metricsConfig.Addr = addr
		}
	}

	if configPath == "" {
		path, err := defaultConfigPath()
		if err != nil {
			return err
		}
		configPath = path
	}
	if templatesDir == "" {
		templatesDir = filepath.Join(filepath.Dir(configPath), "templates")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("instrumentation shutdown failed", "error", err)
		}
	}()

	hostContext := server.NewHostContext(shutdownCtx, cfg, cfg.Formats)
	health := server.NewHealthChecker(hostContext)
	health.SetReady(false)

	// Start metrics server if enabled
	var metricsServer *server.MetricsServer
	if metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
			Health:                  health,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			logger.Info("metrics server started", "addr", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}
	defer func() {
		if metricsServer != nil {
			shutdownTimeout, cancelTimeout := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancelTimeout()
			if err := metricsServer.Shutdown(shutdownTimeout); err != nil {
				logger.Error("metrics server shutdown failed", "error", err)
			}
		}
	}()

	dispatcher := protocol.NewDispatcher(logger,
		protocol.WithRecorder(provider.Metrics()),
		protocol.WithTracer(provider.Tracer("protocol")),
	)
	conn := natmsg.NewConn(os.Stdin, os.Stdout, dispatcher, logger)
	bridge := mail.NewBridge(conn, logger, mail.WithCallRecorder(provider.Metrics()))
	hostContext.SetMailClient(bridge)

	windows := background.NewWindowManager(bridge, cfg.Window, logger)
	hostContext.SetWindows(windows)

	templates := background.NewTemplateSet(os.DirFS(templatesDir))
	audit := instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging)

	handlers := background.NewHandlers(bridge, cfg.Formats, windows, templates, cfg.Limits, logger,
		background.WithMetrics(provider.Metrics()),
		background.WithAudit(audit),
	)
	handlers.Register(dispatcher)

	health.SetReady(true)
	logger.Info("host ready",
		"version", version,
		"config", configPath,
		"server_url", cfg.ServerURL,
		"signing", hostContext.Signer().Enabled(),
	)

	err = conn.Run(shutdownCtx)

	health.SetReady(false)
	if shutdownErr := hostContext.Shutdown(); shutdownErr != nil {
		logger.Error("host context shutdown failed", "error", shutdownErr)
	}
	return err
}

// defaultConfigPath resolves the per-user config file location.
func defaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(dir, "mailbridge", "config.json"), nil
}
