package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/sprealms/bridge/internal/bridge"
	"github.com/sprealms/bridge/internal/config"
	"github.com/sprealms/bridge/internal/metrics"
	"github.com/sprealms/bridge/internal/registry"
	"github.com/sprealms/bridge/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (empty: environment only)")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Logging.Level),
	}))
	slog.SetDefault(logger)

	logger.Info("starting bridge",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)
	logger.Info("configuration loaded",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"path", cfg.Server.Path,
		"auth", cfg.Auth.Token != "",
	)
	if cfg.Auth.Token == "" {
		logger.Warn("no token configured, accepting all connections")
	}

	// Handle shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mets := metrics.New(reg)

	broker := registry.NewBroker(logger)

	srv := bridge.NewServer(bridge.Config{
		Path:            cfg.Server.Path,
		Token:           cfg.Auth.Token,
		DefaultRealm:    cfg.Server.DefaultRealm,
		RateCount:       cfg.Limits.RateCount,
		RateWindow:      cfg.Limits.RateWindow,
		MaxTextLen:      cfg.Limits.MaxTextLen,
		MaxFrameSize:    cfg.Limits.MaxFrameSize,
		PingInterval:    cfg.Server.PingInterval,
		PingTimeout:     cfg.Server.PingTimeout,
		ClassifyTimeout: cfg.Server.ClassifyTimeout,
	}, broker, mets, logger)

	wsServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Handler(),
	}
	opsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Ops.Port),
		Handler: createOpsHandler(broker, reg, cfg.Ops.Path),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("websocket server listening", "addr", wsServer.Addr, "path", cfg.Server.Path)
		if err := wsServer.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("websocket server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("ops server listening", "addr", opsServer.Addr)
		if err := opsServer.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		wsServer.Shutdown(shutdownCtx)
		opsServer.Shutdown(shutdownCtx)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("bridge failed", "error", err)
		os.Exit(1)
	}
	logger.Info("bridge stopped")
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// createOpsHandler serves health and metrics on the ops port, away from
// the public websocket endpoint.
func createOpsHandler(broker *registry.Broker, reg *prometheus.Registry, metricsPath string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		listing := broker.Listing()

		online := 0
		for _, n := range listing {
			online += n
		}

		health := struct {
			Status  string         `json:"status"`
			Realms  map[string]int `json:"realms"`
			Plugins int            `json:"plugins"`
			Admins  int            `json:"admins"`
			Version string         `json:"version"`
		}{
			Status:  "healthy",
			Realms:  listing,
			Plugins: online,
			Admins:  broker.AdminCount(),
			Version: version.Version,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(health)
	})

	mux.Handle(metricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return mux
}
