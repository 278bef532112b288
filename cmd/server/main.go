package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harshitk-cp/agentlink/internal/agentlink"
	"github.com/Harshitk-cp/agentlink/internal/api"
	"github.com/Harshitk-cp/agentlink/internal/buildconfig"
	"github.com/Harshitk-cp/agentlink/internal/config"
	"github.com/Harshitk-cp/agentlink/internal/metrics"
	"go.uber.org/zap"
)

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg.Level = lvl
	return cfg.Build()
}

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(config.LogLevel())
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics.Init()

	clientCfg := config.AgentLink()
	client := agentlink.NewClient(clientCfg)
	logger.Info("agentlink client configured",
		zap.String("base_url", client.BaseURL()),
		zap.Duration("search_timeout", clientCfg.SearchTimeout),
		zap.Duration("connect_timeout", clientCfg.ConnectTimeout),
		zap.String("version", buildconfig.Version()),
	)
	if config.APIKey() == "" {
		logger.Warn("AGENTLINK_API_KEY not set; connect requires a caller bearer key")
	}

	app := api.NewApp(client, api.Options{
		DiscovererSlug: config.DiscovererSlug(),
		APIKey:         config.APIKey(),
		RateLimitRPS:   config.RateLimitRPS(),
		RateLimitBurst: config.RateLimitBurst(),
	}, logger)
	defer app.Close()

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	// connect calls may run for the full connect timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), clientCfg.ConnectTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
