package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Harshitk-cp/agentlink/internal/adapter"
	"github.com/Harshitk-cp/agentlink/internal/agentlink"
	"github.com/Harshitk-cp/agentlink/internal/api/handlers"
	mw "github.com/Harshitk-cp/agentlink/internal/api/middleware"
	"github.com/Harshitk-cp/agentlink/internal/buildconfig"
	"github.com/Harshitk-cp/agentlink/internal/domain"
	"github.com/Harshitk-cp/agentlink/internal/metrics"
	"github.com/Harshitk-cp/agentlink/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Options configures the gateway. cmd/server fills it from the environment.
type Options struct {
	DiscovererSlug string
	APIKey         string
	RateLimitRPS   float64
	RateLimitBurst int
}

// App holds the router and the discovery service behind it.
type App struct {
	Router       *chi.Mux
	Discovery    *service.DiscoveryService
	baseURL      string
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
	stop         context.CancelFunc
}

func NewApp(client *agentlink.Client, opts Options, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 100
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 20
	}

	discoverySvc := service.NewDiscoveryService(client, service.DiscoveryOptions{
		DiscovererSlug: opts.DiscovererSlug,
		APIKey:         opts.APIKey,
	}, logger.Named("discovery"))
	discoverySvc.SetBrowser(client)

	// The tool talks to the service so its searches are logged and counted too.
	discoveryTool := adapter.NewDiscoveryTool(discoverySvc)

	directoryHandler := handlers.NewDirectoryHandler(discoverySvc)
	toolHandler := handlers.NewToolHandler(discoveryTool)

	r := chi.NewRouter()
	ctx, stop := context.WithCancel(context.Background())

	app := &App{
		Router:    r,
		Discovery: discoverySvc,
		baseURL:   client.BaseURL(),
		startTime: time.Now(),
		stop:      stop,
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(ctx, opts.RateLimitRPS, opts.RateLimitBurst))

	r.Get("/health", app.healthHandler())
	r.Get("/status", app.statusHandler())
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.BearerKey)

		r.Route("/agents", func(r chi.Router) {
			r.Get("/search", directoryHandler.Search)
			r.Get("/discover", directoryHandler.Discover)
			r.Get("/categories", directoryHandler.Categories)
			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", directoryHandler.GetAgent)
				r.Post("/connect", directoryHandler.Connect)
			})
		})

		r.Get("/tools", toolHandler.List)
		r.Post("/tools/{name}", toolHandler.Run)
	})

	return app
}

// Close stops the app's background work. The router keeps serving.
func (app *App) Close() {
	app.stop()
}

// healthHandler reports liveness only; the directory is not probed.
func (app *App) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":    "ok",
			"directory": app.baseURL,
		})
	}
}

func (app *App) statusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": float64(memStats.Alloc) / 1024 / 1024,
				"sys_mb":   float64(memStats.Sys) / 1024 / 1024,
				"num_gc":   memStats.NumGC,
			},
			"go_version": runtime.Version(),
			"build":      buildconfig.VersionInfo(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure clients satisfy interfaces at compile time.
var (
	_ domain.DiscoveryClient  = (*agentlink.Client)(nil)
	_ domain.DirectoryBrowser = (*agentlink.Client)(nil)
	_ domain.DiscoveryClient  = (*agentlink.MockClient)(nil)
	_ domain.DiscoveryClient  = (*service.DiscoveryService)(nil)
	_ domain.DirectoryBrowser = (*service.DiscoveryService)(nil)
)
