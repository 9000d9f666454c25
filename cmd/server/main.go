package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/DukeRupert/uphill/internal"
	"github.com/DukeRupert/uphill/internal/catalog"
	"github.com/DukeRupert/uphill/internal/handler"
	"github.com/DukeRupert/uphill/internal/live"
	"github.com/DukeRupert/uphill/internal/metrics"
	"github.com/DukeRupert/uphill/internal/middleware"
	"github.com/DukeRupert/uphill/internal/sitegen"
	"github.com/DukeRupert/uphill/web"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg)

	// Load datasets
	store, err := catalog.Load(catalog.Source(cfg.DataDir), logger)
	if err != nil {
		return fmt.Errorf("catalog load failed: %w", err)
	}
	logger.Info("Catalog loaded", "resorts", len(store.Resorts()), "trail_maps", len(store.TrailMaps()))

	// Initialize template renderer
	var templates fs.FS = web.Templates()
	if cfg.TemplatesDir != "" {
		templates = os.DirFS(cfg.TemplatesDir)
	}
	renderer, err := handler.NewRenderer(handler.RendererConfig{
		FS:     templates,
		Logger: logger,
		IsDev:  cfg.IsDevelopment() && cfg.TemplatesDir != "",
	})
	if err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}
	logger.Info("Templates loaded", "count", len(renderer.ListTemplates()))

	// Published files: images, trail maps and their thumbnails
	files, err := cfg.NewStorage(logger)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	thumbs, err := sitegen.ExistingThumbnails(ctx, files, store.TrailMaps())
	if err != nil {
		logger.Warn("thumbnail lookup failed, serving full-size images", "error", err)
	}
	logger.Info("Thumbnails found", "count", len(thumbs))

	manager := live.NewManager(live.Config{
		Store:           store,
		Thumbs:          thumbs,
		Debounce:        cfg.SearchDebounce,
		SuggestionLimit: cfg.SuggestionLimit,
		TTL:             cfg.SessionTTL,
		Logger:          logger,
	})

	// Initialize middleware
	isSecure := !cfg.IsDevelopment()
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	limiter := middleware.NewRateLimiter(cfg.LiveRateLimit, cfg.LiveRateWindow)
	rateLimitMw := middleware.NewRateLimitMiddleware(limiter, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(web.Static())))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Metrics
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	handler.NewPageHandler(handler.PageHandlerConfig{
		Store:    store,
		Thumbs:   thumbs,
		Files:    files,
		Renderer: renderer,
		Logger:   logger,
		IsSecure: isSecure,
	}).RegisterRoutes(mux)

	handler.NewLiveHandler(manager, logger).RegisterRoutes(mux, rateLimitMw.Limit)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           metrics.Middleware(loggingMw.Handler(securityMw.Handler(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server started", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return manager.Run(gCtx)
	})

	g.Go(func() error {
		return limiter.Run(gCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutdown signal received, initiating graceful shutdown...")

		// Create shutdown context with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
