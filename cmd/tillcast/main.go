// Command tillcast runs the multi-tenant real-time POS ingestion and
// broadcast service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	tchttp "github.com/tillworks/tillcast/internal/adapter/http"
	tcnats "github.com/tillworks/tillcast/internal/adapter/nats"
	otelx "github.com/tillworks/tillcast/internal/adapter/otel"
	"github.com/tillworks/tillcast/internal/adapter/shopcfg"
	"github.com/tillworks/tillcast/internal/adapter/ws"
	"github.com/tillworks/tillcast/internal/config"
	"github.com/tillworks/tillcast/internal/hub"
	"github.com/tillworks/tillcast/internal/logger"
	"github.com/tillworks/tillcast/internal/middleware"
	"github.com/tillworks/tillcast/internal/service"
	"github.com/tillworks/tillcast/internal/store"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.New(cfg.Logging)
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"shops_dir", cfg.Shops.Dir,
		"nats", cfg.NATS.URL != "",
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---
	shutdownMetrics, err := otelx.InitMeter(ctx, cfg.Logging.Service, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = shutdownMetrics(context.Background()) }()

	metrics, err := otelx.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Collaborators ---
	shopDir, err := shopcfg.New(cfg.Shops.Dir, cfg.Shops.CacheEntries, cfg.Shops.CacheTTL, log)
	if err != nil {
		return fmt.Errorf("shop profiles: %w", err)
	}
	defer shopDir.Close()

	// --- Core ---
	registry := store.NewRegistry()
	broadcaster := hub.New(log)
	statsSvc := service.NewStatsService()
	ingestSvc := service.NewIngestService(shopDir, registry, broadcaster, metrics, service.Defaults{
		Currency: cfg.Ingest.DefaultCurrency,
		Method:   cfg.Ingest.DefaultMethod,
		Item:     cfg.Ingest.DefaultItem,
	}, log)

	// --- NATS ingestion bridge (optional) ---
	if cfg.NATS.URL != "" {
		bridge, err := tcnats.Connect(ctx, cfg.NATS.URL, ingestSvc, log)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = bridge.Close() }()

		stopConsumer, err := bridge.Start(ctx)
		if err != nil {
			return fmt.Errorf("nats consumer: %w", err)
		}
		defer stopConsumer()
	}

	// --- HTTP ---
	handlers := &tchttp.Handlers{
		Shops:    shopDir,
		Registry: registry,
		Ingest:   ingestSvc,
		Stats:    statsSvc,
		Hub:      broadcaster,
		Metrics:  metrics,
		Version:  version,
	}
	wsHandler := &ws.Handler{
		Shops:    shopDir,
		Registry: registry,
		Hub:      broadcaster,
		Stats:    statsSvc,
		Metrics:  metrics,
		Log:      log,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(tchttp.CORS(cfg.Server.CORSOrigin))
	r.Use(tchttp.SecurityHeaders)
	r.Use(tchttp.Logger)
	r.Use(chimw.Recoverer)
	r.Use(otelx.HTTPMiddleware(cfg.Logging.Service))
	// No global request timeout: /events and /ws hold connections open
	// until the client disconnects.

	rl := middleware.NewRateLimiter(cfg.Rate.RequestsPerSecond, cfg.Rate.Burst)
	tchttp.MountRoutes(r, handlers, rl)
	r.Get("/ws", wsHandler.HandleWS)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts derive from the signal context so the open
		// /events streams unwind when shutdown starts; otherwise Shutdown
		// would wait its full timeout on every connected dashboard.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
