// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/cache"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/config"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/database"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/events"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/handler"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/lib/logger/sl"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/metrics"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/repository"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/repository/memory"
	"github.com/Shivanand-hulikatti/resource-reservations/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", os.Getenv("RESV_CONFIG"), "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := setupLogger(cfg.Env)
	log.Info("starting reservations server",
		slog.String("env", cfg.Env),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("timezone", cfg.Schedule.Timezone),
	)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", sl.Err(err))
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Schedule.Location()
	if err != nil {
		return fmt.Errorf("schedule timezone: %w", err)
	}

	// ── 1. Storage ────────────────────────────────────────────────────────
	var (
		orgStore         service.OrganizationStore
		resourceStore    service.ResourceStore
		reservationStore service.ReservationStore
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := memory.New()
		orgStore, resourceStore, reservationStore = store, store, store
		log.Warn("using in-memory storage; data is lost on restart")
	default:
		pool, err := database.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		defer pool.Close()
		log.Info("connected to PostgreSQL", slog.String("host", cfg.Database.Host), slog.String("db", cfg.Database.Name))

		orgStore = repository.NewOrganizationRepository(pool)
		resourceStore = repository.NewResourceRepository(pool)
		reservationStore = repository.NewReservationRepository(pool)
	}

	// ── 2. Cache, events, metrics ─────────────────────────────────────────
	var scheduleCache cache.ScheduleCache = cache.Noop{}
	if cfg.Redis.Enabled {
		scheduleCache = cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		log.Info("schedule cache enabled", slog.String("addr", cfg.Redis.Addr))
	}
	defer closeWithLog(log, "schedule cache", scheduleCache.Close)

	var publisher events.Publisher = events.Noop{}
	if cfg.Kafka.Enabled {
		publisher = events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.Info("event publishing enabled",
			slog.String("brokers", strings.Join(cfg.Kafka.Brokers, ",")), slog.String("topic", cfg.Kafka.Topic))
	}
	defer closeWithLog(log, "event publisher", publisher.Close)

	m := metrics.New()
	if cfg.Metrics.Enabled {
		metricsSrv := metrics.NewServer(m, cfg.Metrics.Port, log)
		if err := metricsSrv.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	// ── 3. Wire up layers ─────────────────────────────────────────────────
	orgSvc := service.NewOrganizationService(log, orgStore)
	resourceSvc := service.NewResourceService(log, resourceStore, scheduleCache)
	reservationSvc := service.NewReservationService(log, reservationStore, service.ReservationOptions{
		Location:       loc,
		RejectOverlaps: cfg.Reservations.RejectOverlaps,
	}, scheduleCache, publisher, m)
	h := handler.New(log, orgSvc, resourceSvc, reservationSvc)

	// ── 4. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(handler.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(handler.CORS)
	if cfg.Metrics.Enabled {
		r.Use(m.Middleware)
	}

	if base := strings.TrimRight(cfg.Server.BasePath, "/"); base != "" {
		r.Route(base, h.Routes)
	} else {
		h.Routes(r)
	}

	if cfg.Server.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.Server.StaticDir)))
	}

	// ── 5. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", slog.String("addr", srv.Addr), slog.String("base_path", cfg.Server.BasePath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvLocal:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func closeWithLog(log *slog.Logger, what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		log.Warn("failed to close "+what, sl.Err(err))
	}
}
