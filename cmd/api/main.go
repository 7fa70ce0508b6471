package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/roamplan/itinerary-engine/internal/adapters/geocode"
	"github.com/roamplan/itinerary-engine/internal/adapters/httpapi"
	memlocal "github.com/roamplan/itinerary-engine/internal/adapters/memory/localstore"
	memremote "github.com/roamplan/itinerary-engine/internal/adapters/memory/remotestore"
	memqueue "github.com/roamplan/itinerary-engine/internal/adapters/memory/syncqueue"
	"github.com/roamplan/itinerary-engine/internal/adapters/postgres"
	pgremote "github.com/roamplan/itinerary-engine/internal/adapters/postgres/remotestore"
	"github.com/roamplan/itinerary-engine/internal/adapters/sqlite"
	sqlocal "github.com/roamplan/itinerary-engine/internal/adapters/sqlite/localstore"
	sqqueue "github.com/roamplan/itinerary-engine/internal/adapters/sqlite/syncqueue"
	"github.com/roamplan/itinerary-engine/internal/app/engine"
	"github.com/roamplan/itinerary-engine/internal/app/syncworker"
	"github.com/roamplan/itinerary-engine/internal/platform/clock"
	"github.com/roamplan/itinerary-engine/internal/platform/config"
	"github.com/roamplan/itinerary-engine/internal/platform/idgen"
	"github.com/roamplan/itinerary-engine/internal/ports/out/localstore"
	"github.com/roamplan/itinerary-engine/internal/ports/out/remotestore"
	"github.com/roamplan/itinerary-engine/internal/ports/out/syncqueue"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		local localstore.Store
		queue syncqueue.Queue
	)
	switch cfg.LocalBackend {
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer db.Close()
		local = sqlocal.NewStore(db)
		queue = sqqueue.NewQueue(db)
	case "memory":
		local = memlocal.NewStore()
		queue = memqueue.NewQueue()
	default:
		return errors.New("unknown local backend " + cfg.LocalBackend)
	}

	var remote remotestore.Store
	switch cfg.RemoteBackend {
	case "postgres":
		if err := postgres.Migrate(ctx, cfg.PostgresDSN); err != nil {
			return err
		}
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		remote = pgremote.NewStore(pool)
	case "memory":
		remote = memremote.NewStore()
	default:
		return errors.New("unknown remote backend " + cfg.RemoteBackend)
	}

	svc := engine.NewService(
		local,
		remote,
		queue,
		idgen.NewUUIDGenerator(),
		geocode.NewClient(cfg.GeocoderURL),
		clock.NewSystemClock(),
		log,
	)
	if err := svc.Load(ctx); err != nil {
		return err
	}

	worker := syncworker.New(queue, remote, svc.MarkTripSynced, svc.Session, log)
	go worker.Run(ctx)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.NewServer(svc, log).Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api server listening", "addr", cfg.HTTPAddr,
			"local_backend", cfg.LocalBackend, "remote_backend", cfg.RemoteBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
