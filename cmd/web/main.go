package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/eworldcup/internal/config"
	"github.com/AdamBeresnev/eworldcup/internal/db"
	"github.com/AdamBeresnev/eworldcup/internal/live"
	"github.com/AdamBeresnev/eworldcup/internal/rps"
	"github.com/AdamBeresnev/eworldcup/internal/seed"
	"github.com/AdamBeresnev/eworldcup/internal/service"
	"github.com/AdamBeresnev/eworldcup/internal/store"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.InitDB(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	if err := db.RunMigrations(database); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	participants := newParticipantRepository(cfg, database)
	if _, err := seed.Participants(ctx, participants, cfg.SeedFile, logger); err != nil {
		log.Fatal(err)
	}

	src, err := rps.NewSeededSource()
	if err != nil {
		log.Fatal(err)
	}

	hub := live.NewHub(logger, cfg.CORSOrigins)
	tournaments := service.NewTournamentService(database, store.NewTournamentStore(database), participants, src, logger)
	tournaments.SetNotifier(hub)

	app := &application{
		participants: service.NewParticipantService(participants, logger),
		schedule:     service.NewScheduleService(participants),
		tournaments:  tournaments,
		hub:          hub,
		logger:       logger,
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      newRouter(app, cfg.CORSOrigins),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", "addr", server.Addr, "driver", cfg.DBDriver, "participant_store", cfg.ParticipantStore)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		hub.Close()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func newParticipantRepository(cfg *config.Config, database *sqlx.DB) store.ParticipantRepository {
	if cfg.ParticipantStore == config.StoreMemory {
		return store.NewMemoryParticipantStore()
	}
	return store.NewParticipantStore(database)
}
