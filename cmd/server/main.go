package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	router "github.com/inklab/sketchroom/internal/adapters/http"
	wssignal "github.com/inklab/sketchroom/internal/adapters/signal"
	"github.com/inklab/sketchroom/internal/app"
	"github.com/inklab/sketchroom/internal/app/orch"
	"github.com/inklab/sketchroom/internal/config"
	"github.com/inklab/sketchroom/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}

	reg := app.NewRegistry()
	rooms := app.NewRoomManager()
	seq := app.NewSequencer()

	o := orch.New(reg, rooms, seq, st)
	o.PersistTimeout = cfg.PersistTimeout

	cursors := wssignal.NewRateLimiter(cfg.CursorRate, cfg.CursorInterval)
	ctl := wssignal.NewController(o, cursors, cfg.ReadLimit, cfg.PingPeriod)

	r := router.SetupRouter(ctx, cfg, o, st, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Sketchroom server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.StoreDSN == "" {
		log.Info().Str("module", "main").Msg("using in-memory store")
		return store.NewMemory(), nil
	}
	db, err := gorm.Open(sqlite.Open(cfg.StoreDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	g := store.NewGorm(db)
	if err := g.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info().Str("module", "main").Str("dsn", cfg.StoreDSN).Msg("using sqlite store")
	return g, nil
}
