package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"hotelbooking/internal/infra/config"
	ginserver "hotelbooking/internal/infra/http/gin"
	"hotelbooking/internal/infra/obs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger := obs.NewLogger("dev", "info")
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}

	fixturesPath := cfg.RoomsFixtures
	if fixturesPath == "" {
		fixturesPath = defaultRoomFixturesPath()
	}
	if err := app.loadRoomFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("room fixtures load failed", "error", err, "path", fixturesPath)
	}

	if cfg.GRPCEnabled() {
		grpcHealth := obs.NewGRPCHealth(cfg.GRPCAddr, app.ready, logger)
		app.background = append(app.background, grpcHealth.Run)
	}
	backgroundDone := app.run(ctx, logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: app.ready}, app.handlers)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode, "kafka", cfg.KafkaEnabled())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
	}
	stop()
	<-backgroundDone
	app.close(context.Background(), logger)
	logger.Info("HTTP server stopped")
}
