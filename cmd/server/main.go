package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/albertus-andito/fake-news-detection/internal/config"
	"github.com/albertus-andito/fake-news-detection/internal/core"
	"github.com/albertus-andito/fake-news-detection/internal/logging"
	"github.com/albertus-andito/fake-news-detection/internal/server"
	"github.com/albertus-andito/fake-news-detection/internal/service"
)

func main() {
	envErr := godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		if _, err := os.Stat("config/config.toml"); err == nil {
			cfgPath = "config/config.toml"
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logging.New("info", os.Stderr).Fatal("Failed to load configuration", "err", err)
	}

	logger := logging.New(cfg.Logging.Level, os.Stderr)
	if envErr != nil {
		logger.Debug("No .env file found, using defaults")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := service.NewServices(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", "err", err)
	}

	verifier := core.NewVerifier(svc, core.Options{
		MatchMode:    cfg.MatchMode(),
		PollInterval: cfg.Updates.PollInterval.Duration,
		MaxPolls:     cfg.Updates.MaxPolls,
	}, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server.NewServer(verifier, logger).SetupRouter(),
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Server.Port, "match_mode", cfg.MatchMode())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "err", err)
	}
	verifier.Close()
	if err := svc.Close(shutdownCtx); err != nil {
		logger.Error("Closing services failed", "err", err)
	}
}
