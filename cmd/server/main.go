package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Shark-Fang/SharkChat/internal/server"
	"github.com/Shark-Fang/SharkChat/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Local .env is a dev convenience only.
	_ = godotenv.Load()

	logger := server.NewLogger(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
	slog.SetDefault(logger)

	cfg := server.NewConfigFromEnv()
	server.SetConfig(cfg)

	st, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("open store", "err", err)
		os.Exit(1)
	}
	defer st.Close()

	registry := server.NewRegistry()
	broadcaster := server.NewBroadcaster(registry, logger)
	router := server.NewRouter(st, registry, broadcaster, logger)
	hub := server.NewHub(registry, router, logger)
	go hub.Run()

	api := &server.API{Hub: hub, Store: st, Log: logger}
	httpServer := server.CreateServer(cfg.Port, server.SetupRoutes(api))

	go func() {
		if err := server.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")
	_ = server.ShutdownServer(httpServer, shutdownTimeout)
	if err := hub.Shutdown(shutdownTimeout); err != nil {
		logger.Warn("hub shutdown", "err", err)
	}
}

// openStore selects the Postgres store when a database is configured and the
// in-memory store otherwise.
func openStore(cfg *server.Config, logger *slog.Logger) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("using in-memory store")
		return store.NewMemory(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Info("using postgres store")
	return store.NewPostgres(ctx, cfg.DatabaseURL, logger)
}
