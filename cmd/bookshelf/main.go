package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"bookshelf/pkg/circuitbreaker"
	"bookshelf/pkg/config"
	"bookshelf/pkg/database"
	"bookshelf/pkg/server"
	"bookshelf/pkg/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := server.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Bookshelf service stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting bookshelf service...", zap.String("store", cfg.StoreDriver))

	s, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Error("Failed to close store", zap.Error(err))
		}
	}()

	gin.SetMode(cfg.GinMode)
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      server.New(s, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Bookshelf service listening", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server failed")
	case sig := <-sigCh:
		logger.Info("Shutting down...", zap.Stringer("signal", sig))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server shutdown failed")
	}

	logger.Info("Shutdown complete")
	return nil
}

func openStore(cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Info("Using in-memory store")
		return store.NewMemory(), nil
	}

	db, err := database.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	cb := circuitbreaker.New(cfg.StoreDriver, cfg.BreakerMaxFailures, cfg.BreakerTimeout,
		circuitbreaker.WithWindow(cfg.BreakerWindow),
		circuitbreaker.WithIgnored(store.IsNotFound),
		circuitbreaker.WithLogger(logger))
	return store.NewGuarded(store.NewSQL(db), cb), nil
}
