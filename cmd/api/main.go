package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/emilythestrangee/subreddits/backend/internal/config"
	"github.com/emilythestrangee/subreddits/backend/internal/database"
	"github.com/emilythestrangee/subreddits/backend/internal/events"
	"github.com/emilythestrangee/subreddits/backend/internal/logging"
	"github.com/emilythestrangee/subreddits/backend/internal/middleware"
	"github.com/emilythestrangee/subreddits/backend/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("service exited with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := database.New(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	pub, err := events.Connect(cfg.NATS.URL, log)
	if err != nil {
		return err
	}
	defer pub.Close()

	var limiter middleware.Limiter
	switch {
	case cfg.Redis.RateLimitPerMinute == 0:
		log.Info("vote rate limiting disabled")
	case cfg.Redis.URL != "":
		rl, err := middleware.NewRedisLimiter(cfg.Redis.URL, cfg.Redis.RateLimitPerMinute)
		if err != nil {
			return err
		}
		defer func() { _ = rl.Close() }()
		if err := rl.Ping(ctx); err != nil {
			log.Warn("redis unreachable, rate limiter fails open", zap.Error(err))
		}
		limiter = rl
	default:
		limiter = middleware.NewMemoryLimiter(cfg.Redis.RateLimitPerMinute)
	}

	srv := server.New(cfg, log, server.Deps{
		Store:   store,
		Events:  pub,
		Limiter: limiter,
	}).HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.String("store", cfg.Store))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
