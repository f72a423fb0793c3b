package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"outlay/internal/amqp"
	"outlay/internal/config"
	applog "outlay/internal/log"
	"outlay/internal/store"
	storefactory "outlay/internal/store/factory"
	"outlay/internal/store/sqlite"
	"outlay/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.Config{
		Level:     applog.DefaultConfig().Level,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting outlay-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}

	// The primary store the events refer to.
	primary, err := storefactory.New(logger.Logger).Create(storefactory.Config{
		Type:         store.BackendType(cfg.DataBackend),
		SupabaseURL:  cfg.SupabaseURL,
		SupabaseKey:  cfg.SupabaseAnonKey,
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize primary store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer primary.Close()

	// The local sqlite replica the events are replayed into.
	mirror, err := sqlite.New(cfg.MirrorDBPath)
	if err != nil {
		logger.Error("Failed to initialize mirror store", "error", err, "path", cfg.MirrorDBPath)
		os.Exit(1)
	}
	defer mirror.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirrorWorker := worker.NewMirrorWorker(primary, mirror)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional startup reconcile for users that may have missed events while
	// the worker was down.
	if users := os.Getenv("MIRROR_RECONCILE_USERS"); users != "" {
		for _, userID := range strings.Split(users, ",") {
			userID = strings.TrimSpace(userID)
			if userID == "" {
				continue
			}
			if err := mirrorWorker.Reconcile(ctx, userID); err != nil {
				logger.Error("Startup reconcile failed", "user_id", userID, "error", err)
				// Keep going; the event stream still converges the mirror.
			}
		}
	}

	go func() {
		err := amqpClient.ConsumeExpenseEvents(ctx, func(event *amqp.ExpenseEvent) error {
			return mirrorWorker.HandleEvent(ctx, event)
		})
		if err != nil && err != context.Canceled {
			logger.Error("Event consumption failed", "error", err)
		}
		cancel()
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()

	// Give the in-flight delivery a moment to settle before closing.
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
