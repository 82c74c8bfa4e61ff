package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"premi/internal/amqp"
	"premi/internal/catalog"
	"premi/internal/config"
	"premi/internal/engine"
	"premi/internal/feed"
	feedmemory "premi/internal/feed/memory"
	apphttp "premi/internal/http"
	"premi/internal/services"
	"premi/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	prizes, err := catalog.LoadPrizes(cfg.PrizesPath)
	if err != nil {
		logger.Error("Failed to load prize table", "error", err, "path", cfg.PrizesPath)
		os.Exit(1)
	}
	items, err := catalog.LoadShopItems(cfg.ShopPath)
	if err != nil {
		logger.Error("Failed to load shop catalog", "error", err, "path", cfg.ShopPath)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	state, found, err := repo.LoadState(context.Background())
	if err != nil {
		logger.Error("Failed to load ledger state", "error", err)
		os.Exit(1)
	}
	if !found {
		logger.Info("No saved ledger found, starting fresh")
		state = engine.NewState(items)
	}

	eng, err := engine.New(engine.Config{
		SpinCost:           cfg.SpinCost,
		MaxFreeSpinsPerDay: cfg.MaxFreeSpinsPerDay,
	}, prizes, items, state)
	if err != nil {
		logger.Error("Failed to build rewards engine", "error", err)
		os.Exit(1)
	}

	// Activity fan-out is best effort; a dead broker must not block spins.
	var publisher services.ActivityPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("AMQP unavailable, activity fan-out disabled", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}
	}

	svc := services.NewRewardsService(eng, repo, publisher)

	// External dashboard rows. Without a real data service the feed runs
	// on the in-memory store, so the endpoints stay functional.
	feedStore := feedmemory.New(nil, nil)
	fetcher := feed.NewFetcher(feedStore, feedStore, cfg.FeedLimit)

	srv := apphttp.NewServer(":"+cfg.Port, svc, fetcher)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ticker := time.NewTicker(cfg.FeedInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fetcher.Refresh(ctx)
			}
		}
	}()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting premi server",
		"port", cfg.Port,
		"prizes", len(prizes),
		"shop_items", len(items),
		"amqp", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
