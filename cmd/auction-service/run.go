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

	"github.com/rs/zerolog/log"

	"cattle-auction-service/internal/adapters/broadcaster"
	"cattle-auction-service/internal/adapters/console"
	"cattle-auction-service/internal/adapters/db"
	"cattle-auction-service/internal/adapters/metrics"
	"cattle-auction-service/internal/adapters/redis"
	filestore "cattle-auction-service/internal/adapters/store/file"
	"cattle-auction-service/internal/adapters/ws"
	"cattle-auction-service/internal/app"
	"cattle-auction-service/internal/config"
	"cattle-auction-service/internal/ports/outbound"
)

func run(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	initLogging(cfg)

	log.Info().Str("version", version).Msg("Starting Cattle Auction Service...")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	store, closeStore, err := newSnapshotStore(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize snapshot store")
		return err
	}
	defer closeStore()

	events, err := newBroadcaster(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize event broadcaster")
		return err
	}
	defer events.Close()

	var (
		recorder       outbound.Recorder = outbound.NopRecorder{}
		metricsHandler http.Handler
	)
	if cfg.Admin.MetricsEnabled {
		prom := metrics.NewPrometheusRecorder()
		recorder = prom
		metricsHandler = prom.Handler()
		log.Info().Msg("Prometheus metrics enabled on /metrics")
	}

	auctionHandler := app.NewAuctionHandler(app.AuctionHandlerParams{
		Store:       store,
		Broadcaster: events,
		Recorder:    recorder,
		Logger:      log.Logger,
	})
	// A failed load is reported by the handler, which starts empty
	_ = auctionHandler.Load(ctx)

	wsServer := ws.NewServer(ws.ServerParams{
		Config:         cfg,
		AuctionService: auctionHandler,
		Broadcaster:    events,
		MetricsHandler: metricsHandler,
		Logger:         log.Logger,
	})

	log.Info().Msg("WebSocket server initialized")

	// Start WebSocket server
	go func() {
		if err := wsServer.Start(); err != nil {
			log.Error().Err(err).Msg("Failed to start WebSocket server")
			cancel()
		}
	}()

	quit := make(chan struct{})
	if cfg.Admin.Console {
		adminConsole := console.NewConsole(console.ConsoleParams{
			Service: auctionHandler,
			In:      os.Stdin,
			Out:     os.Stdout,
			Logger:  log.Logger,
		})
		go func() {
			err := adminConsole.Run(ctx)
			switch {
			case errors.Is(err, console.ErrQuitRequested):
				close(quit)
			case err != nil:
				log.Error().Err(err).Msg("Admin console stopped")
			}
		}()
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case <-quit:
		log.Info().Msg("Shutdown requested from admin console")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled")
	}

	// Graceful shutdown
	log.Info().Msg("Starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop WebSocket server
	if err := wsServer.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping WebSocket server")
	}

	// Final snapshot
	if err := auctionHandler.Flush(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to write final auction snapshot")
	} else {
		log.Info().Msg("Final auction snapshot written")
	}

	log.Info().Msg("Graceful shutdown completed")
	return nil
}

// newSnapshotStore builds the configured store. The returned func releases
// its resources.
func newSnapshotStore(ctx context.Context, cfg *config.Config) (outbound.SnapshotStore, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		conn, err := db.NewConnection(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		repo := db.NewLotRepository(db.LotRepositoryParams{Conn: conn, Logger: log.Logger})
		if err := repo.Migrate(ctx); err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		log.Info().Str("database", cfg.Database.Redacted()).Msg("Database connection established")
		return repo, func() { _ = conn.Close() }, nil

	default:
		store, err := filestore.NewStore(filestore.StoreParams{Path: cfg.Store.DataFile, Logger: log.Logger})
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", store.Path()).Str("format", string(store.Format())).Msg("File snapshot store ready")
		return store, func() {}, nil
	}
}

func newBroadcaster(ctx context.Context, cfg *config.Config) (outbound.Broadcaster, error) {
	if !cfg.Redis.Enabled {
		return broadcaster.NewLocalBroadcaster(broadcaster.LocalBroadcasterParams{Logger: log.Logger}), nil
	}

	// Create Redis client
	redisClient := redis.NewClient(cfg.Redis)
	if err := redis.PingRedis(ctx, redisClient); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established")

	return broadcaster.NewBroadcaster(broadcaster.RedisBroadcasterParams{
		RedisClient: redisClient,
		Logger:      log.Logger,
	}), nil
}
