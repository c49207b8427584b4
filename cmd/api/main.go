package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/zizouhuweidi/slidequiz/internal/auth"
	"github.com/zizouhuweidi/slidequiz/internal/config"
	"github.com/zizouhuweidi/slidequiz/internal/database"
	"github.com/zizouhuweidi/slidequiz/internal/domain"
	"github.com/zizouhuweidi/slidequiz/internal/generation"
	"github.com/zizouhuweidi/slidequiz/internal/handler"
	"github.com/zizouhuweidi/slidequiz/internal/repository/memory"
	"github.com/zizouhuweidi/slidequiz/internal/repository/postgres"
	"github.com/zizouhuweidi/slidequiz/internal/service"
	"github.com/zizouhuweidi/slidequiz/internal/session"
	"github.com/zizouhuweidi/slidequiz/internal/storage"
	"github.com/zizouhuweidi/slidequiz/internal/websocket"
)

type repositories struct {
	questions    domain.QuestionRepository
	chunks       domain.ChunkRepository
	seeder       domain.ChunkSeeder
	interactions domain.InteractionRepository
	users        domain.UserRepository
	close        func()
}

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or a termination signal arrives. Every
// resource it opens is released before it returns.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize repositories
	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize %s storage: %w", cfg.StoreDriver, err)
	}
	defer repos.close()

	if cfg.SeedChunksDir != "" {
		dir, err := storage.NewChunkDirectory(cfg.SeedChunksDir)
		if err != nil {
			return fmt.Errorf("open seed directory: %w", err)
		}
		seeded, err := dir.Seed(ctx, repos.seeder)
		if err != nil {
			return fmt.Errorf("seed content chunks: %w", err)
		}
		logger.Info("seeded content chunks", "count", seeded, "dir", cfg.SeedChunksDir)
	}

	// Initialize websocket hub
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	// Initialize Redis, falling back to local-only events and no rate limit
	var events domain.EventPublisher = hub
	var limiter handler.RateLimiter
	if cfg.Redis.Enabled() {
		redisClient, err := database.ConnectRedis(cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, continuing without it", "error", err)
		} else {
			defer redisClient.Close()
			sessionManager := session.NewManager(redisClient, logger)
			events = sessionManager
			limiter = sessionManager
			go func() {
				if err := sessionManager.RelayPoolEvents(ctx, hub); err != nil {
					logger.Warn("pool event relay stopped", "error", err)
				}
			}()
		}
	}

	// Initialize services
	generator := generation.NewClient(cfg.GenerationURL, logger)
	ranker := service.NewChunkRanker(repos.chunks)
	feedService := service.NewFeedService(repos.questions, ranker, generator, events, service.FeedOptions{
		BatchSize:         cfg.Feed.BatchSize,
		MinPoolThreshold:  cfg.Feed.MinPoolThreshold,
		ExposureCap:       cfg.Feed.ExposureCap,
		DefaultEngagement: cfg.Feed.DefaultEngagement,
		GenerationTimeout: cfg.Feed.GenerationTimeout,
	}, logger)
	interactionService := service.NewInteractionService(repos.interactions)
	accountService := service.NewAccountService(repos.users)

	if cfg.WarmerSchedule != "" {
		warmer, err := service.NewPoolWarmer(feedService, cfg.WarmerSchedule, cfg.RequestTimeout, logger)
		if err != nil {
			return fmt.Errorf("schedule pool warmer: %w", err)
		}
		warmer.Start()
		defer warmer.Stop()
	}

	// Initialize handlers
	feedHandler := handler.NewFeedHandler(feedService, handler.FeedHandlerOptions{
		Limiter:        limiter,
		RateLimit:      cfg.RateLimit,
		RateWindow:     time.Minute,
		RequestTimeout: cfg.RequestTimeout,
	}, logger)
	interactionHandler := handler.NewInteractionHandler(interactionService, logger)
	webhookHandler := handler.NewWebhookHandler(accountService, cfg.WebhookSecret, logger)
	wsHandler := handler.NewWebSocketHandler(hub)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Routes
	api := e.Group("/api")
	webhookHandler.Register(api)

	authed := api.Group("", auth.Middleware(cfg.JWTSecret))
	feedHandler.Register(authed)
	interactionHandler.Register(authed)

	// WebSocket route
	e.GET("/ws", wsHandler.HandleWebSocket)

	// Health check endpoint
	e.GET("/health", handler.Health)

	// Start server
	serveErr := make(chan error, 1)
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		return fmt.Errorf("server stopped unexpectedly: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shut down server: %w", err)
	}
	return nil
}

func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositories, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("using in-memory store, data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			questions:    store,
			chunks:       store,
			seeder:       store,
			interactions: store,
			users:        store,
			close:        func() {},
		}, nil
	}

	pool, err := database.ConnectPostgres(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	if cfg.Migrate {
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}

	chunks := postgres.NewChunkRepository(pool)
	return &repositories{
		questions:    postgres.NewQuestionRepository(pool),
		chunks:       chunks,
		seeder:       chunks,
		interactions: postgres.NewInteractionRepository(pool),
		users:        postgres.NewUserRepository(pool),
		close:        pool.Close,
	}, nil
}
