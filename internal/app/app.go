package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"convertbot/internal/bot"
	"convertbot/internal/config"
	"convertbot/internal/session"
	"convertbot/internal/staging"
	"convertbot/internal/storage"
	"convertbot/internal/storage/ch"
	"convertbot/internal/storage/sqlite"
	"convertbot/internal/storage/stubs"
)

// App represents the application
type App struct {
	config   *config.Config
	logger   *zap.Logger
	ctx      context.Context
	stop     context.CancelFunc
	db       storage.Storage
	redis    *redis.Client
	sessions session.Store
	staging  *staging.Area
	bot      *bot.Bot
	routes   *bot.HTTPServer
	server   *http.Server
}

// New creates and initializes a new application instance
func New() (*App, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration from environment variables
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &App{config: cfg, logger: logger}
	app.ctx, app.stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	logger.Info("Starting Converter Bot...")

	steps := []func() error{
		app.initDatabase,
		app.initSessions,
		app.initStaging,
		app.initBot,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			app.stop()
			app.close()
			return nil, err
		}
	}

	// Initialize HTTP server
	app.initHTTPServer()

	return app, nil
}

// initDatabase opens the configured storage backend and applies the schema
func (a *App) initDatabase() error {
	var db storage.Storage
	switch a.config.StorageBackend {
	case config.StorageMock:
		a.logger.Info("Using mock database")
		db = stubs.NewMockDB()

	case config.StorageClickHouse:
		tlsStatus := "without TLS"
		if a.config.ClickHouseUseTLS {
			tlsStatus = "with TLS"
		}
		a.logger.Info("Connecting to ClickHouse",
			zap.String("host", a.config.ClickHouseHost),
			zap.Int("port", a.config.ClickHousePort),
			zap.String("database", a.config.ClickHouseDatabase),
			zap.String("user", a.config.ClickHouseUser),
			zap.String("tls", tlsStatus),
		)
		clickhouseDB, err := ch.NewClickHouseDB(
			a.config.ClickHouseHost,
			a.config.ClickHousePort,
			a.config.ClickHouseDatabase,
			a.config.ClickHouseUser,
			a.config.ClickHousePassword,
			a.config.ClickHouseUseTLS,
		)
		if err != nil {
			return fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		db = clickhouseDB

	default:
		a.logger.Info("Opening SQLite database", zap.String("path", a.config.SQLitePath))
		sqliteDB, err := sqlite.Open(a.ctx, a.config.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open SQLite: %w", err)
		}
		db = sqliteDB
	}
	a.db = db

	// Initialize database schema
	if err := db.Initialize(a.ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.logger.Info("Database initialized successfully", zap.String("backend", a.config.StorageBackend))
	return nil
}

// initSessions selects where per-user upload sessions live
func (a *App) initSessions() error {
	if a.config.SessionBackend != config.SessionRedis {
		a.logger.Info("Using in-memory session store")
		a.sessions = session.NewMemoryStore()
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.config.RedisAddr,
		Password: a.config.RedisPassword,
		DB:       a.config.RedisDB,
	})
	if err := client.Ping(a.ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	a.logger.Info("Using Redis session store",
		zap.String("addr", a.config.RedisAddr),
		zap.Duration("ttl", a.config.SessionTTL),
	)
	a.redis = client
	a.sessions = session.NewRedisStore(client, a.config.SessionTTL)
	return nil
}

// initStaging prepares the directory for uploads and generated files
func (a *App) initStaging() error {
	area, err := staging.NewOnDisk(a.config.StagingDir)
	if err != nil {
		return fmt.Errorf("failed to prepare staging area: %w", err)
	}
	a.staging = area
	return nil
}

// initBot initializes the Telegram bot
func (a *App) initBot() error {
	telegramBot, err := bot.NewBot(a.config.TelegramToken, a.db, a.sessions, a.staging, bot.Options{
		AdminUserIDs:     a.config.AdminUserIDs,
		NotifyChatID:     a.config.NotifyChatID,
		BroadcastDelay:   a.config.BroadcastDelay,
		Location:         a.config.Location,
		LaunchDate:       a.config.LaunchDate,
		GateChannelIndex: a.config.GateChannelIndex,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	a.logger.Info("Bot created successfully", zap.Int64s("admins", a.config.AdminUserIDs))

	a.bot = telegramBot
	return nil
}

// initHTTPServer initializes the HTTP server for health checks and webhook
func (a *App) initHTTPServer() {
	mux := http.NewServeMux()
	a.routes = bot.NewHTTPServer(a.ctx, a.bot, a.config.WebhookMode)
	a.routes.RegisterRoutes(mux)

	a.server = &http.Server{
		Addr:         ":" + a.config.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run() error {
	defer a.stop()

	g, gctx := errgroup.WithContext(a.ctx)

	g.Go(func() error {
		a.logger.Info("Starting HTTP server", zap.String("port", a.config.Port))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Wait for interrupt signal or a failed component
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	// Start bot in appropriate mode
	if a.config.WebhookMode {
		a.logger.Info("Starting bot in WEBHOOK mode", zap.String("webhook_url", a.config.WebhookURL))
		if err := a.bot.StartWebhook(a.config.WebhookURL); err != nil {
			a.stop()
			_ = g.Wait()
			a.close()
			return fmt.Errorf("failed to setup webhook: %w", err)
		}
		a.logger.Info("Webhook configured. Bot will receive updates via HTTP endpoint /telegram-webhook")
	} else {
		g.Go(func() error {
			a.logger.Info("Starting bot in POLLING mode...")
			return a.bot.Start(gctx)
		})
	}

	err := g.Wait()
	a.close()
	return err
}

// close waits for in-flight updates and releases every resource
func (a *App) close() {
	if a.routes != nil {
		a.routes.Wait()
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("Error closing database", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("Error closing Redis", zap.Error(err))
		}
	}

	a.logger.Info("Shutdown complete")
	_ = a.logger.Sync()
}

// Logger exposes the application logger
func (a *App) Logger() *zap.Logger {
	return a.logger
}
