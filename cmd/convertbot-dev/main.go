package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/alicebob/miniredis/v2"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	clickhouseTC "github.com/testcontainers/testcontainers-go/modules/clickhouse"

	"convertbot/internal/app"
	"convertbot/migrations"
)

// Runs the bot against a throwaway ClickHouse container and an in-process
// Redis so the non-default backends can be exercised locally.
func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	log.Println("Starting ClickHouse testcontainer...")

	// Start ClickHouse container
	clickhouseContainer, err := clickhouseTC.Run(ctx,
		"clickhouse/clickhouse-server:latest",
		clickhouseTC.WithUsername("default"),
		clickhouseTC.WithPassword("devpassword"),
		clickhouseTC.WithDatabase("default"),
	)
	if err != nil {
		log.Fatalf("Failed to start ClickHouse container: %v", err)
	}

	// Ensure container cleanup on exit
	defer func() {
		log.Println("Stopping ClickHouse container...")
		if err := clickhouseContainer.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate container: %v", err)
		}
	}()

	// Get connection details
	host, err := clickhouseContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}

	port, err := clickhouseContainer.MappedPort(ctx, "9000/tcp")
	if err != nil {
		log.Fatalf("Failed to get container port: %v", err)
	}

	log.Printf("ClickHouse started at %s:%s", host, port.Port())

	if err := migrate(ctx, host, port.Int()); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	redisServer, err := miniredis.Run()
	if err != nil {
		log.Fatalf("Failed to start in-process Redis: %v", err)
	}
	defer redisServer.Close()
	log.Printf("Redis started at %s", redisServer.Addr())

	// Set environment variables for the application
	os.Setenv("STORAGE_BACKEND", "clickhouse")
	os.Setenv("CLICKHOUSE_HOST", host)
	os.Setenv("CLICKHOUSE_PORT", port.Port())
	os.Setenv("CLICKHOUSE_DATABASE", "default")
	os.Setenv("CLICKHOUSE_USER", "default")
	os.Setenv("CLICKHOUSE_PASSWORD", "devpassword")
	os.Setenv("CLICKHOUSE_USE_TLS", "false")
	os.Setenv("SESSION_BACKEND", "redis")
	os.Setenv("REDIS_ADDR", redisServer.Addr())
	os.Setenv("WEBHOOK_MODE", "false")
	os.Setenv("LOG_FORMAT", "console")
	os.Setenv("LOG_LEVEL", "debug")

	if os.Getenv("STAGING_DIR") == "" {
		dir, err := os.MkdirTemp("", "convertbot-staging-")
		if err != nil {
			log.Fatalf("Failed to create staging dir: %v", err)
		}
		defer os.RemoveAll(dir)
		os.Setenv("STAGING_DIR", dir)
	}

	// Ensure TELEGRAM_BOT_TOKEN and ADMIN_USER_IDS are set
	if os.Getenv("TELEGRAM_BOT_TOKEN") == "" {
		log.Println("⚠️  TELEGRAM_BOT_TOKEN not set. Please set it in your .env file or environment.")
		log.Println("   The bot will fail to start without a valid token.")
	}

	if os.Getenv("ADMIN_USER_IDS") == "" {
		log.Println("⚠️  ADMIN_USER_IDS not set. Please set it in your .env file or environment.")
		log.Println("   Nobody will be able to open the admin panel.")
	}

	log.Println("Starting application with ClickHouse and Redis backends...")
	fmt.Println()

	// Create and initialize application
	application, err := app.New()
	if err != nil {
		log.Printf("Failed to create application: %v", err)
		return
	}

	// Run blocks until SIGINT/SIGTERM
	if err := application.Run(); err != nil {
		log.Printf("Application error: %v", err)
	}
}

// migrate applies the embedded ClickHouse migrations
func migrate(ctx context.Context, host string, port int) error {
	db := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", host, port)},
		Auth: clickhouse.Auth{
			Database: "default",
			Username: "default",
			Password: "devpassword",
		},
	})
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectClickHouse, db, migrations.ClickHouse())
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	for _, r := range results {
		log.Printf("Applied migration %s", r.Source.Path)
	}
	return nil
}
