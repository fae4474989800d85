// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/database/postgres"
	redisdb "github.com/your-org/ecommerce-storefront/internal/infrastructure/database/redis"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http"
	"github.com/your-org/ecommerce-storefront/internal/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg := logger.New(cfg)
	logg.Infof("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	// Connect to database
	db, err := postgres.NewConnection(cfg, logg)
	if err != nil {
		logg.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Health(); err != nil {
		logg.Fatalf("Database health check failed: %v", err)
	}

	// Redis backs rate limiting; without it the limiter runs in-process
	var redisClient *redis.Client
	if conn, err := redisdb.NewConnection(cfg, logg); err != nil {
		logg.WithError(err).Warn("Redis unavailable, rate limiting falls back to in-process limiter")
	} else {
		defer conn.Close()
		redisClient = conn.GetClient()
	}

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB(), logg, cfg.Security.BcryptCost)

	if err := migration.RunAutoMigrations(); err != nil {
		logg.Fatalf("Database migration failed: %v", err)
	}

	if err := migration.CreateIndexes(); err != nil {
		logg.Warnf("Index creation failed: %v", err)
	}

	// Seed initial data in development
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(); err != nil {
			logg.Warnf("Data seeding failed: %v", err)
		}
	}

	// Create and start HTTP server
	server := http.NewServer(cfg, logg, db.GetDB(), redisClient)

	go func() {
		if err := server.Start(); err != nil {
			logg.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logg.Info("👋 Shutting down gracefully...")

	// Give server 30 seconds to shutdown gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logg.Errorf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	logg.Info("✅ Server shutdown completed")
}
