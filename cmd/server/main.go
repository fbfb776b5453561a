package main

import (
	"context" // context package is needed for Redis operations
	"os"      // Standard output for the logger

	"multicurrency_wallet/internal/api"      // Custom package for HTTP handlers
	"multicurrency_wallet/internal/avatar"   // Avatar storage
	"multicurrency_wallet/internal/config"   // Custom package for configuration
	"multicurrency_wallet/internal/currency" // Exchange rate client
	"multicurrency_wallet/internal/db"       // Database connection
	"multicurrency_wallet/internal/ledger"   // Ledger view builder
	"multicurrency_wallet/internal/store"    // Repository
	"multicurrency_wallet/internal/utils"    // Redis cache helper

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration
	setupLogger(cfg)

	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set")
	}

	// Connect to the database
	conn, err := db.Open(cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	// Rates are cached in Redis; fall back to process memory when it is unreachable
	var rateCache currency.RateCache = utils.NewRedisCache(redisClient, "wallet:")
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.WithField("error", err.Error()).Warn("Redis unavailable, caching rates in memory")
		rateCache = utils.NewMemoryCache(cfg.RateCacheTTL)
	}

	converter := currency.NewClient(cfg.ExchangeRateURL, cfg.ExchangeRateTimeout,
		currency.WithCache(rateCache, cfg.RateCacheTTL))

	avatars, err := avatar.NewStore(cfg.UploadFolder, cfg.PublicURL, cfg.MaxUploadBytes)
	if err != nil {
		logrus.Fatalf("failed to prepare upload folder: %v", err)
	}

	repo := store.New(conn)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := api.NewRouter(api.RouterConfig{
		Users:          repo,
		Entries:        repo,
		Ledger:         ledger.NewBuilder(repo, converter),
		Currencies:     converter,
		Avatars:        avatars,
		JWTSecret:      cfg.JWTSecret,
		SecureCookies:  cfg.IsProd,
		UploadDir:      avatars.Dir(),
		MaxUploadBytes: cfg.MaxUploadBytes,
		TrustedProxies: []string{"127.0.0.1"},
	})
	if err != nil {
		logrus.Fatalf("failed to build router: %v", err)
	}

	logrus.WithField("port", cfg.AppPort).Info("Server running") // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}

// setupLogger picks the formatter and level from the configuration
func setupLogger(cfg *config.Config) {
	logrus.SetOutput(os.Stdout)
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05Z07:00"})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
