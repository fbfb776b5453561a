package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For trimming values
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Defaults applied when the environment leaves a setting empty
const (
	DefaultAppPort         = "8080"
	DefaultExchangeRateURL = "https://api.exchangerate-api.com/v4/latest/USD"
	DefaultRateTimeout     = 5 * time.Second
	DefaultRateCacheTTL    = 10 * time.Minute
	DefaultUploadFolder    = "uploads"
	DefaultMaxUploadBytes  = 16 << 20
)

// Config holds the application configuration
type Config struct {
	AppPort    string // Application port
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	JWTSecret  string // Session signing secret
	RedisAddr  string // Redis server address
	RedisPass  string // Redis password
	RedisDB    int    // Redis database number
	IsProd     bool   // Is production environment
	LogLevel   string // debug, info, warn or error

	ExchangeRateURL     string        // Live rate feed endpoint
	ExchangeRateTimeout time.Duration // Upper bound for a single feed call
	RateCacheTTL        time.Duration // How long a fetched rate table is reused

	UploadFolder   string // Directory avatars are written to
	PublicURL      string // Root URL used to build avatar links
	MaxUploadBytes int64  // Largest accepted avatar
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	port := getEnv("APP_PORT", DefaultAppPort)
	return &Config{
		AppPort:    port,                           // Application port
		DBUser:     os.Getenv("DB_USER"),           // Database user
		DBPassword: os.Getenv("DB_PASSWORD"),       // Database password
		DBHost:     os.Getenv("DB_HOST"),           // Database host
		DBPort:     os.Getenv("DB_PORT"),           // Database port
		DBName:     os.Getenv("DB_NAME"),           // Database name
		JWTSecret:  os.Getenv("JWT_SECRET"),        // Session signing secret
		RedisAddr:  os.Getenv("REDIS_ADDR"),        // Redis server address
		RedisPass:  os.Getenv("REDIS_PASS"),        // Redis password
		RedisDB:    redisDB,                        // Redis database number
		IsProd:     os.Getenv("IS_PROD") == "true", // Is production environment
		LogLevel:   getEnv("LOG_LEVEL", "info"),    // Log level

		ExchangeRateURL:     getEnv("EXCHANGE_RATE_URL", DefaultExchangeRateURL),
		ExchangeRateTimeout: getDuration("EXCHANGE_RATE_TIMEOUT", DefaultRateTimeout),
		RateCacheTTL:        getDuration("RATE_CACHE_TTL", DefaultRateCacheTTL),

		UploadFolder:   getEnv("UPLOAD_FOLDER", DefaultUploadFolder),
		PublicURL:      strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:"+port), "/"),
		MaxUploadBytes: getInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
	}
}

// DSN builds the MySQL data source name
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getInt64(key string, fallback int64) int64 {
	n, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
