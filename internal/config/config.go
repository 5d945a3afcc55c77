package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Relational store configuration
	Relational RelationalConfig

	// Document store configuration
	Document DocumentConfig

	// Event bus configuration
	EventBus EventBusConfig

	// JWT configuration
	JWT JWTConfig

	// Booking engine configuration
	Booking BookingConfig

	// Clickstream ingest configuration
	Clickstream ClickstreamConfig

	// CORS configuration
	CORS CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string
	Environment  string // development, staging, production
	LogLevel     string // trace, debug, info, warn, error
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// RelationalConfig holds relational store configuration
type RelationalConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DocumentConfig holds document store configuration
type DocumentConfig struct {
	URL            string
	Database       string
	ConnectTimeout time.Duration
}

// EventBusConfig holds message bus configuration. An empty broker list
// switches the publisher to log-only mode.
type EventBusConfig struct {
	Brokers    []string
	Topic      string
	ClientID   string
	QueueSize  int
	MaxRetries int
}

// JWTConfig holds token signing configuration
type JWTConfig struct {
	Secret      string
	TokenExpiry time.Duration
}

// BookingConfig holds booking engine tunables
type BookingConfig struct {
	InventoryLockTimeout time.Duration
	PaymentTimeout       time.Duration
}

// ClickstreamConfig holds ingest pipeline tunables. Writes are batched; an
// event sits at most FlushInterval before it reaches the document store.
type ClickstreamConfig struct {
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	Workers       int
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			ReadTimeout:  time.Duration(getEnvAsInt("SERVER_READ_TIMEOUT_SEC", 15)) * time.Second,
			WriteTimeout: time.Duration(getEnvAsInt("SERVER_WRITE_TIMEOUT_SEC", 15)) * time.Second,
			IdleTimeout:  time.Duration(getEnvAsInt("SERVER_IDLE_TIMEOUT_SEC", 60)) * time.Second,
		},
		Relational: RelationalConfig{
			URL:             getEnv("RELATIONAL_URL", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: time.Duration(getEnvAsInt("DB_CONN_MAX_LIFETIME_MIN", 5)) * time.Minute,
			ConnMaxIdleTime: time.Duration(getEnvAsInt("DB_CONN_MAX_IDLE_TIME_MIN", 5)) * time.Minute,
		},
		Document: DocumentConfig{
			URL:            getEnv("DOCUMENT_URL", ""),
			Database:       getEnv("DOCUMENT_DB_NAME", "travel"),
			ConnectTimeout: time.Duration(getEnvAsInt("DOCUMENT_CONNECT_TIMEOUT_SEC", 10)) * time.Second,
		},
		EventBus: EventBusConfig{
			Brokers:    getEnvAsSlice("EVENT_BUS_BROKERS", nil),
			Topic:      getEnv("EVENT_BUS_TOPIC", "booking-events"),
			ClientID:   getEnv("EVENT_BUS_CLIENT_ID", "travel-backend"),
			QueueSize:  getEnvAsInt("PUBLISH_QUEUE_SIZE", 1024),
			MaxRetries: getEnvAsInt("PUBLISH_MAX_RETRIES", 5),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", ""),
			TokenExpiry: time.Duration(getEnvAsInt("JWT_TTL_SECONDS", 3600)) * time.Second,
		},
		Booking: BookingConfig{
			InventoryLockTimeout: time.Duration(getEnvAsInt("INVENTORY_LOCK_TIMEOUT_MS", 5000)) * time.Millisecond,
			PaymentTimeout:       time.Duration(getEnvAsInt("PAYMENT_TIMEOUT_MS", 2000)) * time.Millisecond,
		},
		Clickstream: ClickstreamConfig{
			QueueSize:     getEnvAsInt("CLICKSTREAM_QUEUE_SIZE", 4096),
			BatchSize:     getEnvAsInt("CLICKSTREAM_BATCH_SIZE", 50),
			FlushInterval: time.Duration(getEnvAsInt("CLICKSTREAM_FLUSH_INTERVAL_MS", 1000)) * time.Millisecond,
			Workers:       getEnvAsInt("CLICKSTREAM_WORKERS", 2),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods:   getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization", "X-Request-ID"}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", true),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Relational.URL == "" {
		return fmt.Errorf("RELATIONAL_URL is required")
	}

	if c.Document.URL == "" {
		return fmt.Errorf("DOCUMENT_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes, got %d", len(c.JWT.Secret))
	}

	if c.JWT.TokenExpiry <= 0 {
		return fmt.Errorf("JWT_TTL_SECONDS must be positive")
	}

	if c.Booking.InventoryLockTimeout <= 0 {
		return fmt.Errorf("INVENTORY_LOCK_TIMEOUT_MS must be positive")
	}

	switch c.Server.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace|debug|info|warn|error, got %q", c.Server.LogLevel)
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
