// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"astrochat/pkg/cache" // Import cache package for its Config struct
	"astrochat/pkg/db"    // Import db package for its Config struct
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort      string
	JWTSecret       string
	BillingInterval time.Duration // One metering cycle; 60s in production
	MinuteLockTTL   time.Duration // Slightly longer than one cycle so dead holders self-heal
	DB              db.Config
	Redis           cache.Config
}

// LoadConfig loads configuration from environment variables.
// It returns an AppConfig instance or an error if any variable is invalid.
func LoadConfig() (*AppConfig, error) {
	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080" // Default port
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-change-me" // Default for local development only
	}

	billingIntervalStr := os.Getenv("BILLING_INTERVAL_SECONDS")
	if billingIntervalStr == "" {
		billingIntervalStr = "60"
	}
	billingIntervalSec, err := strconv.Atoi(billingIntervalStr)
	if err != nil || billingIntervalSec <= 0 {
		return nil, fmt.Errorf("invalid BILLING_INTERVAL_SECONDS: %q", billingIntervalStr)
	}
	billingInterval := time.Duration(billingIntervalSec) * time.Second
	// The lock must outlive a holder that dies mid-cycle but stay shorter
	// than two cycles, so the next minute is never blocked.
	minuteLockTTL := billingInterval + 10*time.Second

	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		dbPortStr = "5432"
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		dbUser = "user"
	}
	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		dbPassword = "password"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "astrochatdb"
	}
	dbSSLMode := os.Getenv("DB_SSLMODE")
	if dbSSLMode == "" {
		dbSSLMode = "disable"
	}

	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost"
	}
	redisPortStr := os.Getenv("REDIS_PORT")
	if redisPortStr == "" {
		redisPortStr = "6379"
	}
	redisPort, err := strconv.Atoi(redisPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	redisDBStr := os.Getenv("REDIS_DB")
	if redisDBStr == "" {
		redisDBStr = "0"
	}
	redisDB, err := strconv.Atoi(redisDBStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	return &AppConfig{
		ServerPort:      serverPort,
		JWTSecret:       jwtSecret,
		BillingInterval: billingInterval,
		MinuteLockTTL:   minuteLockTTL,
		DB: db.Config{
			Host:     dbHost,
			Port:     dbPort,
			User:     dbUser,
			Password: dbPassword,
			DBName:   dbName,
			SSLMode:  dbSSLMode,
		},
		Redis: cache.Config{
			Host:     redisHost,
			Port:     redisPort,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
	}, nil
}
