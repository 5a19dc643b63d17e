package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"ddj/database"
)

// DefaultAnchorMs is the epoch round 0 starts at when ANCHOR_MS is
// unset: 2024-01-01T00:00:00Z.
const DefaultAnchorMs int64 = 1704067200000

// Config holds all application configuration
type Config struct {
	// HTTP configuration
	Port     int
	AdminKey string

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Draw configuration
	SecretSeed string

	// Game configuration
	SignupBonusDOS int64
	RoundSeconds   int64
	CloseBetsAt    int64
	AnchorMs       int64

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated), empty disables publishing

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		Port:     3000,
		AdminKey: os.Getenv("ADMIN_KEY"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		SecretSeed: os.Getenv("SECRET_SEED"),

		SignupBonusDOS: 50,
		RoundSeconds:   300,
		CloseBetsAt:    30,
		AnchorMs:       DefaultAnchorMs,

		NATSServers: os.Getenv("NATS_SERVERS"),

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if port := os.Getenv("PORT"); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil {
			config.Port = parsed
		}
	}
	if bonus := os.Getenv("SIGNUP_BONUS_DOS"); bonus != "" {
		if parsed, err := strconv.ParseInt(bonus, 10, 64); err == nil {
			config.SignupBonusDOS = parsed
		}
	}
	if seconds := os.Getenv("ROUND_SECONDS"); seconds != "" {
		if parsed, err := strconv.ParseInt(seconds, 10, 64); err == nil {
			config.RoundSeconds = parsed
		}
	}
	if closeAt := os.Getenv("CLOSE_BETS_AT"); closeAt != "" {
		if parsed, err := strconv.ParseInt(closeAt, 10, 64); err == nil {
			config.CloseBetsAt = parsed
		}
	}
	if anchor := os.Getenv("ANCHOR_MS"); anchor != "" {
		if parsed, err := strconv.ParseInt(anchor, 10, 64); err == nil {
			config.AnchorMs = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.AdminKey == "" {
			return nil, fmt.Errorf("ADMIN_KEY is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:    "test",
		Port:           3000,
		AdminKey:       "test-admin-key",
		SecretSeed:     "test-secret-seed-0123456789abcdef",
		SignupBonusDOS: 50,
		RoundSeconds:   300,
		CloseBetsAt:    30,
		AnchorMs:       DefaultAnchorMs,
	}
}
