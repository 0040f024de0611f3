package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"valuemap/internal/valuation"
)

const (
	MinLimit = 10
	MaxLimit = 300
)

// Config holds application configuration
type Config struct {
	Env      string
	LogLevel string

	// Server
	Port string

	// Database
	DBDriver   string
	SQLitePath string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Pipeline
	PipelineAPIKey string

	// Market data
	SnapshotTTL      time.Duration
	DefaultLimit     int
	RequestTimeout   time.Duration
	FetchRPS         float64
	FetchConcurrency int
	RefreshCron      string

	// Valuation scale, from VALUATION_CONFIG or built-in defaults
	Valuation valuation.Config
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Server
		Port: getEnv("PORT", "8080"),

		// Database
		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		SQLitePath: getEnv("SQLITE_PATH", "valuemap.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "valuemap"),
		DBPassword: getEnv("DB_PASSWORD", "valuemap"),
		DBName:     getEnv("DB_NAME", "valuemap"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		PipelineAPIKey: getEnv("PIPELINE_API_KEY", ""),

		SnapshotTTL:      getDuration("SNAPSHOT_TTL", 24*time.Hour),
		DefaultLimit:     getInt("DEFAULT_LIMIT", 30),
		RequestTimeout:   getDuration("REQUEST_TIMEOUT", 30*time.Second),
		FetchRPS:         getFloat("FETCH_RPS", 3),
		FetchConcurrency: getInt("FETCH_CONCURRENCY", 4),
		RefreshCron:      getEnv("REFRESH_CRON", ""),
	}

	if config.DefaultLimit < MinLimit || config.DefaultLimit > MaxLimit {
		log.Printf("Warning: DEFAULT_LIMIT %d outside %d..%d, falling back to 30\n", config.DefaultLimit, MinLimit, MaxLimit)
		config.DefaultLimit = 30
	}

	if config.DBDriver != "sqlite" && config.DBDriver != "postgres" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", config.DBDriver)
	}

	vc, err := LoadValuation(getEnv("VALUATION_CONFIG", ""))
	if err != nil {
		return nil, err
	}
	config.Valuation = vc

	appConfig = config
	return config, nil
}

// LoadValuation reads a YAML valuation scale. Fields missing from the file
// keep their defaults; an empty path returns the defaults unchanged.
func LoadValuation(path string) (valuation.Config, error) {
	cfg := valuation.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading valuation config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing valuation config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid valuation config: %w", err)
	}
	return cfg, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	s := getEnv(key, "")
	if s == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, s, defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	s := getEnv(key, "")
	if s == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, s, defaultValue)
		return defaultValue
	}
	return n
}

func getFloat(key string, defaultValue float64) float64 {
	s := getEnv(key, "")
	if s == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %v\n", key, s, defaultValue)
		return defaultValue
	}
	return f
}
