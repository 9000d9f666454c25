package internal

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/DukeRupert/uphill/internal/storage"
)

type Config struct {
	Env      string
	Port     int
	LogLevel string

	// Application base URL (for published links)
	BaseURL string

	// Datasets. Empty DataDir uses the copies compiled into the binary.
	DataDir string

	// TemplatesDir reloads templates from disk in development. Empty uses
	// the embedded templates.
	TemplatesDir string

	// AssetsDir holds images/ and trailmaps/ published by the generator
	AssetsDir string

	// Live view tuning
	SearchDebounce  time.Duration
	SuggestionLimit int
	SessionTTL      time.Duration

	// Live event rate limit, per client IP
	LiveRateLimit  int
	LiveRateWindow time.Duration

	// Storage Configuration
	StorageProvider string // "local" or "r2"

	// Local Storage (development)
	LocalStoragePath string // Output directory of the generated site
	LocalStorageURL  string // Base URL the directory is served from

	// R2 Storage (production)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string // Optional custom domain URL

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		// Base URL defaults to localhost for development
		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),

		DataDir:      getEnv("DATA_DIR", ""),
		TemplatesDir: getEnv("TEMPLATES_DIR", ""),
		AssetsDir:    getEnv("ASSETS_DIR", "./assets"),

		SearchDebounce:  getEnvDuration("SEARCH_DEBOUNCE", 150*time.Millisecond),
		SuggestionLimit: getEnvInt("SUGGESTION_LIMIT", 8),
		SessionTTL:      getEnvDuration("SESSION_TTL", 30*time.Minute),

		LiveRateLimit:  getEnvInt("LIVE_RATE_LIMIT", 600),
		LiveRateWindow: getEnvDuration("LIVE_RATE_WINDOW", time.Minute),

		// Storage defaults to local filesystem for development
		StorageProvider:  getEnv("STORAGE_PROVIDER", storage.ProviderLocal),
		LocalStoragePath: getEnv("OUTPUT_DIR", "./dist"),
		LocalStorageURL:  getEnv("LOCAL_STORAGE_URL", "http://localhost:8080"),

		// R2 configuration (production only)
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),

		// Metrics authentication
		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other.
func (cfg *Config) Validate() error {
	if cfg.SearchDebounce < 0 {
		return fmt.Errorf("SEARCH_DEBOUNCE must not be negative, got: %s", cfg.SearchDebounce)
	}
	if cfg.SuggestionLimit < 1 {
		return fmt.Errorf("SUGGESTION_LIMIT must be at least 1, got: %d", cfg.SuggestionLimit)
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got: %s", cfg.SessionTTL)
	}

	// Validate storage configuration
	if cfg.StorageProvider == storage.ProviderR2 {
		if cfg.R2AccountID == "" {
			return fmt.Errorf("R2_ACCOUNT_ID is required when STORAGE_PROVIDER is 'r2'")
		}
		if cfg.R2AccessKeyID == "" {
			return fmt.Errorf("R2_ACCESS_KEY_ID is required when STORAGE_PROVIDER is 'r2'")
		}
		if cfg.R2SecretAccessKey == "" {
			return fmt.Errorf("R2_SECRET_ACCESS_KEY is required when STORAGE_PROVIDER is 'r2'")
		}
		if cfg.R2BucketName == "" {
			return fmt.Errorf("R2_BUCKET_NAME is required when STORAGE_PROVIDER is 'r2'")
		}
	} else if cfg.StorageProvider != storage.ProviderLocal {
		return fmt.Errorf("STORAGE_PROVIDER must be either 'local' or 'r2', got: %s", cfg.StorageProvider)
	}
	return nil
}

// IsDevelopment reports whether the app runs in development mode.
func (cfg *Config) IsDevelopment() bool {
	return cfg.Env == "development"
}

// NewStorage opens the configured storage backend.
func (cfg *Config) NewStorage(logger *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageProvider {
	case storage.ProviderR2:
		return storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		}, logger)
	default:
		return storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		}, logger)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
