package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"datadesk/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Storage  StorageConfig
	Ingest   IngestConfig
	Auth     AuthConfig
	AI       AIConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

// StorageConfig holds blob storage settings
type StorageConfig struct {
	UploadDir string
}

// IngestConfig holds pipeline limits
type IngestConfig struct {
	MaxUploadBytes      int64
	PreviewLimit        int
	AllowedExtensions   []string
	MaxConcurrentParses int64
	DefaultPlanFiles    int
}

// AuthConfig holds bearer token settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// AIConfig holds LLM settings. An empty key disables the ask endpoint.
type AIConfig struct {
	OpenAIKey   string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	ContextRows int
}

// Default limits
const (
	DefaultMaxUploadBytes = 10 * 1024 * 1024
	DefaultPreviewLimit   = 10
	DefaultContextRows    = 20
)

// Load reads the full server configuration from environment variables and
// validates it
func Load() (*Config, error) {
	config := LoadLocal()

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}
	config.Database = *dbConfig

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// LoadLocal reads everything except database settings. The CLI runs the
// pipeline in-process and never needs a database.
func LoadLocal() *Config {
	return &Config{
		Server:  *loadServerConfig(),
		Storage: *loadStorageConfig(),
		Ingest:  *loadIngestConfig(),
		Auth:    *loadAuthConfig(),
		AI:      *loadAIConfig(),
	}
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	return &DatabaseConfig{
		URL:             url,
		MaxOpenConns:    getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDurationOrDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute),
	}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		GinMode:         getEnvOrDefault("GIN_MODE", "release"),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		RequestTimeout:  getEnvDurationOrDefault("REQUEST_TIMEOUT", 2*time.Minute),
	}
}

func loadStorageConfig() *StorageConfig {
	return &StorageConfig{
		UploadDir: getEnvOrDefault("UPLOAD_DIR", "./uploads"),
	}
}

func loadIngestConfig() *IngestConfig {
	return &IngestConfig{
		MaxUploadBytes:      getEnvInt64OrDefault("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
		PreviewLimit:        getEnvIntOrDefault("PREVIEW_LIMIT", DefaultPreviewLimit),
		AllowedExtensions:   getEnvListOrDefault("ALLOWED_EXTENSIONS", []string{".csv", ".xlsx", ".txt"}),
		MaxConcurrentParses: getEnvInt64OrDefault("MAX_CONCURRENT_PARSES", 4),
		DefaultPlanFiles:    getEnvIntOrDefault("DEFAULT_PLAN_FILES", 5),
	}
}

func loadAuthConfig() *AuthConfig {
	return &AuthConfig{
		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  getEnvDurationOrDefault("TOKEN_TTL", 24*time.Hour),
	}
}

func loadAIConfig() *AIConfig {
	return &AIConfig{
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		BaseURL:     getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Model:       getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
		MaxTokens:   getEnvIntOrDefault("MAX_TOKENS", 1024),
		Temperature: getEnvFloatOrDefault("TEMPERATURE", 0.2),
		Timeout:     getEnvDurationOrDefault("LLM_TIMEOUT", 60*time.Second),
		ContextRows: getEnvIntOrDefault("LLM_CONTEXT_ROWS", DefaultContextRows),
	}
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("database URL is required")
	}
	if config.Auth.JWTSecret == "" {
		return errors.ConfigInvalid("JWT_SECRET is required")
	}
	return ValidateIngest(config.Ingest)
}

// ValidateIngest checks the pipeline limits
func ValidateIngest(c IngestConfig) error {
	if c.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_BYTES must be positive")
	}
	if c.PreviewLimit <= 0 {
		return errors.ConfigInvalid("PREVIEW_LIMIT must be positive")
	}
	if c.MaxConcurrentParses <= 0 {
		return errors.ConfigInvalid("MAX_CONCURRENT_PARSES must be positive")
	}
	if c.DefaultPlanFiles < 0 {
		return errors.ConfigInvalid("DEFAULT_PLAN_FILES cannot be negative")
	}
	if len(c.AllowedExtensions) == 0 {
		return errors.ConfigInvalid("ALLOWED_EXTENSIONS cannot be empty")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvListOrDefault splits a comma separated value, lowercasing entries
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
