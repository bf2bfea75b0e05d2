package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the ingestion pipeline and search API.
type Config struct {
	AnthropicAPIKey string
	AnthropicModel  string

	VoyageAPIKey   string
	VoyageBaseURL  string
	EmbeddingModel string
	VectorSize     int

	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string

	ResumeDir    string
	ProcessedDir string
	ErrorDir     string

	LedgerPath string

	IngestWorkers int
	MaxRetries    int
	ProviderRPS   float64
	SearchLimit   int

	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or an ancestor, it is loaded
// automatically; environment variables already set take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up a few levels looking for a .env at the project root.
	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
		VoyageAPIKey:     os.Getenv("VOYAGE_API_KEY"),
		VoyageBaseURL:    getEnv("VOYAGE_BASE_URL", "https://api.voyageai.com"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "voyage-3"),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:     os.Getenv("QDRANT_API_KEY"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "candidates"),
		ResumeDir:        getEnv("RESUME_DIR", "data/resumes"),
		ProcessedDir:     getEnv("PROCESSED_DIR", "data/processed_resumes"),
		ErrorDir:         getEnv("ERROR_DIR", "data/errors"),
		LedgerPath:       getEnv("LEDGER_PATH", "./data/semantic-ats.db"),
		APIPort:          getEnv("API_PORT", "8000"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	// EMBEDDING_DIM must match the output size of the embedding model.
	// voyage-3 emits 1024-dimensional vectors; if the model changes, the
	// Qdrant collection must be recreated with the new size.
	vectorSize, err := getEnvInt("EMBEDDING_DIM", 1024)
	if err != nil {
		return nil, err
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("EMBEDDING_DIM must be greater than 0")
	}
	cfg.VectorSize = vectorSize

	workers, err := getEnvInt("INGEST_WORKERS", 1)
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		return nil, fmt.Errorf("INGEST_WORKERS must be at least 1")
	}
	cfg.IngestWorkers = workers

	retries, err := getEnvInt("MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}
	if retries < 0 {
		return nil, fmt.Errorf("MAX_RETRIES must not be negative")
	}
	cfg.MaxRetries = retries

	limit, err := getEnvInt("SEARCH_LIMIT", 10)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		return nil, fmt.Errorf("SEARCH_LIMIT must be at least 1")
	}
	cfg.SearchLimit = limit

	rpsStr := getEnv("PROVIDER_RPS", "2")
	rps, err := strconv.ParseFloat(rpsStr, 64)
	if err != nil || rps <= 0 {
		return nil, fmt.Errorf("PROVIDER_RPS must be a positive number")
	}
	cfg.ProviderRPS = rps

	switch level := getEnv("LOG_LEVEL", "info"); level {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "info":
		cfg.LogLevel = slog.LevelInfo
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error (got %q)", level)
	}

	// Validate required fields
	if cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if cfg.VoyageAPIKey == "" {
		return nil, fmt.Errorf("VOYAGE_API_KEY is required")
	}

	// Create the ledger directory if it doesn't exist
	dataDir := filepath.Dir(cfg.LedgerPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}
