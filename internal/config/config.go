/**
 * Configuration for the bill extraction worker
 *
 * Loads configuration from environment variables (optionally via .env)
 */

package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds worker configuration
type Config struct {
	// Redis configuration
	RedisURL  string
	QueueName string

	// PostgreSQL configuration; empty disables persistence
	DatabaseURL string

	// Worker configuration
	WorkerConcurrency int
	PageWorkers       int
	ProcessingTimeout int // milliseconds

	// OCR configuration
	TesseractLang string
	RasterDPI     int

	// Extraction tuning
	RowYThresh          float64
	MaxColumns          int
	DedupeNameThreshold int
	DedupeAmountTol     float64

	// Temporary directory for page images; empty uses the OS default
	TempDir string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		RedisURL:            getEnvOrDefault("REDIS_URL", "redis://localhost:6379"),
		QueueName:           getEnvOrDefault("QUEUE_NAME", "billextract:jobs"),
		DatabaseURL:         getEnvOrDefault("DATABASE_URL", ""),
		WorkerConcurrency:   getEnvAsIntOrDefault("WORKER_CONCURRENCY", 5),
		PageWorkers:         getEnvAsIntOrDefault("PAGE_WORKERS", 4),
		ProcessingTimeout:   getEnvAsIntOrDefault("PROCESSING_TIMEOUT", 300000), // 5 minutes
		TesseractLang:       getEnvOrDefault("TESSERACT_LANG", "eng"),
		RasterDPI:           getEnvAsIntOrDefault("RASTER_DPI", 300),
		RowYThresh:          getEnvAsFloatOrDefault("ROW_Y_THRESH", 12),
		MaxColumns:          getEnvAsIntOrDefault("MAX_COLUMNS", 6),
		DedupeNameThreshold: getEnvAsIntOrDefault("DEDUPE_NAME_THRESHOLD", 85),
		DedupeAmountTol:     getEnvAsFloatOrDefault("DEDUPE_AMOUNT_TOL", 1.0),
		TempDir:             getEnvOrDefault("TEMP_DIR", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.QueueName == "" {
		return fmt.Errorf("QUEUE_NAME is required")
	}

	if c.WorkerConcurrency < 1 || c.WorkerConcurrency > 100 {
		return fmt.Errorf("WORKER_CONCURRENCY must be between 1 and 100, got %d", c.WorkerConcurrency)
	}

	if c.PageWorkers < 1 || c.PageWorkers > 64 {
		return fmt.Errorf("PAGE_WORKERS must be between 1 and 64, got %d", c.PageWorkers)
	}

	if c.RasterDPI < 72 || c.RasterDPI > 600 {
		return fmt.Errorf("RASTER_DPI must be between 72 and 600, got %d", c.RasterDPI)
	}

	if c.MaxColumns < 2 {
		return fmt.Errorf("MAX_COLUMNS must be at least 2, got %d", c.MaxColumns)
	}

	if c.DedupeNameThreshold < 1 || c.DedupeNameThreshold > 100 {
		return fmt.Errorf("DEDUPE_NAME_THRESHOLD must be between 1 and 100, got %d", c.DedupeNameThreshold)
	}

	return nil
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault gets environment variable as int or returns default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsFloatOrDefault gets environment variable as float64 or returns default
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}
