package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Pipeline PipelineConfig
}

// DatabaseConfig holds database-related configuration. An empty DSN
// disables result persistence.
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
}

// PipelineConfig holds extraction pipeline configuration, including the
// validation policy constants. The thresholds are tuned values, not
// derived business rules, so they stay overridable.
type PipelineConfig struct {
	Workers   int
	QueueSize int

	PassTolerance     float64
	WarnTolerance     float64
	SuspiciousPrice   float64
	CorruptedPrice    float64
	OCRMergeThreshold float64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Pipeline: PipelineConfig{
			Workers:           getEnvAsInt("PIPELINE_WORKERS", 4),
			QueueSize:         getEnvAsInt("PIPELINE_QUEUE_SIZE", 64),
			PassTolerance:     getEnvAsFloat64("VALIDATION_PASS_TOLERANCE", 0.10),
			WarnTolerance:     getEnvAsFloat64("VALIDATION_WARN_TOLERANCE", 1.00),
			SuspiciousPrice:   getEnvAsFloat64("VALIDATION_SUSPICIOUS_PRICE", 1000),
			CorruptedPrice:    getEnvAsFloat64("VALIDATION_CORRUPTED_PRICE", 10000),
			OCRMergeThreshold: getEnvAsFloat64("OCR_MERGE_THRESHOLD", 1000),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Pipeline.Workers < 1 {
		return NewAppError("CONFIG_ERROR", "PIPELINE_WORKERS must be at least 1", ErrInvalidInput)
	}
	if c.Pipeline.PassTolerance < 0 || c.Pipeline.WarnTolerance < c.Pipeline.PassTolerance {
		return NewAppError("CONFIG_ERROR", "validation tolerances must satisfy 0 <= pass <= warn", ErrInvalidInput)
	}
	if c.Pipeline.CorruptedPrice < c.Pipeline.SuspiciousPrice {
		return NewAppError("CONFIG_ERROR", "VALIDATION_CORRUPTED_PRICE must be >= VALIDATION_SUSPICIOUS_PRICE", ErrInvalidInput)
	}
	return nil
}
