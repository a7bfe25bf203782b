// Package config loads hldict settings from a .env file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/japaniel/hldict/pkg/dictionary"
	"github.com/japaniel/hldict/pkg/report"
	"github.com/joho/godotenv"
)

// Defaults for settings not present in the environment.
const (
	DefaultDictionaryURL  = dictionary.DefaultBaseURL
	DefaultRequestTimeout = dictionary.DefaultTimeout
	DefaultWorkers        = dictionary.DefaultWorkers
	MaxWorkers            = dictionary.MaxWorkers
	DefaultOutput         = report.DefaultOutput
)

// Config holds all configuration for the application.
type Config struct {
	DictionaryURL  string
	RequestTimeout time.Duration
	Workers        int
	Output         string
	VocabDB        string
	MetricsFile    string
	LogLevel       string
	LogFormat      string
}

// ValidationError reports a setting that could not be used.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the current directory, or in one of up to five parent
// directories, is loaded first. Variables already set in the environment
// take precedence over .env values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		DictionaryURL: getEnv("HLDICT_DICTIONARY_URL", DefaultDictionaryURL),
		Output:        getEnv("HLDICT_OUTPUT", DefaultOutput),
		VocabDB:       getEnv("HLDICT_VOCAB_DB", ""),
		MetricsFile:   getEnv("HLDICT_METRICS_FILE", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
	}

	timeout, err := time.ParseDuration(getEnv("HLDICT_REQUEST_TIMEOUT", DefaultRequestTimeout.String()))
	if err != nil {
		return nil, &ValidationError{Field: "HLDICT_REQUEST_TIMEOUT", Message: err.Error()}
	}
	cfg.RequestTimeout = timeout

	workers, err := strconv.Atoi(getEnv("HLDICT_WORKERS", strconv.Itoa(DefaultWorkers)))
	if err != nil {
		return nil, &ValidationError{Field: "HLDICT_WORKERS", Message: "must be a valid integer"}
	}
	cfg.Workers = workers

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values after flags have been applied.
func (c *Config) Validate() error {
	if c.RequestTimeout <= 0 {
		return &ValidationError{Field: "HLDICT_REQUEST_TIMEOUT", Message: "must be greater than 0"}
	}
	if c.Workers < 1 || c.Workers > MaxWorkers {
		return &ValidationError{Field: "HLDICT_WORKERS", Message: fmt.Sprintf("must be between 1 and %d", MaxWorkers)}
	}
	if !strings.HasPrefix(c.DictionaryURL, "http://") && !strings.HasPrefix(c.DictionaryURL, "https://") {
		return &ValidationError{Field: "HLDICT_DICTIONARY_URL", Message: "must be an http(s) URL"}
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return &ValidationError{Field: "LOG_FORMAT", Message: "must be text or json"}
	}
	return nil
}

func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 6; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
