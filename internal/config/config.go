// Package config handles application configuration via environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configurable values for the app.
type Config struct {
	Env            string
	ListenAddr     string
	APIBaseURL     string
	HTTPTimeout    time.Duration
	ReconcileDelay time.Duration
	RetryAttempts  int
	RetryBackoff   time.Duration
	FDCBaseURL     string
	FDCAPIKey      string
	FDCPageSize    int
}

// Load reads environment variables and populates a Config struct. A .env file
// is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getEnv("HTTP_TIMEOUT", "5s"))
	if err != nil {
		log.Panicf("Invalid HTTP_TIMEOUT: %v", err)
	}

	reconcile, err := time.ParseDuration(getEnv("RECONCILE_DELAY", "1s"))
	if err != nil {
		log.Panicf("Invalid RECONCILE_DELAY: %v", err)
	}

	attempts, err := strconv.Atoi(getEnv("RETRY_ATTEMPTS", "3"))
	if err != nil {
		log.Panicf("Invalid RETRY_ATTEMPTS: %v", err)
	}

	backoff, err := time.ParseDuration(getEnv("RETRY_BACKOFF", "500ms"))
	if err != nil {
		log.Panicf("Invalid RETRY_BACKOFF: %v", err)
	}

	pageSize, err := strconv.Atoi(getEnv("FDC_PAGE_SIZE", "10"))
	if err != nil {
		log.Panicf("Invalid FDC_PAGE_SIZE: %v", err)
	}

	return &Config{
		Env:            getEnv("ENV", "development"),
		ListenAddr:     getEnv("LISTEN_ADDR", ":8090"),
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:8080/api"),
		HTTPTimeout:    timeout,
		ReconcileDelay: reconcile,
		RetryAttempts:  attempts,
		RetryBackoff:   backoff,
		FDCBaseURL:     getEnv("FDC_BASE_URL", "https://api.nal.usda.gov/fdc/v1"),
		FDCAPIKey:      getEnv("FDC_API_KEY", ""),
		FDCPageSize:    pageSize,
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
