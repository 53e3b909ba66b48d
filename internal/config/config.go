package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Program catalog.
	ProgramCatalogPath string

	// County assessor source.
	AssessorBaseURL string
	AssessorTimeout time.Duration

	// USDA Soil Data Access source.
	SDAURL        string
	SDATimeout    time.Duration
	SoilCacheSize int
	SoilEnabled   bool

	// Screening pipeline.
	Workers          int
	FetchMaxAttempts int
	FallbackEnabled  bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	assessorTimeout, err := parseDuration("ASSESSOR_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	sdaTimeout, err := parseDuration("SDA_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	workers, err := parsePositiveInt("WORKERS", 4)
	if err != nil {
		return nil, err
	}
	fetchAttempts, err := parsePositiveInt("FETCH_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}
	soilCacheSize, err := parsePositiveInt("SOIL_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ProgramCatalogPath: envOrDefault("PROGRAM_CONFIG", "config/programs.yaml"),

		AssessorBaseURL: os.Getenv("ASSESSOR_BASE_URL"),
		AssessorTimeout: assessorTimeout,

		SDAURL:        envOrDefault("SDA_URL", "https://sdmdataaccess.nrcs.usda.gov/Tabular/post.rest"),
		SDATimeout:    sdaTimeout,
		SoilCacheSize: soilCacheSize,
		SoilEnabled:   envOrDefault("SOIL_ENABLED", "true") == "true",

		Workers:          workers,
		FetchMaxAttempts: fetchAttempts,
		FallbackEnabled:  os.Getenv("FALLBACK_ENABLED") == "true",
	}

	if cfg.ProgramCatalogPath == "" {
		return nil, errors.New("PROGRAM_CONFIG is required")
	}
	// No assessor URL means the service can only run against synthetic data,
	// which is only sensible when fallback is explicitly enabled.
	if cfg.AssessorBaseURL == "" && !cfg.FallbackEnabled {
		return nil, errors.New("ASSESSOR_BASE_URL is required unless FALLBACK_ENABLED=true")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
