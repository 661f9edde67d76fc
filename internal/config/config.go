// Package config provides configuration loading and validation for the API server.
// It uses koanf to merge environment variables with optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Database
	DatabaseURL string `koanf:"database_url"`

	// Redis snapshot cache. Optional: when unset, discovery reads the
	// database directly on every request.
	RedisURL           string `koanf:"redis_url"`
	SnapshotTTLSeconds int    `koanf:"snapshot_ttl_seconds"`

	// Ranking calibration file for the recommended ordering. Optional.
	CalibrationPath string `koanf:"calibration_path"`

	// Tracing
	TracingEnabled  bool    `koanf:"tracing_enabled"`
	OTLPEndpoint    string  `koanf:"otlp_endpoint"`
	OTLPProtocol    string  `koanf:"otlp_protocol"`
	TraceSampleRate float64 `koanf:"trace_sample_rate"`
}

// Configuration validation errors.
var (
	ErrMissingDatabaseURL   = errors.New("DATABASE_URL is required")
	ErrInvalidPort          = errors.New("PORT must be a valid integer")
	ErrInvalidOTLPProtocol  = errors.New("OTLP_PROTOCOL must be \"grpc\" or \"http\"")
	ErrInvalidSampleRate    = errors.New("TRACE_SAMPLE_RATE must be between 0.0 and 1.0")
	ErrMissingOTLPEndpoint  = errors.New("OTLP_ENDPOINT is required when tracing is enabled")
	ErrInvalidSnapshotTTL   = errors.New("SNAPSHOT_TTL_SECONDS must be a valid integer")
)

// Default values for non-secret configuration.
const (
	DefaultPort               = 8080
	DefaultEnv                = "development"
	DefaultSnapshotTTLSeconds = 30
	DefaultOTLPProtocol       = "grpc"
	DefaultTraceSampleRate    = 1.0
)

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	port, portErr := getEnvIntOrDefault("PORT", k.Int("port"), DefaultPort, ErrInvalidPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	snapshotTTL, ttlErr := getEnvIntOrDefault("SNAPSHOT_TTL_SECONDS", k.Int("snapshot_ttl_seconds"), DefaultSnapshotTTLSeconds, ErrInvalidSnapshotTTL)
	if ttlErr != nil {
		loadErrs = append(loadErrs, ttlErr)
	}

	sampleRate, rateErr := getEnvFloatOrDefault("TRACE_SAMPLE_RATE", k.Float64("trace_sample_rate"), DefaultTraceSampleRate)
	if rateErr != nil {
		loadErrs = append(loadErrs, rateErr)
	}

	tracingEnabled := k.Bool("tracing_enabled")
	if val := os.Getenv("TRACING_ENABLED"); val != "" {
		// Env var takes precedence over file config
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			tracingEnabled = true
		case "false", "0", "no", "off":
			tracingEnabled = false
		}
	}

	cfg := &Config{
		Port:               port,
		Env:                getEnvOrDefault("ENV", k.String("env"), DefaultEnv),
		DatabaseURL:        getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		RedisURL:           getEnvOrKoanf("REDIS_URL", k, "redis_url"),
		SnapshotTTLSeconds: snapshotTTL,
		CalibrationPath:    getEnvOrKoanf("CALIBRATION_PATH", k, "calibration_path"),
		TracingEnabled:     tracingEnabled,
		OTLPEndpoint:       getEnvOrKoanf("OTLP_ENDPOINT", k, "otlp_endpoint"),
		OTLPProtocol:       getEnvOrDefault("OTLP_PROTOCOL", k.String("otlp_protocol"), DefaultOTLPProtocol),
		TraceSampleRate:    sampleRate,
	}

	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefault returns the environment variable as int if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as an integer.
// Note: a zero value in a YAML file falls back to the default.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int, parseErr error) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, parseErr)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvFloatOrDefault returns the environment variable as float64 if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as a float.
func getEnvFloatOrDefault(envKey string, koanfVal float64, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid float: %w", envKey, err)
		}
		return f, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// Validate checks that all required configuration values are present.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, ErrMissingDatabaseURL)
	}
	if c.OTLPProtocol != "grpc" && c.OTLPProtocol != "http" {
		errs = append(errs, ErrInvalidOTLPProtocol)
	}
	if c.TraceSampleRate < 0.0 || c.TraceSampleRate > 1.0 {
		errs = append(errs, ErrInvalidSampleRate)
	}
	if c.TracingEnabled && c.OTLPEndpoint == "" {
		errs = append(errs, ErrMissingOTLPEndpoint)
	}

	return errs
}

// LogSummary returns a summary of the configuration suitable for logging.
// Connection URLs have their credentials masked to prevent accidental exposure.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                 fmt.Sprintf("%d", c.Port),
		"env":                  c.Env,
		"database_url":         maskURL(c.DatabaseURL),
		"redis_url":            maskURL(c.RedisURL),
		"snapshot_ttl_seconds": fmt.Sprintf("%d", c.SnapshotTTLSeconds),
		"calibration_path":     orNotSet(c.CalibrationPath),
		"tracing_enabled":      fmt.Sprintf("%t", c.TracingEnabled),
		"otlp_endpoint":        orNotSet(c.OTLPEndpoint),
		"otlp_protocol":        c.OTLPProtocol,
		"trace_sample_rate":    fmt.Sprintf("%g", c.TraceSampleRate),
	}
}

func orNotSet(s string) string {
	if s == "" {
		return "<not set>"
	}
	return s
}

// maskURL masks the password in a connection URL with a user:password@host
// authority. URLs without credentials pass through unchanged.
func maskURL(s string) string {
	if s == "" {
		return "<not set>"
	}

	schemeEnd := strings.Index(s, "://")
	if schemeEnd == -1 {
		return s
	}

	rest := s[schemeEnd+3:]
	atIndex := strings.Index(rest, "@")
	if atIndex == -1 {
		return s // No credentials in URL
	}

	colonIndex := strings.Index(rest[:atIndex], ":")
	if colonIndex == -1 {
		return s // No password (only username)
	}

	scheme := s[:schemeEnd+3]
	user := rest[:colonIndex]
	hostAndPath := rest[atIndex:]

	return scheme + user + ":****" + hostAndPath
}
