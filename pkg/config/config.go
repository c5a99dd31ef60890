// Package config carries the server's runtime settings: defaults, overridden
// by UNPATCHED_* environment variables, overridden by CLI flags.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the flat set of knobs the server runs with.
type Config struct {
	// Bind and Port form the listen address.
	Bind string
	Port int

	// NoTLS serves plain HTTP. The default is TLS with certificates from
	// CertFolder, self-signed ones generated on first start.
	NoTLS      bool
	CertFolder string

	// DatabasePath is the SQLite file; SecretPath holds the token signing
	// secret.
	DatabasePath string
	SecretPath   string

	// SevenPartCron accepts cron expressions with seconds and year fields
	// verbatim instead of the five-field form.
	SevenPartCron bool

	// InitUser/InitPassword upsert an admin account at startup when both
	// are set.
	InitUser     string
	InitPassword string

	// TickInterval paces the per-session materializer and dispatcher loops.
	TickInterval time.Duration

	LogLevel string
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Bind:         "127.0.0.1",
		Port:         3000,
		CertFolder:   "./certs",
		DatabasePath: "unpatched.sqlite",
		SecretPath:   "unpatched.secret",
		TickInterval: 5 * time.Second,
		LogLevel:     "info",
	}
}

// LoadFromEnv builds the config from defaults plus UNPATCHED_* environment
// variables. An optional .env file is loaded first; a missing one is fine.
func LoadFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file, continuing with existing environment", "error", err)
	}

	cfg := DefaultConfig()
	cfg.Bind = getEnv("UNPATCHED_BIND", cfg.Bind)
	cfg.CertFolder = getEnv("UNPATCHED_CERT_FOLDER", cfg.CertFolder)
	cfg.DatabasePath = getEnv("UNPATCHED_DB_PATH", cfg.DatabasePath)
	cfg.SecretPath = getEnv("UNPATCHED_SECRET_PATH", cfg.SecretPath)
	cfg.InitUser = getEnv("UNPATCHED_INIT_USER", cfg.InitUser)
	cfg.InitPassword = getEnv("UNPATCHED_INIT_PASSWORD", cfg.InitPassword)
	cfg.LogLevel = getEnv("UNPATCHED_LOG_LEVEL", cfg.LogLevel)

	var err error
	if cfg.Port, err = getEnvInt("UNPATCHED_PORT", cfg.Port); err != nil {
		return nil, err
	}
	if cfg.NoTLS, err = getEnvBool("UNPATCHED_NO_TLS", cfg.NoTLS); err != nil {
		return nil, err
	}
	if cfg.SevenPartCron, err = getEnvBool("UNPATCHED_SEVEN_PART_CRON", cfg.SevenPartCron); err != nil {
		return nil, err
	}
	if cfg.TickInterval, err = getEnvDuration("UNPATCHED_TICK_INTERVAL", cfg.TickInterval); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

// SlogLevel maps the configured log level onto slog's scale. Unknown values
// fall back to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return d, nil
}
