// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the server settings.
type Config struct {
	Addr      string
	LogLevel  logrus.Level
	LogFormat string // "text" or "json"

	SessionTTL    time.Duration
	EndedTTL      time.Duration
	SweepInterval time.Duration

	RedisAddr     string // empty disables publishing
	RedisPassword string
	RedisDB       int

	JWTSecret string // empty disables token checks
}

// Load reads envFile (if it exists) into the environment and then builds the
// config from WIZARD_* variables.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv builds the config from the environment alone.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("WIZARD_ADDR", ":8080"),
		LogFormat:     getEnv("WIZARD_LOG_FORMAT", "text"),
		RedisAddr:     os.Getenv("WIZARD_REDIS_ADDR"),
		RedisPassword: os.Getenv("WIZARD_REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("WIZARD_JWT_SECRET"),
	}

	var err error
	if cfg.LogLevel, err = logrus.ParseLevel(getEnv("WIZARD_LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("WIZARD_LOG_LEVEL: %w", err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("WIZARD_LOG_FORMAT: unknown format %q", cfg.LogFormat)
	}
	if cfg.SessionTTL, err = durationEnv("WIZARD_SESSION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.EndedTTL, err = durationEnv("WIZARD_ENDED_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = durationEnv("WIZARD_SWEEP_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if v := os.Getenv("WIZARD_REDIS_DB"); v != "" {
		if cfg.RedisDB, err = strconv.Atoi(v); err != nil || cfg.RedisDB < 0 {
			return nil, fmt.Errorf("WIZARD_REDIS_DB: invalid database %q", v)
		}
	}
	return cfg, nil
}

// NewLogger builds the process logger.
func (c *Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(c.LogLevel)
	if c.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, d)
	}
	return d, nil
}
