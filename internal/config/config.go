package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/strefethen/rdp-go/internal/db"
)

// Config holds the store configuration.
type Config struct {
	SQLiteDBPath   string `yaml:"sqlite_db_path"`
	SQLiteDriver   string `yaml:"sqlite_driver"`
	BusyTimeoutMs  int    `yaml:"busy_timeout_ms"`
	ReaderPoolSize int    `yaml:"reader_pool_size"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"` // console or json
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		SQLiteDBPath:   "./data/rdp.db",
		SQLiteDriver:   db.DriverMattn,
		BusyTimeoutMs:  5000,
		ReaderPoolSize: 4,
		LogLevel:       "info",
		LogFormat:      "console",
	}
}

// Load reads configuration: defaults, then a .env file in the working directory,
// then the YAML file named by RDP_CONFIG_FILE, then environment variables.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Defaults()
	if path := os.Getenv("RDP_CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.SQLiteDBPath = envString("SQLITE_DB_PATH", cfg.SQLiteDBPath)
	cfg.SQLiteDriver = envString("SQLITE_DRIVER", cfg.SQLiteDriver)
	cfg.BusyTimeoutMs = envInt("SQLITE_BUSY_TIMEOUT_MS", cfg.BusyTimeoutMs)
	cfg.ReaderPoolSize = envInt("SQLITE_READER_POOL_SIZE", cfg.ReaderPoolSize)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envString("LOG_FORMAT", cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at open time.
func (c Config) Validate() error {
	switch c.SQLiteDriver {
	case db.DriverMattn, db.DriverModernc:
	default:
		return fmt.Errorf("SQLITE_DRIVER must be %q or %q, got %q", db.DriverMattn, db.DriverModernc, c.SQLiteDriver)
	}
	if strings.TrimSpace(c.SQLiteDBPath) == "" {
		return errors.New("SQLITE_DB_PATH is required")
	}
	if c.ReaderPoolSize < 1 {
		return fmt.Errorf("SQLITE_READER_POOL_SIZE must be positive, got %d", c.ReaderPoolSize)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func envString(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
