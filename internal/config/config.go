package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all settings. Environment variables win over the optional
// YAML config file, which wins over defaults.
type Config struct {
	BaseURL        string
	OutputDir      string
	InboxDir       string
	DBPath         string
	HTTPPort       string
	WebhookURL     string
	WorkerCount    int
	QueueSize      int
	EnableWatcher  bool
	HTTPTimeoutSec int
	LogLevel       string
}

type fileConfig struct {
	BaseURL        string `yaml:"base_url"`
	OutputDir      string `yaml:"output_dir"`
	InboxDir       string `yaml:"inbox_dir"`
	DBPath         string `yaml:"db_path"`
	HTTPPort       string `yaml:"http_port"`
	WebhookURL     string `yaml:"webhook_url"`
	WorkerCount    int    `yaml:"worker_count"`
	QueueSize      int    `yaml:"queue_size"`
	HTTPTimeoutSec int    `yaml:"http_timeout_sec"`
	LogLevel       string `yaml:"log_level"`
}

const defaultConfigFile = "site-analyzer.yaml"

// Load reads configuration from environment, an optional .env file, and an
// optional YAML file named by CONFIG_FILE.
func Load() Config {
	_ = godotenv.Load()
	fc := loadFile(getenv("CONFIG_FILE", defaultConfigFile))

	return Config{
		BaseURL:        getenv("ANALYZER_BASE_URL", fc.BaseURL),
		OutputDir:      getenv("OUTPUT_DIR", fallback(fc.OutputDir, ".")),
		InboxDir:       getenv("INBOX_DIR", fallback(fc.InboxDir, "./inbox")),
		DBPath:         getenv("DB_PATH", fallback(fc.DBPath, "./site-analyzer.db")),
		HTTPPort:       getenv("PORT", fallback(fc.HTTPPort, "8080")),
		WebhookURL:     getenv("WEBHOOK_URL", fc.WebhookURL),
		WorkerCount:    clampInt(getenvInt("WORKER_COUNT", fallbackInt(fc.WorkerCount, 4)), 1, 64),
		QueueSize:      clampInt(getenvInt("QUEUE_SIZE", fallbackInt(fc.QueueSize, 128)), 8, 1024),
		EnableWatcher:  getenvBool("ENABLE_WATCHER", true),
		HTTPTimeoutSec: getenvInt("HTTP_TIMEOUT_SEC", fc.HTTPTimeoutSec),
		LogLevel:       getenv("LOG_LEVEL", fallback(fc.LogLevel, "info")),
	}
}

// Validate checks the settings every network-facing command needs.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("ANALYZER_BASE_URL is required")
	}
	return nil
}

// HTTPTimeout returns the client timeout; zero means unbounded.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

func loadFile(path string) fileConfig {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc
	}
	_ = yaml.Unmarshal(data, &fc)
	return fc
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func fallbackInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Now returns a truncated UTC timestamp for deterministic records.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
