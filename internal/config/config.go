// Package config provides runtime configuration values for the service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds configuration knobs for the HTTP server, the document store
// and the order event workers.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	LogLevel        string

	StoreBackend  string
	DatabaseURL   string
	DatabaseName  string
	PebbleDir     string
	SQLitePath    string
	StoreTimeout  time.Duration
	SeedOnStartup bool

	EventsSink   string
	KafkaBrokers string
	KafkaTopic   string

	InitialWorkerCount      int
	WorkerMin               int
	WorkerMax               int
	ScaleInterval           time.Duration
	ScaleUpBacklogPerWorker int
	ScaleDownIdleTicks      int
	QueueHighWatermark      int
}

// FileConfig is the optional YAML configuration file. Every field is a
// default that the matching environment variable overrides.
type FileConfig struct {
	HTTPAddr        string `yaml:"http_addr"`
	ShutdownTimeout int    `yaml:"shutdown_timeout_sec"`
	LogLevel        string `yaml:"log_level"`

	Store struct {
		Backend       string `yaml:"backend"`
		DatabaseURL   string `yaml:"database_url"`
		DatabaseName  string `yaml:"database_name"`
		PebbleDir     string `yaml:"pebble_dir"`
		SQLitePath    string `yaml:"sqlite_path"`
		TimeoutMs     int    `yaml:"timeout_ms"`
		SeedOnStartup *bool  `yaml:"seed_on_startup"`
	} `yaml:"store"`

	Events struct {
		Sink         string `yaml:"sink"`
		KafkaBrokers string `yaml:"kafka_brokers"`
		KafkaTopic   string `yaml:"kafka_topic"`
	} `yaml:"events"`

	Workers struct {
		Count                   int `yaml:"count"`
		Min                     int `yaml:"min"`
		Max                     int `yaml:"max"`
		ScaleIntervalMs         int `yaml:"scale_interval_ms"`
		ScaleUpBacklogPerWorker int `yaml:"scale_up_backlog_per_worker"`
		ScaleDownIdleTicks      int `yaml:"scale_down_idle_ticks"`
		QueueHighWatermark      int `yaml:"queue_high_watermark"`
	} `yaml:"workers"`
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

func or(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// defaultAddr honours the conventional PORT variable.
func defaultAddr() string {
	if p := os.Getenv("PORT"); p != "" {
		return ":" + p
	}
	return ":8000"
}

// LoadFile reads and parses a YAML configuration file.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 - path comes from the operator
	if err != nil {
		return fc, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("failed to parse config file: %w", err)
	}
	return fc, nil
}

// Load collects configuration from the optional CONFIG_FILE and the
// environment, falling back to built-in defaults.
func Load() (Config, error) {
	var fc FileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		var err error
		if fc, err = LoadFile(path); err != nil {
			return Config{}, err
		}
	}
	seed := false
	if fc.Store.SeedOnStartup != nil {
		seed = *fc.Store.SeedOnStartup
	}
	minWorkers := atoienv("WORKER_MIN", orInt(fc.Workers.Min, 1))
	maxWorkers := atoienv("WORKER_MAX", orInt(fc.Workers.Max, 4))
	initialWorkers := atoienv("WORKER_COUNT", orInt(fc.Workers.Count, minWorkers))
	cfg := Config{
		HTTPAddr:        getenv("HTTP_ADDR", or(fc.HTTPAddr, defaultAddr())),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", orInt(fc.ShutdownTimeout, 15)),
		LogLevel:        strings.ToLower(getenv("LOG_LEVEL", or(fc.LogLevel, "info"))),

		StoreBackend:  strings.ToLower(getenv("STORE_BACKEND", or(fc.Store.Backend, "memory"))),
		DatabaseURL:   getenv("DATABASE_URL", fc.Store.DatabaseURL),
		DatabaseName:  getenv("DATABASE_NAME", or(fc.Store.DatabaseName, "storefront")),
		PebbleDir:     getenv("PEBBLE_DIR", or(fc.Store.PebbleDir, "./data/pebble")),
		SQLitePath:    getenv("SQLITE_PATH", or(fc.Store.SQLitePath, "./data/storefront.db")),
		StoreTimeout:  durenvms("STORE_TIMEOUT_MS", orInt(fc.Store.TimeoutMs, 5000)),
		SeedOnStartup: boolenv("SEED_ON_STARTUP", seed),

		EventsSink:   strings.ToLower(getenv("EVENTS_SINK", or(fc.Events.Sink, "log"))),
		KafkaBrokers: getenv("KAFKA_BROKERS", or(fc.Events.KafkaBrokers, "localhost:9092")),
		KafkaTopic:   getenv("KAFKA_TOPIC", or(fc.Events.KafkaTopic, "storefront.orders")),

		InitialWorkerCount:      initialWorkers,
		WorkerMin:               minWorkers,
		WorkerMax:               maxWorkers,
		ScaleInterval:           durenvms("SCALE_INTERVAL_MS", orInt(fc.Workers.ScaleIntervalMs, 500)),
		ScaleUpBacklogPerWorker: atoienv("SCALE_UP_BACKLOG_PER_WORKER", orInt(fc.Workers.ScaleUpBacklogPerWorker, 100)),
		ScaleDownIdleTicks:      atoienv("SCALE_DOWN_IDLE_TICKS", orInt(fc.Workers.ScaleDownIdleTicks, 6)),
		QueueHighWatermark:      atoienv("QUEUE_HIGH_WATERMARK", orInt(fc.Workers.QueueHighWatermark, 5000)),
	}
	return cfg, nil
}
