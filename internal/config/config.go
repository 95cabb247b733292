// Package config loads runtime configuration from flags and
// environment variables. Flags take precedence over environment
// variables.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration for both binaries. The
// locator reads the HTTP and positioning fields; the ingestor reads
// the Kafka and Firehose fields.
type Config struct {
	// HTTP API
	Addr   string
	DBPath string

	// Positioning
	AlgorithmTimeout time.Duration
	MaxConcurrent    int

	// Mock mode seeds the AP database with a synthetic deployment
	// around the given coordinates.
	MockMode bool
	MockLat  float64
	MockLon  float64

	// Kafka source
	Brokers []string
	GroupID string
	Topics  []string

	// Firehose sink
	StreamName  string
	SinkTimeout time.Duration

	// Batching
	MaxRecordsPerBatch int
	MaxBatchBytes      int
	MaxBatchLatency    time.Duration

	Debug bool
}

// Load parses command line flags and environment variables.
func Load() *Config {
	cfg := &Config{}

	// Defaults and environment variables
	cfg.Addr = getEnv("WLP_ADDR", ":8080")
	cfg.DBPath = getEnv("WLP_DB", getDefaultDBPath())
	algoTimeoutMs := getEnvInt("WLP_ALGO_TIMEOUT_MS", 5000)
	cfg.MaxConcurrent = getEnvInt("WLP_MAX_CONCURRENT", 3)
	cfg.MockMode = getEnvBool("WLP_MOCK", false)
	cfg.MockLat = getEnvFloat("WLP_MOCK_LAT", 40.4168)
	cfg.MockLon = getEnvFloat("WLP_MOCK_LNG", -3.7038)

	brokerStr := getEnv("WLP_BROKERS", "localhost:9092")
	cfg.GroupID = getEnv("WLP_GROUP_ID", "scan-ingestor")
	topicStr := getEnv("WLP_TOPICS", "wifi-scans")
	cfg.StreamName = getEnv("WLP_STREAM", "wifi-scan-delivery")
	sinkTimeoutMs := getEnvInt("WLP_SINK_TIMEOUT_MS", 10000)

	cfg.MaxRecordsPerBatch = getEnvInt("WLP_BATCH_MAX_RECORDS", 500)
	cfg.MaxBatchBytes = getEnvInt("WLP_BATCH_MAX_BYTES", 4*1024*1024)
	batchLatencyMs := getEnvInt("WLP_BATCH_MAX_LATENCY_MS", 1500)

	// Command line flags (override env)
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the access point SQLite database")
	flag.IntVar(&algoTimeoutMs, "algo-timeout", algoTimeoutMs, "Per-algorithm timeout in milliseconds")
	flag.IntVar(&cfg.MaxConcurrent, "max-concurrent", cfg.MaxConcurrent, "Max concurrently running algorithms per request")
	flag.BoolVar(&cfg.MockMode, "mock", cfg.MockMode, "Seed the AP database with synthetic data")
	flag.Float64Var(&cfg.MockLat, "mock-lat", cfg.MockLat, "Centre latitude for synthetic data")
	flag.Float64Var(&cfg.MockLon, "mock-lng", cfg.MockLon, "Centre longitude for synthetic data")
	flag.StringVar(&brokerStr, "brokers", brokerStr, "Kafka brokers (comma separated)")
	flag.StringVar(&cfg.GroupID, "group", cfg.GroupID, "Kafka consumer group ID")
	flag.StringVar(&topicStr, "topics", topicStr, "Kafka topics to consume (comma separated)")
	flag.StringVar(&cfg.StreamName, "stream", cfg.StreamName, "Firehose delivery stream name")
	flag.IntVar(&sinkTimeoutMs, "sink-timeout", sinkTimeoutMs, "Per-call sink timeout in milliseconds")
	flag.IntVar(&cfg.MaxRecordsPerBatch, "batch-records", cfg.MaxRecordsPerBatch, "Max records per delivery batch")
	flag.IntVar(&cfg.MaxBatchBytes, "batch-bytes", cfg.MaxBatchBytes, "Max bytes per delivery batch")
	flag.IntVar(&batchLatencyMs, "batch-latency", batchLatencyMs, "Max batch age before flush in milliseconds")
	flag.BoolVar(&cfg.Debug, "debug", getEnvBool("WLP_DEBUG", false), "Enable verbose debug logging")

	flag.Parse()

	cfg.AlgorithmTimeout = time.Duration(algoTimeoutMs) * time.Millisecond
	cfg.SinkTimeout = time.Duration(sinkTimeoutMs) * time.Millisecond
	cfg.MaxBatchLatency = time.Duration(batchLatencyMs) * time.Millisecond
	cfg.Brokers = splitList(brokerStr)
	cfg.Topics = splitList(topicStr)

	return cfg
}

// Validate fails fast on configuration that would only surface as a
// runtime error much later.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.AlgorithmTimeout <= 0 {
		return fmt.Errorf("algorithm timeout must be positive")
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("max concurrent must be at least 1")
	}
	if c.MaxRecordsPerBatch < 1 {
		return fmt.Errorf("batch record cap must be at least 1")
	}
	if c.MaxBatchBytes < 1024 {
		return fmt.Errorf("batch byte cap must be at least 1KiB")
	}
	if c.MaxBatchLatency <= 0 {
		return fmt.Errorf("batch latency must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getDefaultDBPath returns the default database path in the user's
// home directory, creating the directory if needed.
func getDefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: Could not get user home directory, using current dir: %v", err)
		return "wifipos.db"
	}

	dir := filepath.Join(home, ".wifipos")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Warning: Could not create .wifipos directory, using current dir: %v", err)
		return "wifipos.db"
	}
	return filepath.Join(dir, "wifipos.db")
}
