package kafka_config

import (
	"errors"
	"fmt"
	"medibook/pkg/logger"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// ErrNotConfigured is returned by Load when no broker is set.
var ErrNotConfigured = errors.New("kafka is not configured: " + EnvKafkaBrokers + " is empty")

type Config struct {
	Brokers []string

	PublishMaxAttempts  int
	PublishBatchTimeout time.Duration
	PublishRequiredAcks int    // -1 = all, 0 = none, 1 = leader only
	PublishCompression  string // "none", "gzip", "snappy", "lz4", "zstd"

	ConsumeFromOldest     bool
	ConsumeMaxWait        time.Duration
	ConsumeCommitInterval time.Duration
	ConsumeMaxRetries     int
	ConsumeRetryBackoff   time.Duration

	// LogMessages turns on per-message logging middleware.
	LogMessages bool
}

// Load reads the Kafka settings from the environment.
func Load() (*Config, error) {
	brokers := parseBrokers(getEnvStr(EnvKafkaBrokers, DefaultKafkaBrokers))
	if len(brokers) == 0 {
		return nil, ErrNotConfigured
	}

	cfg := &Config{
		Brokers: brokers,

		PublishMaxAttempts:  getEnvInt(EnvPublishMaxAttempts, DefaultPublishMaxAttempts),
		PublishBatchTimeout: getEnvDuration(EnvPublishBatchTimeout, DefaultPublishBatchTimeout),
		PublishRequiredAcks: getEnvInt(EnvPublishRequiredAcks, DefaultPublishRequiredAcks),
		PublishCompression:  getEnvStr(EnvPublishCompression, DefaultPublishCompression),

		ConsumeFromOldest:     getEnvBool(EnvConsumeFromOldest, DefaultConsumeFromOldest),
		ConsumeMaxWait:        getEnvDuration(EnvConsumeMaxWait, DefaultConsumeMaxWait),
		ConsumeCommitInterval: getEnvDuration(EnvConsumeCommitInterval, DefaultConsumeCommitInterval),
		ConsumeMaxRetries:     getEnvInt(EnvConsumeMaxRetries, DefaultConsumeMaxRetries),
		ConsumeRetryBackoff:   getEnvDuration(EnvConsumeRetryBackoff, DefaultConsumeRetryBackoff),

		LogMessages: getEnvBool(EnvLogMessages, DefaultLogMessages),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// StartOffset is where a consumer group with no committed offset begins.
func (cfg *Config) StartOffset() int64 {
	if cfg.ConsumeFromOldest {
		return kafka.FirstOffset
	}
	return kafka.LastOffset
}

func (cfg *Config) Validate() error {
	var errors []string

	if len(cfg.Brokers) == 0 {
		errors = append(errors, "At least one Kafka broker is required")
	}
	if cfg.PublishMaxAttempts <= 0 {
		errors = append(errors, fmt.Sprintf("PublishMaxAttempts must be positive, got: %d", cfg.PublishMaxAttempts))
	}
	if cfg.PublishBatchTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("PublishBatchTimeout must be positive, got: %s", cfg.PublishBatchTimeout))
	}

	validAcks := map[int]bool{-1: true, 0: true, 1: true}
	if !validAcks[cfg.PublishRequiredAcks] {
		errors = append(errors, fmt.Sprintf("PublishRequiredAcks must be -1, 0, or 1, got: %d", cfg.PublishRequiredAcks))
	}
	validCompressions := map[string]bool{
		"none": true, "gzip": true, "snappy": true, "lz4": true, "zstd": true,
	}
	if !validCompressions[cfg.PublishCompression] {
		errors = append(errors, fmt.Sprintf("PublishCompression must be one of [none, gzip, snappy, lz4, zstd], got: %s", cfg.PublishCompression))
	}

	if cfg.ConsumeMaxWait <= 0 {
		errors = append(errors, fmt.Sprintf("ConsumeMaxWait must be positive, got: %s", cfg.ConsumeMaxWait))
	}
	if cfg.ConsumeCommitInterval < 0 {
		errors = append(errors, fmt.Sprintf("ConsumeCommitInterval cannot be negative, got: %s", cfg.ConsumeCommitInterval))
	}
	if cfg.ConsumeMaxRetries < 0 {
		errors = append(errors, fmt.Sprintf("ConsumeMaxRetries cannot be negative, got: %d", cfg.ConsumeMaxRetries))
	}
	if cfg.ConsumeRetryBackoff <= 0 {
		errors = append(errors, fmt.Sprintf("ConsumeRetryBackoff must be positive, got: %s", cfg.ConsumeRetryBackoff))
	}

	if len(errors) > 0 {
		errMsg := "Kafka configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}
	return nil
}

func (cfg *Config) LogConfiguration(log *logger.Logger) {
	log.Info("Kafka configuration loaded successfully",
		"brokers", cfg.Brokers,
		"publish_max_attempts", cfg.PublishMaxAttempts,
		"publish_required_acks", cfg.PublishRequiredAcks,
		"publish_compression", cfg.PublishCompression,
		"consume_from_oldest", cfg.ConsumeFromOldest,
		"consume_commit_interval", cfg.ConsumeCommitInterval,
		"consume_max_retries", cfg.ConsumeMaxRetries,
		"log_messages", cfg.LogMessages,
	)
}

func getEnvStr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
