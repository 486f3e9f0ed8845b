package kafka_config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func TestLoad_NoBrokers(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " , ")

	if _, err := Load(); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "kafka-1:9092, kafka-2:9092,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[1] != "kafka-2:9092" {
		t.Errorf("unexpected brokers %v", cfg.Brokers)
	}
	if cfg.StartOffset() != kafka.FirstOffset {
		t.Errorf("new consumer groups should start from the oldest event")
	}
	if cfg.ConsumeCommitInterval != 0 {
		t.Errorf("expected synchronous commits, got %s", cfg.ConsumeCommitInterval)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "localhost:9092")
	t.Setenv(EnvConsumeFromOldest, "false")
	t.Setenv(EnvConsumeRetryBackoff, "2s")
	t.Setenv(EnvLogMessages, "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StartOffset() != kafka.LastOffset {
		t.Errorf("expected newest offset")
	}
	if cfg.ConsumeRetryBackoff != 2*time.Second {
		t.Errorf("unexpected backoff %s", cfg.ConsumeRetryBackoff)
	}
	if cfg.LogMessages {
		t.Errorf("message logging should be off")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Brokers:             []string{"localhost:9092"},
			PublishMaxAttempts:  DefaultPublishMaxAttempts,
			PublishBatchTimeout: DefaultPublishBatchTimeout,
			PublishRequiredAcks: DefaultPublishRequiredAcks,
			PublishCompression:  DefaultPublishCompression,
			ConsumeMaxWait:      DefaultConsumeMaxWait,
			ConsumeMaxRetries:   DefaultConsumeMaxRetries,
			ConsumeRetryBackoff: DefaultConsumeRetryBackoff,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unknown compression", mutate: func(c *Config) { c.PublishCompression = "brotli" }, wantErr: "PublishCompression"},
		{name: "bad acks", mutate: func(c *Config) { c.PublishRequiredAcks = 2 }, wantErr: "PublishRequiredAcks"},
		{name: "negative retries", mutate: func(c *Config) { c.ConsumeMaxRetries = -1 }, wantErr: "ConsumeMaxRetries"},
		{name: "negative commit interval", mutate: func(c *Config) { c.ConsumeCommitInterval = -time.Second }, wantErr: "ConsumeCommitInterval"},
		{name: "zero backoff", mutate: func(c *Config) { c.ConsumeRetryBackoff = 0 }, wantErr: "ConsumeRetryBackoff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
