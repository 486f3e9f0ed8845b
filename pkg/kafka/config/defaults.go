package kafka_config

import "time"

const (
	// No default broker: an unset KAFKA_BROKERS means Kafka is not configured.
	DefaultKafkaBrokers = ""

	// Appointment events are published synchronously from the request path.
	DefaultPublishMaxAttempts  = 3
	DefaultPublishBatchTimeout = 10 * time.Millisecond
	DefaultPublishRequiredAcks = -1
	DefaultPublishCompression  = "snappy"

	// A fresh notifier group starts from the oldest event so bookings made
	// before its first deploy still get their emails.
	DefaultConsumeFromOldest     = true
	DefaultConsumeMaxWait        = 500 * time.Millisecond
	DefaultConsumeCommitInterval = 0 // commit after every message
	DefaultConsumeMaxRetries     = 3
	DefaultConsumeRetryBackoff   = 200 * time.Millisecond

	DefaultLogMessages = true
)
