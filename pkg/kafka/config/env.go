package kafka_config

const (
	EnvKafkaBrokers = "KAFKA_BROKERS"

	EnvPublishMaxAttempts  = "KAFKA_PUBLISH_MAX_ATTEMPTS"
	EnvPublishBatchTimeout = "KAFKA_PUBLISH_BATCH_TIMEOUT"
	EnvPublishRequiredAcks = "KAFKA_PUBLISH_REQUIRED_ACKS"
	EnvPublishCompression  = "KAFKA_PUBLISH_COMPRESSION"

	EnvConsumeFromOldest     = "KAFKA_CONSUME_FROM_OLDEST"
	EnvConsumeMaxWait        = "KAFKA_CONSUME_MAX_WAIT"
	EnvConsumeCommitInterval = "KAFKA_CONSUME_COMMIT_INTERVAL"
	EnvConsumeMaxRetries     = "KAFKA_CONSUME_MAX_RETRIES"
	EnvConsumeRetryBackoff   = "KAFKA_CONSUME_RETRY_BACKOFF"

	EnvLogMessages = "KAFKA_LOG_MESSAGES"
)
