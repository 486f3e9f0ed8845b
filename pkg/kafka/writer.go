package kafka

import (
	"fmt"
	"medibook/pkg/logger"

	kafka_config "medibook/pkg/kafka/config"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
)

func compressionOf(name string) compress.Compression {
	switch name {
	case "gzip":
		return compress.Gzip
	case "snappy":
		return compress.Snappy
	case "lz4":
		return compress.Lz4
	case "zstd":
		return compress.Zstd
	case "none":
		return compress.None
	default:
		return compress.Snappy
	}
}

func requiredAcksOf(acks int) kafka.RequiredAcks {
	switch acks {
	case 0:
		return kafka.RequireNone
	case 1:
		return kafka.RequireOne
	default:
		return kafka.RequireAll
	}
}

// errorLogger routes kafka-go's internal errors into the service logger. Its
// chatty info output is dropped.
func errorLogger(log *logger.Logger, topic string) kafka.Logger {
	return kafka.LoggerFunc(func(msg string, args ...any) {
		log.Error("kafka client error", "topic", topic, "detail", fmt.Sprintf(msg, args...))
	})
}

func silentLogger() kafka.Logger {
	return kafka.LoggerFunc(func(string, ...any) {})
}

func newWriter(cfg *kafka_config.Config, topic string, log *logger.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: requiredAcksOf(cfg.PublishRequiredAcks),
		Compression:  compressionOf(cfg.PublishCompression),
		MaxAttempts:  cfg.PublishMaxAttempts,
		BatchTimeout: cfg.PublishBatchTimeout,
		Logger:       silentLogger(),
		ErrorLogger:  errorLogger(log, topic),
	}
}

// newDLQWriter always waits for every replica; a lost dead letter is gone
// for good.
func newDLQWriter(cfg *kafka_config.Config, topic string, log *logger.Logger) *kafka.Writer {
	w := newWriter(cfg, topic, log)
	w.RequiredAcks = kafka.RequireAll
	w.MaxAttempts = 3
	return w
}

func toKafkaMessage(msg Message) kafka.Message {
	km := kafka.Message{
		Key:   []byte(msg.Key),
		Value: msg.Value,
		Time:  msg.Timestamp,
	}
	for k, v := range msg.Headers {
		km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return km
}

func fromKafkaMessage(km kafka.Message) Message {
	msg := Message{
		Key:       string(km.Key),
		Value:     km.Value,
		Headers:   make(map[string]string, len(km.Headers)),
		Topic:     km.Topic,
		Partition: km.Partition,
		Offset:    km.Offset,
		Timestamp: km.Time,
	}
	for _, h := range km.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}
