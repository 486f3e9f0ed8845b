package kafka

import (
	"context"
	"errors"
	"fmt"
	"medibook/pkg/logger"
	"sync"
	"time"

	kafka_config "medibook/pkg/kafka/config"

	"github.com/segmentio/kafka-go"
)

// Publisher is the producing side as seen by services.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	PublishBatch(ctx context.Context, messages []Message) error
	Close() error
}

type Producer struct {
	writer     *kafka.Writer
	dlqWriter  *kafka.Writer
	topic      string
	middleware []ProducerMiddleware
	log        *logger.Logger
	closed     bool
	mu         sync.RWMutex
}

// ProducerMiddleware wraps a single publish.
type ProducerMiddleware func(ctx context.Context, msg Message, next func(ctx context.Context, msg Message) error) error

func NewProducer(cfg *kafka_config.Config, topic, dlqTopic string, log *logger.Logger) (*Producer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	producer := &Producer{
		writer: newWriter(cfg, topic, log),
		topic:  topic,
		log:    log,
	}
	if dlqTopic != "" {
		producer.dlqWriter = newDLQWriter(cfg, dlqTopic, log)
	}
	return producer, nil
}

func (p *Producer) Use(middleware ProducerMiddleware) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.middleware = append(p.middleware, middleware)
}

func (p *Producer) Publish(ctx context.Context, msg Message) error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	if err := validate(msg); err != nil {
		return err
	}
	msg.Topic = p.topic

	p.mu.RLock()
	chain := p.middleware
	p.mu.RUnlock()

	handler := p.publish
	for i := len(chain) - 1; i >= 0; i-- {
		mw, next := chain[i], handler
		handler = func(ctx context.Context, m Message) error {
			return mw(ctx, m, next)
		}
	}
	return handler(ctx, msg)
}

func (p *Producer) publish(ctx context.Context, msg Message) error {
	err := p.writer.WriteMessages(ctx, toKafkaMessage(msg))
	if err == nil {
		return nil
	}
	if p.dlqWriter != nil {
		if dlqErr := p.sendToDLQ(ctx, msg, err); dlqErr != nil {
			return fmt.Errorf("publish failed and dead-lettering failed: %w", errors.Join(err, dlqErr))
		}
	}
	return err
}

// PublishBatch writes all valid messages in one request. Invalid messages are
// skipped; an all-invalid batch is an error.
func (p *Producer) PublishBatch(ctx context.Context, messages []Message) error {
	if err := p.checkOpen(); err != nil {
		return err
	}

	batch := make([]kafka.Message, 0, len(messages))
	for _, msg := range messages {
		if err := validate(msg); err != nil {
			p.log.Warn("Skipping invalid message in batch", "key", msg.Key, "error", err)
			continue
		}
		batch = append(batch, toKafkaMessage(msg))
	}
	if len(batch) == 0 {
		return ErrInvalidMessage
	}
	return p.writer.WriteMessages(ctx, batch...)
}

func (p *Producer) sendToDLQ(ctx context.Context, msg Message, cause error) error {
	msg.Headers[HeaderOriginalTopic] = p.topic
	msg.Headers[HeaderDLQError] = cause.Error()
	msg.Headers[HeaderDLQTimestamp] = time.Now().UTC().Format(time.RFC3339)
	msg.Timestamp = time.Now().UTC()
	return p.dlqWriter.WriteMessages(ctx, toKafkaMessage(msg))
}

func (p *Producer) checkOpen() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrProducerClosed
	}
	return nil
}

func validate(msg Message) error {
	if msg.Key == "" {
		return ErrEmptyKey
	}
	if len(msg.Value) == 0 {
		return ErrEmptyValue
	}
	return nil
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if err := p.writer.Close(); err != nil {
		errs = append(errs, err)
	}
	if p.dlqWriter != nil {
		if err := p.dlqWriter.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Producer) Stats() kafka.WriterStats {
	return p.writer.Stats()
}
