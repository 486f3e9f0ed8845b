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

const fetchBackoff = time.Second

type Consumer struct {
	reader     *kafka.Reader
	dlqWriter  *kafka.Writer
	topic      string
	groupID    string
	maxRetries int
	backoff    time.Duration
	handler    MessageHandler
	middleware []ConsumerMiddleware
	log        *logger.Logger
	closed     bool
	mu         sync.RWMutex
	wg         sync.WaitGroup
}

type ConsumerMiddleware func(ctx context.Context, msg Message, next MessageHandler) error

func NewConsumer(cfg *kafka_config.Config, topic, groupID, dlqTopic string, handler MessageHandler, log *logger.Logger) (*Consumer, error) {
	switch {
	case cfg == nil:
		return nil, fmt.Errorf("config cannot be nil")
	case len(cfg.Brokers) == 0:
		return nil, fmt.Errorf("at least one broker is required")
	case topic == "":
		return nil, fmt.Errorf("topic cannot be empty")
	case groupID == "":
		return nil, fmt.Errorf("group ID cannot be empty")
	case handler == nil:
		return nil, fmt.Errorf("message handler cannot be nil")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           cfg.Brokers,
		Topic:             topic,
		GroupID:           groupID,
		MaxWait:           cfg.ConsumeMaxWait,
		CommitInterval:    cfg.ConsumeCommitInterval,
		StartOffset:       cfg.StartOffset(),
		Logger:            silentLogger(),
		ErrorLogger:       errorLogger(log, topic),
	})

	consumer := &Consumer{
		reader:     reader,
		topic:      topic,
		groupID:    groupID,
		maxRetries: cfg.ConsumeMaxRetries,
		backoff:    cfg.ConsumeRetryBackoff,
		handler:    handler,
		log:        log.With("topic", topic, "group_id", groupID),
	}
	if dlqTopic != "" {
		consumer.dlqWriter = newDLQWriter(cfg, dlqTopic, log)
	}
	return consumer, nil
}

func (c *Consumer) Use(middleware ConsumerMiddleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middleware = append(c.middleware, middleware)
}

// Start consumes until ctx is cancelled. Every fetched message is committed
// once it has either succeeded or been dead-lettered.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConsumerClosed
	}
	c.mu.RUnlock()

	c.wg.Add(1)
	defer c.wg.Done()

	handler := c.chain()
	for {
		km, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Error("Failed to fetch message", "error", err)
			if !sleep(ctx, fetchBackoff) {
				return nil
			}
			continue
		}

		msg := fromKafkaMessage(km)
		if err := c.process(ctx, handler, msg); err != nil {
			c.log.Error("Message processing failed",
				"key", msg.Key,
				"event_id", msg.GetEventID(),
				"error", err,
			)
		}

		if err := c.reader.CommitMessages(ctx, km); err != nil && ctx.Err() == nil {
			c.log.Error("Failed to commit offset", "offset", km.Offset, "error", err)
		}
	}
}

func (c *Consumer) chain() MessageHandler {
	c.mu.RLock()
	defer c.mu.RUnlock()

	handler := c.handler
	for i := len(c.middleware) - 1; i >= 0; i-- {
		mw, next := c.middleware[i], handler
		handler = func(ctx context.Context, m Message) error {
			return mw(ctx, m, next)
		}
	}
	return handler
}

// process retries transient failures in place and dead-letters the rest.
func (c *Consumer) process(ctx context.Context, handler MessageHandler, msg Message) error {
	for {
		err := handler(ctx, msg)
		if err == nil {
			return nil
		}

		retries := msg.GetRetryCount()
		if ShouldRetry(err, retries, c.maxRetries) {
			msg.IncrementRetryCount()
			c.log.Warn("Retrying message", "attempt", retries+1, "max_retries", c.maxRetries, "error", err)
			if sleep(ctx, c.backoff*time.Duration(retries+1)) {
				continue
			}
			return err
		}

		if c.dlqWriter != nil {
			if dlqErr := c.sendToDLQ(ctx, msg, err); dlqErr != nil {
				return errors.Join(err, fmt.Errorf("dead-letter: %w", dlqErr))
			}
			c.log.Warn("Message dead-lettered", "key", msg.Key, "retries", retries, "error", err)
		}
		return err
	}
}

func (c *Consumer) sendToDLQ(ctx context.Context, msg Message, cause error) error {
	msg.Headers[HeaderOriginalTopic] = c.topic
	msg.Headers[HeaderDLQError] = cause.Error()
	msg.Headers[HeaderDLQTimestamp] = time.Now().UTC().Format(time.RFC3339)
	msg.Headers[HeaderDLQGroup] = c.groupID
	msg.Timestamp = time.Now().UTC()
	return c.dlqWriter.WriteMessages(ctx, toKafkaMessage(msg))
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()

	var errs []error
	if err := c.reader.Close(); err != nil {
		errs = append(errs, err)
	}
	if c.dlqWriter != nil {
		if err := c.dlqWriter.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Consumer) Stats() kafka.ReaderStats {
	return c.reader.Stats()
}
