package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by the Consumer.
var (
	ErrConsumerClosed = errors.New("command consumer is closed")
	ErrQueueFull      = errors.New("command queue is full")
)

// ConsumerConfig holds configuration options for the consumer.
type ConsumerConfig struct {
	// WorkerCount determines how many concurrent worker goroutines process
	// envelopes. If zero or negative, defaults to 1.
	WorkerCount int

	// QueueSize bounds the in-memory buffer of pending envelopes.
	QueueSize int
}

// DefaultConsumerConfig returns a ConsumerConfig with reasonable defaults.
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// Consumer pulls serialized envelopes off a bounded in-memory queue and
// delivers each to a handler on a pool of workers. It is the in-process
// stand-in for a message-bus consumer group: delivery is at-least-once from
// the caller's perspective (a rejected Submit is the caller's signal to
// retry), and a handler failure is logged here because this core owns no
// retry policy.
type Consumer struct {
	handler func(ctx context.Context, raw []byte) error
	queue   chan []byte
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewConsumer creates a Consumer delivering envelopes to the given handler.
func NewConsumer(
	handler func(ctx context.Context, raw []byte) error,
	config ConsumerConfig,
	log *slog.Logger,
) *Consumer {
	if log == nil {
		log = slog.Default()
	}
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		log.Warn("invalid worker count specified, using default",
			slog.Int("specified_count", config.WorkerCount),
			slog.Int("default_count", 1))
		workerCount = 1
	}
	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultConsumerConfig().QueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Consumer{
		handler: handler,
		queue:   make(chan []byte, queueSize),
		ctx:     ctx,
		cancel:  cancel,
		logger:  log.With(slog.String("component", "command_consumer")),
	}

	for i := 0; i < workerCount; i++ {
		c.wg.Add(1)
		go c.worker(i)
	}
	return c
}

// Submit enqueues a serialized envelope for processing.
// Returns ErrQueueFull if the buffer is at capacity and ErrConsumerClosed
// after Stop.
func (c *Consumer) Submit(raw []byte) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrConsumerClosed
	}
	c.mu.Unlock()

	select {
	case c.queue <- raw:
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(c.queue))
	}
}

// Stop closes the queue and waits for in-flight envelopes to finish.
func (c *Consumer) Stop() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.queue)
	c.mu.Unlock()

	c.wg.Wait()
	c.cancel()
	c.logger.Info("command consumer stopped")
}

// worker drains the queue until it is closed.
func (c *Consumer) worker(id int) {
	defer c.wg.Done()
	log := c.logger.With(slog.Int("worker_id", id))
	log.Debug("command worker started")

	for raw := range c.queue {
		if err := c.handler(c.ctx, raw); err != nil {
			// The transport owns retries and dead-lettering; here the
			// failure is only recorded.
			log.Error("command handling failed",
				slog.String("error", err.Error()))
		}
	}
	log.Debug("command worker stopped")
}
