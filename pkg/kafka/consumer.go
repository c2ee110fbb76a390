package kafka

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageHandler handles messages from a specific topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// Consumer wraps Kafka readers with a worker pool. One reader per
// registered topic feeds a shared channel drained by the workers.
type Consumer struct {
	cfg      *ConsumerConfig
	readers  map[string]*kafka.Reader
	handlers map[string]MessageHandler
	msgCh    chan *message
	stopCh   chan struct{}
	stopOnce sync.Once
	readerWg sync.WaitGroup
	workerWg sync.WaitGroup
}

type message struct {
	topic string
	data  []byte
}

// NewConsumer creates a new Kafka consumer.
func NewConsumer(opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		GroupID:     "default",
		WorkerCount: 1,
		BufferSize:  64,
		MinBytes:    10e3,
		MaxBytes:    10e6,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	return &Consumer{
		cfg:      cfg,
		readers:  make(map[string]*kafka.Reader),
		handlers: make(map[string]MessageHandler),
		msgCh:    make(chan *message, cfg.BufferSize),
		stopCh:   make(chan struct{}),
	}, nil
}

// RegisterHandler registers a message handler for its topic.
func (c *Consumer) RegisterHandler(handler MessageHandler) {
	topic := handler.Topic()
	if _, ok := c.handlers[topic]; ok {
		log.Printf("warn: handler already registered for topic %s", topic)
		return
	}
	c.handlers[topic] = handler
}

// Start starts readers and workers. Returns immediately.
func (c *Consumer) Start() error {
	if len(c.handlers) == 0 {
		return fmt.Errorf("no handlers registered")
	}

	for topic := range c.handlers {
		c.readers[topic] = kafka.NewReader(kafka.ReaderConfig{
			Brokers:  c.cfg.Brokers,
			Topic:    topic,
			GroupID:  c.cfg.GroupID,
			MinBytes: c.cfg.MinBytes,
			MaxBytes: c.cfg.MaxBytes,
		})
	}

	for i := 0; i < c.cfg.WorkerCount; i++ {
		c.workerWg.Add(1)
		go c.worker()
	}
	for topic, reader := range c.readers {
		c.readerWg.Add(1)
		go c.readLoop(topic, reader)
	}

	log.Printf("kafka consumer: started topics=%d workers=%d", len(c.readers), c.cfg.WorkerCount)
	return nil
}

// Stop stops the consumer gracefully.
func (c *Consumer) Stop(ctx context.Context) error {
	var stopErr error
	c.stopOnce.Do(func() {
		close(c.stopCh)
		// readers must exit before the message channel closes, or a
		// late send would panic
		c.readerWg.Wait()
		close(c.msgCh)

		done := make(chan struct{})
		go func() {
			c.workerWg.Wait()
			close(done)
		}()
		select {
		case <-ctx.Done():
			stopErr = fmt.Errorf("timeout waiting for consumer stop: %w", ctx.Err())
		case <-done:
		}

		for topic, reader := range c.readers {
			if err := reader.Close(); err != nil {
				log.Printf("error closing reader for topic %s: %v", topic, err)
			}
		}
	})
	return stopErr
}

func (c *Consumer) readLoop(topic string, reader *kafka.Reader) {
	defer c.readerWg.Done()
	for {
		select {
		case <-c.stopCh:
			return
		default:
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			msg, err := reader.ReadMessage(ctx)
			cancel()
			if err != nil {
				if !errors.Is(err, context.DeadlineExceeded) {
					log.Printf("error reading message from topic %s: %v", topic, err)
				}
				continue
			}
			select {
			case c.msgCh <- &message{topic: topic, data: msg.Value}:
			case <-c.stopCh:
				return
			}
		}
	}
}

func (c *Consumer) worker() {
	defer c.workerWg.Done()
	for msg := range c.msgCh {
		handler, ok := c.handlers[msg.topic]
		if !ok {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("panic in message handler for topic %s: %v", msg.topic, r)
				}
			}()
			if err := handler.Handle(context.Background(), msg.data); err != nil {
				log.Printf("handler error topic=%s: %v", msg.topic, err)
			}
		}()
	}
}
