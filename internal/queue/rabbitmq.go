package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RabbitMQConfig configures the RabbitMQ queue.
type RabbitMQConfig struct {
	URL         string
	Queue       string
	Prefetch    int
	MaxAttempts int
}

// RabbitMQ publishes tasks as persistent JSON messages on a durable queue.
// Each consumer gets its own channel with manual acknowledgement.
type RabbitMQ struct {
	conn        *amqp.Connection
	pubMu       sync.Mutex
	pub         *amqp.Channel
	queue       string
	prefetch    int
	maxAttempts int
	log         *zap.Logger
}

// DialRabbitMQ connects and declares the task queue.
func DialRabbitMQ(cfg RabbitMQConfig, log *zap.Logger) (*RabbitMQ, error) {
	if cfg.Queue == "" {
		cfg.Queue = "extraction_tasks"
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		cfg.Queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}

	log.Info("connected to rabbitmq", zap.String("queue", cfg.Queue))

	return &RabbitMQ{
		conn:        conn,
		pub:         ch,
		queue:       cfg.Queue,
		prefetch:    cfg.Prefetch,
		maxAttempts: cfg.MaxAttempts,
		log:         log,
	}, nil
}

// Enqueue publishes a task.
func (q *RabbitMQ) Enqueue(ctx context.Context, task Task) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q.pubMu.Lock()
	defer q.pubMu.Unlock()
	if q.conn.IsClosed() {
		return ErrClosed
	}

	err = q.pub.PublishWithContext(ctx,
		"",      // exchange
		q.queue, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    task.Key(),
			Timestamp:    task.EnqueuedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish task %s: %w", task.Key(), err)
	}
	return nil
}

// Consume delivers tasks to h until ctx is cancelled or the connection closes.
func (q *RabbitMQ) Consume(ctx context.Context, h Handler) error {
	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open consumer channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(q.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	msgs, err := ch.Consume(
		q.queue,
		"",
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				q.log.Info("rabbitmq delivery channel closed")
				return nil
			}
			q.deliver(ctx, msg, h)
		}
	}
}

func (q *RabbitMQ) deliver(ctx context.Context, msg amqp.Delivery, h Handler) {
	var task Task
	if err := json.Unmarshal(msg.Body, &task); err != nil {
		q.log.Error("discarding malformed task", zap.Error(err))
		_ = msg.Nack(false, false)
		return
	}

	err := h(ctx, task)
	if err == nil {
		_ = msg.Ack(false)
		return
	}

	if !shouldRetry(task, q.maxAttempts) {
		q.log.Error("dropping task after final attempt",
			zap.String("task", task.Key()), zap.Int("attempt", task.Attempt), zap.Error(err))
		_ = msg.Nack(false, false)
		return
	}

	// Republish with the attempt counter bumped, then ack the original, so
	// the retry budget survives redelivery.
	task.Attempt++
	if pubErr := q.Enqueue(ctx, task); pubErr != nil {
		q.log.Warn("failed to republish task, requeueing original",
			zap.String("task", task.Key()), zap.Error(pubErr))
		_ = msg.Nack(false, true)
		return
	}
	q.log.Warn("retrying task", zap.String("task", task.Key()), zap.Int("attempt", task.Attempt), zap.Error(err))
	_ = msg.Ack(false)
}

// Close closes the publishing channel and the connection.
func (q *RabbitMQ) Close() error {
	q.pubMu.Lock()
	defer q.pubMu.Unlock()
	if q.conn.IsClosed() {
		return nil
	}
	_ = q.pub.Close()
	return q.conn.Close()
}

var _ Queue = (*RabbitMQ)(nil)
