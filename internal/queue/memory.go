package queue

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Memory is an in-process queue backed by a buffered channel.
type Memory struct {
	tasks       chan Task
	done        chan struct{}
	closeOnce   sync.Once
	maxAttempts int
	log         *zap.Logger
}

// NewMemory creates a queue holding up to size undelivered tasks.
func NewMemory(size, maxAttempts int, log *zap.Logger) *Memory {
	if size <= 0 {
		size = 256
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Memory{
		tasks:       make(chan Task, size),
		done:        make(chan struct{}),
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// Enqueue adds a task, blocking while the buffer is full.
func (q *Memory) Enqueue(ctx context.Context, task Task) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}

	select {
	case q.tasks <- task:
		return nil
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume runs h on delivered tasks until ctx is cancelled or Close is called.
func (q *Memory) Consume(ctx context.Context, h Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-q.done:
			return nil
		case task := <-q.tasks:
			if err := h(ctx, task); err != nil {
				q.retry(task, err)
			}
		}
	}
}

func (q *Memory) retry(task Task, err error) {
	if !shouldRetry(task, q.maxAttempts) {
		q.log.Error("dropping task after final attempt",
			zap.String("task", task.Key()), zap.Int("attempt", task.Attempt), zap.Error(err))
		return
	}
	task.Attempt++
	q.log.Warn("retrying task", zap.String("task", task.Key()), zap.Int("attempt", task.Attempt), zap.Error(err))
	// Requeue off the consumer goroutine so a full buffer cannot deadlock it.
	go func() {
		if err := q.Enqueue(context.Background(), task); err != nil {
			q.log.Warn("failed to requeue task", zap.String("task", task.Key()), zap.Error(err))
		}
	}()
}

// Len returns the number of undelivered tasks.
func (q *Memory) Len() int {
	return len(q.tasks)
}

// Close stops consumers and rejects further tasks.
func (q *Memory) Close() error {
	q.closeOnce.Do(func() { close(q.done) })
	return nil
}

var _ Queue = (*Memory)(nil)
