// Package queue carries extraction tasks from the service to the workers.
//
// A Queue delivers every task at least once. Handlers must be idempotent;
// duplicate in-flight deliveries are filtered with a Locker.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxAttempts bounds redelivery of a task whose handler keeps failing.
const DefaultMaxAttempts = 3

// ErrClosed is returned by Enqueue after Close.
var ErrClosed = errors.New("queue closed")

// Task asks a worker to process one record.
type Task struct {
	Kind       string    `json:"kind"`
	ID         uuid.UUID `json:"id"`
	Attempt    int       `json:"attempt"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// NewTask creates a first-attempt task for the record.
func NewTask(kind string, id uuid.UUID) Task {
	return Task{Kind: kind, ID: id, EnqueuedAt: time.Now().UTC()}
}

// Key identifies the record the task targets. Redeliveries share a key.
func (t Task) Key() string {
	return t.Kind + ":" + t.ID.String()
}

// Handler processes a delivered task. A non-nil error requests a retry.
type Handler func(ctx context.Context, task Task) error

// Queue is a task transport.
type Queue interface {
	// Enqueue publishes a task.
	Enqueue(ctx context.Context, task Task) error
	// Consume delivers tasks to h until ctx is cancelled or the queue is
	// closed. It may be called from several goroutines to run several consumers.
	Consume(ctx context.Context, h Handler) error
	Close() error
}

// shouldRetry reports whether a failed task gets another delivery.
func shouldRetry(task Task, maxAttempts int) bool {
	return task.Attempt+1 < maxAttempts
}
