package main

import (
	"context"
	"fmt"

	"github.com/jonathan/talent-matcher/internal/config"
	"github.com/jonathan/talent-matcher/internal/queue"
	"github.com/jonathan/talent-matcher/internal/store"
	"github.com/jonathan/talent-matcher/internal/store/postgres"
	"go.uber.org/zap"
)

// backends holds the storage, queue and lock implementations selected by config.
type backends struct {
	store   store.Store
	queue   queue.Queue
	locker  queue.Locker
	closers []func()
}

// Close releases the backends in reverse order of opening.
func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackends connects everything the config names. The schema is applied
// when PostgreSQL is used, so a fresh database works without a separate migrate.
func openBackends(ctx context.Context, cfg *config.Config, log *zap.Logger) (*backends, error) {
	b := &backends{}

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	b.store = st
	b.closers = append(b.closers, st.Close)

	q, err := openQueue(cfg, log)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.queue = q
	b.closers = append(b.closers, func() {
		if err := q.Close(); err != nil {
			log.Warn("failed to close queue", zap.Error(err))
		}
	})

	if cfg.RedisAddr == "" {
		b.locker = queue.NewMemoryLocker()
		return b, nil
	}
	client, err := queue.NewRedisClient(ctx, queue.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		b.Close()
		return nil, err
	}
	b.locker = queue.NewRedisLocker(client, "")
	b.closers = append(b.closers, func() { _ = client.Close() })
	log.Info("using redis task locks", zap.String("addr", cfg.RedisAddr))

	return b, nil
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Info("using in-memory store")
		return store.NewMemory(), nil
	}

	db, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("using postgres store")
	return db, nil
}

func openQueue(cfg *config.Config, log *zap.Logger) (queue.Queue, error) {
	switch cfg.QueueBackend {
	case config.QueueRabbitMQ:
		q, err := queue.DialRabbitMQ(queue.RabbitMQConfig{
			URL:         cfg.RabbitMQURL,
			Queue:       cfg.RabbitMQQueue,
			Prefetch:    cfg.RabbitMQPrefetch,
			MaxAttempts: cfg.QueueMaxAttempts,
		}, log)
		if err != nil {
			return nil, err
		}
		log.Info("using rabbitmq queue", zap.String("queue", cfg.RabbitMQQueue))
		return q, nil
	case config.QueueMemory:
		return queue.NewMemory(cfg.QueueSize, cfg.QueueMaxAttempts, log), nil
	default:
		return nil, fmt.Errorf("unknown queue backend %q", cfg.QueueBackend)
	}
}
