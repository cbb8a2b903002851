// Package worker consumes extraction tasks and moves jobs and resumes out of
// the pending state.
package worker

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jonathan/talent-matcher/internal/extraction"
	"github.com/jonathan/talent-matcher/internal/queue"
	"github.com/jonathan/talent-matcher/internal/store"
	"github.com/jonathan/talent-matcher/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Provisional scores fall in [ProvisionalScoreMin, ProvisionalScoreMin+ProvisionalScoreSpan).
const (
	ProvisionalScoreMin  = 70
	ProvisionalScoreSpan = 30
)

// TimeoutReason is recorded on records the sweeper fails.
const TimeoutReason = "extraction timed out"

// errSettled aborts an update whose record already left pending.
var errSettled = errors.New("record already settled")

// Config controls worker timing and parallelism.
type Config struct {
	Delay         time.Duration // wait before completing each task
	Timeout       time.Duration // pending age after which the sweeper fails a record
	SweepInterval time.Duration
	LockTTL       time.Duration
	Concurrency   int
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Minute
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = c.Timeout / 2
	}
	if c.LockTTL <= 0 {
		c.LockTTL = c.Delay + time.Minute
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	return c
}

// Processor handles extraction tasks.
type Processor struct {
	store     store.Store
	queue     queue.Queue
	locker    queue.Locker
	extractor extraction.Extractor
	log       *zap.Logger
	cfg       Config

	now              func() time.Time
	provisionalScore func() int
}

// NewProcessor creates a Processor.
func NewProcessor(st store.Store, q queue.Queue, locker queue.Locker, ex extraction.Extractor, log *zap.Logger, cfg Config) *Processor {
	return &Processor{
		store:     st,
		queue:     q,
		locker:    locker,
		extractor: ex,
		log:       log,
		cfg:       cfg.withDefaults(),
		now:       func() time.Time { return time.Now().UTC() },
		provisionalScore: func() int {
			return ProvisionalScoreMin + rand.IntN(ProvisionalScoreSpan)
		},
	}
}

// Run consumes tasks with the configured number of consumers, re-enqueues
// records left pending by a previous process and sweeps stale records until
// ctx is cancelled.
func (p *Processor) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < p.cfg.Concurrency; i++ {
		g.Go(func() error {
			return p.queue.Consume(gCtx, p.Handle)
		})
	}
	g.Go(func() error {
		return p.sweepLoop(gCtx)
	})
	g.Go(func() error {
		n, err := p.Recover(gCtx)
		if err != nil && gCtx.Err() == nil {
			p.log.Error("failed to recover pending records", zap.Error(err))
		}
		if n > 0 {
			p.log.Info("re-enqueued pending records", zap.Int("count", n))
		}
		return nil
	})

	p.log.Info("worker started",
		zap.Int("concurrency", p.cfg.Concurrency),
		zap.Duration("delay", p.cfg.Delay),
		zap.Duration("timeout", p.cfg.Timeout))
	return g.Wait()
}

// Handle processes one task. It returns an error only for transient failures
// worth a retry; missing records, settled records and duplicate deliveries
// are acknowledged silently.
func (p *Processor) Handle(ctx context.Context, task queue.Task) error {
	log := p.log.With(zap.String("task", task.Key()), zap.Int("attempt", task.Attempt))

	token, ok, err := p.locker.TryLock(ctx, task.Key(), p.cfg.LockTTL)
	if err != nil {
		return err
	}
	if !ok {
		log.Debug("task already in flight, dropping duplicate")
		return nil
	}
	defer func() {
		if err := p.locker.Unlock(context.WithoutCancel(ctx), task.Key(), token); err != nil {
			log.Warn("failed to release task lock", zap.Error(err))
		}
	}()

	switch task.Kind {
	case types.KindJob:
		err = p.processJob(ctx, task, log)
	case types.KindResume:
		err = p.processResume(ctx, task, log)
	default:
		log.Error("unknown task kind")
		return nil
	}

	switch {
	case err == nil, errors.Is(err, errSettled):
		return nil
	case types.IsNotFound(err):
		log.Info("record deleted before processing")
		return nil
	default:
		return err
	}
}

func (p *Processor) processJob(ctx context.Context, task queue.Task, log *zap.Logger) error {
	job, err := p.store.GetJob(ctx, task.ID)
	if err != nil {
		return err
	}
	if job.Status != types.StatusPending {
		return errSettled
	}
	if err := sleep(ctx, p.cfg.Delay); err != nil {
		return err
	}

	summary, exErr := p.extractor.SummarizeJob(ctx, job)
	if exErr != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	updated, err := p.store.UpdateJob(ctx, task.ID, store.AnyVersion, func(j *types.JobDescription) error {
		if j.Status != types.StatusPending {
			return errSettled
		}
		if exErr != nil {
			j.MarkFailed(exErr.Error())
			return nil
		}
		j.MarkProcessed(summary)
		return nil
	})
	if err != nil {
		return err
	}

	if updated.Status == types.StatusFailed {
		log.Warn("job extraction failed", zap.String("reason", updated.FailureReason))
	} else {
		log.Info("job processed", zap.Strings("skills", updated.Summary.Skills))
	}
	return nil
}

func (p *Processor) processResume(ctx context.Context, task queue.Task, log *zap.Logger) error {
	resume, err := p.store.GetResume(ctx, task.ID)
	if err != nil {
		return err
	}
	if resume.Status == types.StatusProcessed && task.Attempt > 0 {
		// A retry after the score write failed only repeats the score step.
		return p.assignProvisionalScore(ctx, resume, true, log)
	}
	if resume.Status != types.StatusPending {
		return errSettled
	}
	if err := sleep(ctx, p.cfg.Delay); err != nil {
		return err
	}

	parsed, exErr := p.extractor.ParseResume(ctx, resume)
	if exErr != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	updated, err := p.store.UpdateResume(ctx, task.ID, store.AnyVersion, func(r *types.Resume) error {
		if r.Status != types.StatusPending {
			return errSettled
		}
		if exErr != nil {
			r.MarkFailed(exErr.Error())
			return nil
		}
		r.MarkProcessed(parsed)
		return nil
	})
	if err != nil {
		return err
	}

	if updated.Status == types.StatusFailed {
		log.Warn("resume parsing failed", zap.String("reason", updated.FailureReason))
		return nil
	}
	log.Info("resume processed", zap.Strings("skills", updated.Parsed.Skills))

	return p.assignProvisionalScore(ctx, updated, false, log)
}

// assignProvisionalScore gives the owner a placeholder score until a real match
// runs. A score written by the matching engine is never replaced, and with
// onlyUnscored any existing score is kept.
func (p *Processor) assignProvisionalScore(ctx context.Context, resume *types.Resume, onlyUnscored bool, log *zap.Logger) error {
	score := p.provisionalScore()
	_, err := p.store.UpdateCandidate(ctx, resume.CandidateID, store.AnyVersion, func(c *types.Candidate) error {
		if c.HasEngineScore() || c.ResumeID == nil || *c.ResumeID != resume.ID {
			return errSettled
		}
		if onlyUnscored && c.MatchScore != nil {
			return errSettled
		}
		c.MatchScore = &score
		c.ScoreProvisional = true
		return nil
	})
	switch {
	case err == nil:
		log.Debug("assigned provisional score", zap.Int("score", score))
		return nil
	case errors.Is(err, errSettled), types.IsNotFound(err):
		return nil
	default:
		return fmt.Errorf("failed to assign provisional score: %w", err)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
