package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/talent-matcher/internal/queue"
	"github.com/jonathan/talent-matcher/internal/store"
	"github.com/jonathan/talent-matcher/internal/types"
	"go.uber.org/zap"
)

// Sweep fails every record that has been pending longer than the timeout and
// returns how many it failed.
func (p *Processor) Sweep(ctx context.Context) (int, error) {
	cutoff := p.now().Add(-p.cfg.Timeout)
	failed := 0

	jobs, err := p.store.ListJobs(ctx, store.JobFilter{Status: types.StatusPending, CreatedBefore: cutoff})
	if err != nil {
		return 0, fmt.Errorf("failed to list stale jobs: %w", err)
	}
	for _, job := range jobs {
		_, err := p.store.UpdateJob(ctx, job.ID, store.AnyVersion, func(j *types.JobDescription) error {
			if j.Status != types.StatusPending {
				return errSettled
			}
			j.MarkFailed(TimeoutReason)
			return nil
		})
		if ok, err := sweepResult(err); err != nil {
			return failed, err
		} else if ok {
			failed++
			p.log.Warn("job extraction timed out", zap.String("job_id", job.ID.String()))
		}
	}

	resumes, err := p.store.ListResumes(ctx, store.ResumeFilter{Status: types.StatusPending, CreatedBefore: cutoff})
	if err != nil {
		return failed, fmt.Errorf("failed to list stale resumes: %w", err)
	}
	for _, resume := range resumes {
		_, err := p.store.UpdateResume(ctx, resume.ID, store.AnyVersion, func(r *types.Resume) error {
			if r.Status != types.StatusPending {
				return errSettled
			}
			r.MarkFailed(TimeoutReason)
			return nil
		})
		if ok, err := sweepResult(err); err != nil {
			return failed, err
		} else if ok {
			failed++
			p.log.Warn("resume parsing timed out", zap.String("resume_id", resume.ID.String()))
		}
	}

	return failed, nil
}

// sweepResult reports whether an update failed a record, treating records that
// settled or vanished in the meantime as skipped.
func sweepResult(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errSettled), types.IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// Recover enqueues a task for every pending record. Tasks lost with a previous
// process are picked up again; duplicates are harmless.
func (p *Processor) Recover(ctx context.Context) (int, error) {
	jobs, err := p.store.ListJobs(ctx, store.JobFilter{Status: types.StatusPending})
	if err != nil {
		return 0, fmt.Errorf("failed to list pending jobs: %w", err)
	}
	resumes, err := p.store.ListResumes(ctx, store.ResumeFilter{Status: types.StatusPending})
	if err != nil {
		return 0, fmt.Errorf("failed to list pending resumes: %w", err)
	}

	count := 0
	for _, job := range jobs {
		if err := p.queue.Enqueue(ctx, queue.NewTask(types.KindJob, job.ID)); err != nil {
			return count, fmt.Errorf("failed to enqueue job %s: %w", job.ID, err)
		}
		count++
	}
	for _, resume := range resumes {
		if err := p.queue.Enqueue(ctx, queue.NewTask(types.KindResume, resume.ID)); err != nil {
			return count, fmt.Errorf("failed to enqueue resume %s: %w", resume.ID, err)
		}
		count++
	}
	return count, nil
}

func (p *Processor) sweepLoop(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := p.Sweep(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				p.log.Error("sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				p.log.Info("swept stale records", zap.Int("count", n))
			}
		}
	}
}
