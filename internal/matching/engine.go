package matching

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/lifecycle"
	"github.com/jonathan/talent-matcher/internal/store"
	"github.com/jonathan/talent-matcher/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds MatchAll fan-out.
const DefaultConcurrency = 8

// Result is the outcome of one match computation.
type Result struct {
	CandidateID  uuid.UUID             `json:"candidateId"`
	JobID        uuid.UUID             `json:"jobId"`
	MatchScore   int                   `json:"matchScore"`
	MatchDetails Details               `json:"matchDetails"`
	Status       types.CandidateStatus `json:"status"`
}

// Skipped names a candidate MatchAll could not score and why.
type Skipped struct {
	CandidateID uuid.UUID `json:"candidateId"`
	Reason      string    `json:"reason"`
}

// Ranking is the outcome of matching every candidate against one job.
type Ranking struct {
	JobID   uuid.UUID `json:"jobId"`
	Results []*Result `json:"results"`
	Skipped []Skipped `json:"skipped"`
}

// Engine computes and persists match scores.
type Engine struct {
	store       store.Store
	machine     *lifecycle.Machine
	log         *zap.Logger
	locks       *keyedMutex
	concurrency int
}

// NewEngine creates an Engine. A non-positive concurrency uses DefaultConcurrency.
func NewEngine(st store.Store, machine *lifecycle.Machine, log *zap.Logger, concurrency int) *Engine {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Engine{
		store:       st,
		machine:     machine,
		log:         log,
		locks:       newKeyedMutex(),
		concurrency: concurrency,
	}
}

// Match scores the candidate's current resume against the job, stores the
// score on the candidate and applies the automated status rule.
//
// A missing candidate or job yields *types.NotFoundError. A candidate without
// a processed resume, or a job that is not processed, yields
// *types.NotReadyError. Nothing is written when an error is returned.
func (e *Engine) Match(ctx context.Context, candidateID, jobID uuid.UUID) (*Result, error) {
	unlock := e.locks.Lock(candidateID)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidate, err := e.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	job, err := e.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if candidate.ResumeID == nil {
		return nil, &types.NotReadyError{Kind: types.KindCandidate, ID: candidateID, Reason: "candidate has no resume"}
	}
	resume, err := e.store.GetResume(ctx, *candidate.ResumeID)
	if err != nil {
		if types.IsNotFound(err) {
			return nil, &types.NotReadyError{Kind: types.KindCandidate, ID: candidateID, Reason: "candidate resume no longer exists"}
		}
		return nil, err
	}
	if !resume.Ready() {
		return nil, &types.NotReadyError{Kind: types.KindResume, ID: resume.ID, Reason: "status is " + string(resume.Status)}
	}
	if !job.Ready() {
		return nil, &types.NotReadyError{Kind: types.KindJob, ID: jobID, Reason: "status is " + string(job.Status)}
	}

	score := ComputeScore(job.Summary, resume.Parsed)

	updated, err := e.store.UpdateCandidate(ctx, candidateID, store.AnyVersion, func(c *types.Candidate) error {
		// The resume may have been replaced or deleted since it was read.
		if c.ResumeID == nil || *c.ResumeID != resume.ID {
			return &types.NotReadyError{Kind: types.KindCandidate, ID: candidateID, Reason: "candidate resume changed during match"}
		}
		status, err := e.machine.Apply(c.Status, lifecycle.Matched(score.Overall))
		if err != nil {
			return err
		}
		overall := score.Overall
		job := jobID
		c.MatchScore = &overall
		c.ScoreProvisional = false
		c.LastMatchedJobID = &job
		c.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("candidate matched",
		zap.String("candidate_id", candidateID.String()),
		zap.String("job_id", jobID.String()),
		zap.Int("score", score.Overall),
		zap.Int("skills", score.Details.Skills),
		zap.Int("experience", score.Details.Experience),
		zap.Int("responsibilities", score.Details.Responsibilities),
		zap.String("status", string(updated.Status)),
	)

	return &Result{
		CandidateID:  candidateID,
		JobID:        jobID,
		MatchScore:   score.Overall,
		MatchDetails: score.Details,
		Status:       updated.Status,
	}, nil
}

// MatchAll matches every candidate against the job. Candidates that are not
// ready, or that disappear while the ranking runs, are reported as skipped.
// Results are ordered by score, highest first.
func (e *Engine) MatchAll(ctx context.Context, jobID uuid.UUID) (*Ranking, error) {
	job, err := e.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.Ready() {
		return nil, &types.NotReadyError{Kind: types.KindJob, ID: jobID, Reason: "status is " + string(job.Status)}
	}

	candidates, err := e.store.ListCandidates(ctx, store.CandidateFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	ranking := &Ranking{JobID: jobID, Results: []*Result{}, Skipped: []Skipped{}}
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for _, c := range candidates {
		candidateID := c.ID
		g.Go(func() error {
			res, err := e.Match(gCtx, candidateID, jobID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ranking.Results = append(ranking.Results, res)
			case types.IsNotReady(err), types.IsNotFound(err):
				ranking.Skipped = append(ranking.Skipped, Skipped{CandidateID: candidateID, Reason: err.Error()})
			default:
				return fmt.Errorf("failed to match candidate %s: %w", candidateID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(ranking.Results, func(i, j int) bool {
		a, b := ranking.Results[i], ranking.Results[j]
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		return a.CandidateID.String() < b.CandidateID.String()
	})
	sort.Slice(ranking.Skipped, func(i, j int) bool {
		return ranking.Skipped[i].CandidateID.String() < ranking.Skipped[j].CandidateID.String()
	})
	return ranking, nil
}
