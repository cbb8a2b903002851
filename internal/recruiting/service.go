// Package recruiting is the application layer over the store, the extraction
// queue, the matching engine and the email dispatcher.
package recruiting

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/email"
	"github.com/jonathan/talent-matcher/internal/lifecycle"
	"github.com/jonathan/talent-matcher/internal/matching"
	"github.com/jonathan/talent-matcher/internal/queue"
	"github.com/jonathan/talent-matcher/internal/store"
	"github.com/jonathan/talent-matcher/internal/types"
	"go.uber.org/zap"
)

// ErrDeliveryFailed wraps dispatcher failures. The candidate status is left
// unchanged when it is returned.
var ErrDeliveryFailed = errors.New("email delivery failed")

// Service implements the recruiting operations.
type Service struct {
	store      store.Store
	queue      queue.Queue
	engine     *matching.Engine
	machine    *lifecycle.Machine
	dispatcher email.Dispatcher
	log        *zap.Logger
}

// NewService creates a Service.
func NewService(st store.Store, q queue.Queue, engine *matching.Engine, machine *lifecycle.Machine, dispatcher email.Dispatcher, log *zap.Logger) *Service {
	return &Service{
		store:      st,
		queue:      q,
		engine:     engine,
		machine:    machine,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// enqueue schedules extraction for a record that is already persisted. A
// failed enqueue leaves the record pending; the worker re-enqueues pending
// records on start and the sweeper fails those that never complete.
func (s *Service) enqueue(ctx context.Context, kind string, id uuid.UUID) {
	if err := s.queue.Enqueue(ctx, queue.NewTask(kind, id)); err != nil {
		s.log.Error("failed to enqueue extraction task",
			zap.String("kind", kind),
			zap.String("id", id.String()),
			zap.Error(err))
	}
}

// CreateJob stores a pending job description and schedules its summary.
func (s *Service) CreateJob(ctx context.Context, req *types.CreateJobRequest) (*types.JobDescription, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	job, err := s.store.CreateJob(ctx, &types.JobDescription{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		Description: req.Description,
		Status:      types.StatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	s.enqueue(ctx, types.KindJob, job.ID)
	s.log.Info("job created", zap.String("job_id", job.ID.String()))
	return job, nil
}

// GetJob returns one job description.
func (s *Service) GetJob(ctx context.Context, id uuid.UUID) (*types.JobDescription, error) {
	return s.store.GetJob(ctx, id)
}

// ListJobs returns job descriptions, newest first.
func (s *Service) ListJobs(ctx context.Context, filter store.JobFilter) ([]*types.JobDescription, error) {
	return s.store.ListJobs(ctx, filter)
}

// UpdateJob edits the job's title, company or location.
func (s *Service) UpdateJob(ctx context.Context, id uuid.UUID, expected int64, req *types.UpdateJobRequest) (*types.JobDescription, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.store.UpdateJob(ctx, id, expected, func(j *types.JobDescription) error {
		req.Apply(j)
		return nil
	})
}

// DeleteJob removes a job description.
func (s *Service) DeleteJob(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteJob(ctx, id)
}

// CreateCandidate stores a new candidate.
func (s *Service) CreateCandidate(ctx context.Context, req *types.CreateCandidateRequest) (*types.Candidate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c, err := s.store.CreateCandidate(ctx, &types.Candidate{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Status: types.CandidateNew,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}
	return c, nil
}

// GetCandidate returns one candidate.
func (s *Service) GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	return s.store.GetCandidate(ctx, id)
}

// ListCandidates returns candidates, newest first.
func (s *Service) ListCandidates(ctx context.Context, filter store.CandidateFilter) ([]*types.Candidate, error) {
	return s.store.ListCandidates(ctx, filter)
}

// UpdateCandidate edits identity fields and, when requested, applies an
// operator status change through the lifecycle rules.
func (s *Service) UpdateCandidate(ctx context.Context, id uuid.UUID, expected int64, req *types.UpdateCandidateRequest) (*types.Candidate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var ev *lifecycle.Event
	if req.Status != nil {
		e, err := lifecycle.ForStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		ev = &e
	}
	return s.store.UpdateCandidate(ctx, id, expected, func(c *types.Candidate) error {
		req.Apply(c)
		if ev == nil {
			return nil
		}
		status, err := s.machine.Apply(c.Status, *ev)
		if err != nil {
			return err
		}
		c.Status = status
		return nil
	})
}

// DeleteCandidate removes a candidate and its resumes.
func (s *Service) DeleteCandidate(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteCandidate(ctx, id)
}

// Shortlist moves the candidate to shortlisted.
func (s *Service) Shortlist(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	return s.transition(ctx, id, lifecycle.Shortlist())
}

// Reject moves the candidate to rejected.
func (s *Service) Reject(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	return s.transition(ctx, id, lifecycle.Reject())
}

// Reset moves the candidate back to new.
func (s *Service) Reset(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	return s.transition(ctx, id, lifecycle.Reset())
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, ev lifecycle.Event) (*types.Candidate, error) {
	var from types.CandidateStatus
	updated, err := s.store.UpdateCandidate(ctx, id, store.AnyVersion, func(c *types.Candidate) error {
		from = c.Status
		status, err := s.machine.Apply(c.Status, ev)
		if err != nil {
			return err
		}
		c.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("candidate status changed",
		zap.String("candidate_id", id.String()),
		zap.String("event", string(ev.Kind)),
		zap.String("from", string(from)),
		zap.String("to", string(updated.Status)))
	return updated, nil
}

// CreateResume stores a pending resume for an existing candidate, makes it
// the candidate's current resume and schedules parsing.
func (s *Service) CreateResume(ctx context.Context, req *types.CreateResumeRequest) (*types.Resume, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	candidateID, err := uuid.Parse(req.CandidateID)
	if err != nil {
		return nil, &types.ValidationError{Field: "candidateId", Message: "must be a valid UUID"}
	}
	resume, err := s.store.CreateResume(ctx, &types.Resume{
		CandidateID: candidateID,
		FileName:    req.FileName,
		FileURL:     req.FileURL,
		Text:        req.Text,
		Status:      types.StatusPending,
	})
	if err != nil {
		if types.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create resume: %w", err)
	}
	s.enqueue(ctx, types.KindResume, resume.ID)
	s.log.Info("resume created",
		zap.String("resume_id", resume.ID.String()),
		zap.String("candidate_id", candidateID.String()))
	return resume, nil
}

// GetResume returns one resume.
func (s *Service) GetResume(ctx context.Context, id uuid.UUID) (*types.Resume, error) {
	return s.store.GetResume(ctx, id)
}

// ListResumes returns resumes, newest first.
func (s *Service) ListResumes(ctx context.Context, filter store.ResumeFilter) ([]*types.Resume, error) {
	return s.store.ListResumes(ctx, filter)
}

// DeleteResume removes a resume and clears the owner's reference to it.
func (s *Service) DeleteResume(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteResume(ctx, id)
}

// Match scores one candidate against one job.
func (s *Service) Match(ctx context.Context, candidateID, jobID uuid.UUID) (*matching.Result, error) {
	return s.engine.Match(ctx, candidateID, jobID)
}

// MatchAll ranks every candidate against one job.
func (s *Service) MatchAll(ctx context.Context, jobID uuid.UUID) (*matching.Ranking, error) {
	return s.engine.MatchAll(ctx, jobID)
}
