// Package store defines the document store holding jobs, candidates, resumes
// and email templates, plus an in-memory implementation.
//
// Every write is a read-modify-write: Update* loads the current record, hands a
// copy to the caller's function and persists the result only if that function
// returns nil. Records returned by a Store are copies the caller may mutate.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/types"
)

// AnyVersion disables the optimistic version check on Update*.
const AnyVersion int64 = 0

// JobFilter narrows ListJobs. Zero fields match everything.
type JobFilter struct {
	Status        types.ProcessingStatus
	CreatedBefore time.Time
}

// Matches reports whether job passes the filter.
func (f JobFilter) Matches(job *types.JobDescription) bool {
	if f.Status != "" && job.Status != f.Status {
		return false
	}
	if !f.CreatedBefore.IsZero() && !job.CreatedAt.Before(f.CreatedBefore) {
		return false
	}
	return true
}

// CandidateFilter narrows ListCandidates.
type CandidateFilter struct {
	Status types.CandidateStatus
}

// Matches reports whether c passes the filter.
func (f CandidateFilter) Matches(c *types.Candidate) bool {
	return f.Status == "" || c.Status == f.Status
}

// ResumeFilter narrows ListResumes.
type ResumeFilter struct {
	CandidateID   uuid.UUID
	Status        types.ProcessingStatus
	CreatedBefore time.Time
}

// Matches reports whether r passes the filter.
func (f ResumeFilter) Matches(r *types.Resume) bool {
	if f.CandidateID != uuid.Nil && r.CandidateID != f.CandidateID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if !f.CreatedBefore.IsZero() && !r.CreatedAt.Before(f.CreatedBefore) {
		return false
	}
	return true
}

// Store is the single source of truth for pipeline records.
//
// Create* assigns the id (when nil), timestamps and version 1. Update* keeps
// id, owner and createdAt fixed regardless of what fn does, bumps the version
// and sets updatedAt. When expected is not AnyVersion and differs from the
// stored version, Update* returns a *types.ConflictError without calling fn.
// Missing records yield *types.NotFoundError.
type Store interface {
	CreateJob(ctx context.Context, job *types.JobDescription) (*types.JobDescription, error)
	GetJob(ctx context.Context, id uuid.UUID) (*types.JobDescription, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*types.JobDescription, error)
	UpdateJob(ctx context.Context, id uuid.UUID, expected int64, fn func(*types.JobDescription) error) (*types.JobDescription, error)
	DeleteJob(ctx context.Context, id uuid.UUID) error

	CreateCandidate(ctx context.Context, c *types.Candidate) (*types.Candidate, error)
	GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error)
	ListCandidates(ctx context.Context, filter CandidateFilter) ([]*types.Candidate, error)
	UpdateCandidate(ctx context.Context, id uuid.UUID, expected int64, fn func(*types.Candidate) error) (*types.Candidate, error)
	// DeleteCandidate removes the candidate and every resume it owns.
	DeleteCandidate(ctx context.Context, id uuid.UUID) error

	// CreateResume stores the resume and points the owning candidate's
	// resumeId at it in the same transaction. The owner must exist.
	CreateResume(ctx context.Context, r *types.Resume) (*types.Resume, error)
	GetResume(ctx context.Context, id uuid.UUID) (*types.Resume, error)
	ListResumes(ctx context.Context, filter ResumeFilter) ([]*types.Resume, error)
	UpdateResume(ctx context.Context, id uuid.UUID, expected int64, fn func(*types.Resume) error) (*types.Resume, error)
	// DeleteResume removes the resume and clears the owner's resumeId if it
	// still references this resume.
	DeleteResume(ctx context.Context, id uuid.UUID) error

	CreateTemplate(ctx context.Context, t *types.EmailTemplate) (*types.EmailTemplate, error)
	GetTemplate(ctx context.Context, id uuid.UUID) (*types.EmailTemplate, error)
	ListTemplates(ctx context.Context) ([]*types.EmailTemplate, error)
	UpdateTemplate(ctx context.Context, id uuid.UUID, expected int64, fn func(*types.EmailTemplate) error) (*types.EmailTemplate, error)
	DeleteTemplate(ctx context.Context, id uuid.UUID) error

	Ping(ctx context.Context) error
	Close()
}

// CheckVersion returns a ConflictError when expected is set and differs from actual.
func CheckVersion(kind string, id uuid.UUID, expected, actual int64) error {
	if expected != AnyVersion && expected != actual {
		return &types.ConflictError{Kind: kind, ID: id, Expected: expected, Actual: actual}
	}
	return nil
}
