package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/types"
)

// Memory is an in-process Store. One mutex guards the whole arena so that
// multi-record writes (resume create/delete, candidate delete) are atomic.
type Memory struct {
	mu         sync.RWMutex
	jobs       map[uuid.UUID]*types.JobDescription
	candidates map[uuid.UUID]*types.Candidate
	resumes    map[uuid.UUID]*types.Resume
	templates  map[uuid.UUID]*types.EmailTemplate
	now        func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		jobs:       make(map[uuid.UUID]*types.JobDescription),
		candidates: make(map[uuid.UUID]*types.Candidate),
		resumes:    make(map[uuid.UUID]*types.Resume),
		templates:  make(map[uuid.UUID]*types.EmailTemplate),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source. Intended for tests.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Ping always succeeds.
func (m *Memory) Ping(ctx context.Context) error { return ctx.Err() }

// Close is a no-op.
func (m *Memory) Close() {}

// -----------------------------------------------------------------------------
// Jobs
// -----------------------------------------------------------------------------

// CreateJob stores a new job.
func (m *Memory) CreateJob(ctx context.Context, job *types.JobDescription) (*types.JobDescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := job.Clone()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = m.now()
	rec.UpdatedAt = rec.CreatedAt
	rec.Version = 1
	m.jobs[rec.ID] = rec
	return rec.Clone(), nil
}

// GetJob returns the job with id.
func (m *Memory) GetJob(ctx context.Context, id uuid.UUID) (*types.JobDescription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.jobs[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: types.KindJob, ID: id}
	}
	return rec.Clone(), nil
}

// ListJobs returns matching jobs, newest first.
func (m *Memory) ListJobs(ctx context.Context, filter JobFilter) ([]*types.JobDescription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*types.JobDescription, 0, len(m.jobs))
	for _, rec := range m.jobs {
		if filter.Matches(rec) {
			out = append(out, rec.Clone())
		}
	}
	newestFirst(out, func(j *types.JobDescription) (time.Time, uuid.UUID) { return j.CreatedAt, j.ID })
	return out, nil
}

// UpdateJob applies fn to the stored job.
func (m *Memory) UpdateJob(ctx context.Context, id uuid.UUID, expected int64, fn func(*types.JobDescription) error) (*types.JobDescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.jobs[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: types.KindJob, ID: id}
	}
	if err := CheckVersion(types.KindJob, id, expected, cur.Version); err != nil {
		return nil, err
	}
	next := cur.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.ID = cur.ID
	next.CreatedAt = cur.CreatedAt
	next.Version = cur.Version + 1
	next.UpdatedAt = m.now()
	m.jobs[id] = next
	return next.Clone(), nil
}

// DeleteJob removes the job.
func (m *Memory) DeleteJob(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[id]; !ok {
		return &types.NotFoundError{Kind: types.KindJob, ID: id}
	}
	delete(m.jobs, id)
	return nil
}

// -----------------------------------------------------------------------------
// Candidates
// -----------------------------------------------------------------------------

// CreateCandidate stores a new candidate. An empty status defaults to new.
func (m *Memory) CreateCandidate(ctx context.Context, c *types.Candidate) (*types.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := c.Clone()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Status == "" {
		rec.Status = types.CandidateNew
	}
	rec.CreatedAt = m.now()
	rec.UpdatedAt = rec.CreatedAt
	rec.Version = 1
	m.candidates[rec.ID] = rec
	return rec.Clone(), nil
}

// GetCandidate returns the candidate with id.
func (m *Memory) GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.candidates[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: types.KindCandidate, ID: id}
	}
	return rec.Clone(), nil
}

// ListCandidates returns matching candidates, newest first.
func (m *Memory) ListCandidates(ctx context.Context, filter CandidateFilter) ([]*types.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*types.Candidate, 0, len(m.candidates))
	for _, rec := range m.candidates {
		if filter.Matches(rec) {
			out = append(out, rec.Clone())
		}
	}
	newestFirst(out, func(c *types.Candidate) (time.Time, uuid.UUID) { return c.CreatedAt, c.ID })
	return out, nil
}

// UpdateCandidate applies fn to the stored candidate.
func (m *Memory) UpdateCandidate(ctx context.Context, id uuid.UUID, expected int64, fn func(*types.Candidate) error) (*types.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.candidates[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: types.KindCandidate, ID: id}
	}
	if err := CheckVersion(types.KindCandidate, id, expected, cur.Version); err != nil {
		return nil, err
	}
	next := cur.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	m.commitCandidate(cur, next)
	return next.Clone(), nil
}

func (m *Memory) commitCandidate(cur, next *types.Candidate) {
	next.ID = cur.ID
	next.CreatedAt = cur.CreatedAt
	next.Version = cur.Version + 1
	next.UpdatedAt = m.now()
	m.candidates[cur.ID] = next
}

// DeleteCandidate removes the candidate and its resumes.
func (m *Memory) DeleteCandidate(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.candidates[id]; !ok {
		return &types.NotFoundError{Kind: types.KindCandidate, ID: id}
	}
	for rid, r := range m.resumes {
		if r.CandidateID == id {
			delete(m.resumes, rid)
		}
	}
	delete(m.candidates, id)
	return nil
}

// -----------------------------------------------------------------------------
// Resumes
// -----------------------------------------------------------------------------

// CreateResume stores a new resume and links it from its owner.
func (m *Memory) CreateResume(ctx context.Context, r *types.Resume) (*types.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	owner, ok := m.candidates[r.CandidateID]
	if !ok {
		return nil, &types.NotFoundError{Kind: types.KindCandidate, ID: r.CandidateID}
	}

	rec := r.Clone()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = m.now()
	rec.UpdatedAt = rec.CreatedAt
	rec.Version = 1
	m.resumes[rec.ID] = rec

	next := owner.Clone()
	resumeID := rec.ID
	next.ResumeID = &resumeID
	m.commitCandidate(owner, next)

	return rec.Clone(), nil
}

// GetResume returns the resume with id.
func (m *Memory) GetResume(ctx context.Context, id uuid.UUID) (*types.Resume, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.resumes[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: types.KindResume, ID: id}
	}
	return rec.Clone(), nil
}

// ListResumes returns matching resumes, newest first.
func (m *Memory) ListResumes(ctx context.Context, filter ResumeFilter) ([]*types.Resume, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*types.Resume, 0, len(m.resumes))
	for _, rec := range m.resumes {
		if filter.Matches(rec) {
			out = append(out, rec.Clone())
		}
	}
	newestFirst(out, func(r *types.Resume) (time.Time, uuid.UUID) { return r.CreatedAt, r.ID })
	return out, nil
}

// UpdateResume applies fn to the stored resume. The owner cannot change.
func (m *Memory) UpdateResume(ctx context.Context, id uuid.UUID, expected int64, fn func(*types.Resume) error) (*types.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.resumes[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: types.KindResume, ID: id}
	}
	if err := CheckVersion(types.KindResume, id, expected, cur.Version); err != nil {
		return nil, err
	}
	next := cur.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.ID = cur.ID
	next.CandidateID = cur.CandidateID
	next.CreatedAt = cur.CreatedAt
	next.Version = cur.Version + 1
	next.UpdatedAt = m.now()
	m.resumes[id] = next
	return next.Clone(), nil
}

// DeleteResume removes the resume and clears the owner's back-reference.
func (m *Memory) DeleteResume(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.resumes[id]
	if !ok {
		return &types.NotFoundError{Kind: types.KindResume, ID: id}
	}
	delete(m.resumes, id)

	if owner, ok := m.candidates[rec.CandidateID]; ok && owner.ResumeID != nil && *owner.ResumeID == id {
		next := owner.Clone()
		next.ResumeID = nil
		m.commitCandidate(owner, next)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Email templates
// -----------------------------------------------------------------------------

// CreateTemplate stores a new email template.
func (m *Memory) CreateTemplate(ctx context.Context, t *types.EmailTemplate) (*types.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := t.Clone()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = m.now()
	rec.UpdatedAt = rec.CreatedAt
	rec.Version = 1
	m.templates[rec.ID] = rec
	return rec.Clone(), nil
}

// GetTemplate returns the template with id.
func (m *Memory) GetTemplate(ctx context.Context, id uuid.UUID) (*types.EmailTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.templates[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: types.KindTemplate, ID: id}
	}
	return rec.Clone(), nil
}

// ListTemplates returns all templates, newest first.
func (m *Memory) ListTemplates(ctx context.Context) ([]*types.EmailTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*types.EmailTemplate, 0, len(m.templates))
	for _, rec := range m.templates {
		out = append(out, rec.Clone())
	}
	newestFirst(out, func(t *types.EmailTemplate) (time.Time, uuid.UUID) { return t.CreatedAt, t.ID })
	return out, nil
}

// UpdateTemplate applies fn to the stored template.
func (m *Memory) UpdateTemplate(ctx context.Context, id uuid.UUID, expected int64, fn func(*types.EmailTemplate) error) (*types.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.templates[id]
	if !ok {
		return nil, &types.NotFoundError{Kind: types.KindTemplate, ID: id}
	}
	if err := CheckVersion(types.KindTemplate, id, expected, cur.Version); err != nil {
		return nil, err
	}
	next := cur.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.ID = cur.ID
	next.CreatedAt = cur.CreatedAt
	next.Version = cur.Version + 1
	next.UpdatedAt = m.now()
	m.templates[id] = next
	return next.Clone(), nil
}

// DeleteTemplate removes the template.
func (m *Memory) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.templates[id]; !ok {
		return &types.NotFoundError{Kind: types.KindTemplate, ID: id}
	}
	delete(m.templates, id)
	return nil
}

// newestFirst sorts by creation time descending, breaking ties by id so
// listings are stable.
func newestFirst[T any](items []T, key func(T) (time.Time, uuid.UUID)) {
	sort.Slice(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return idi.String() < idj.String()
	})
}

var _ Store = (*Memory)(nil)
