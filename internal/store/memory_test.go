package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppingClock returns a clock that advances one second per call.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTestMemory() *Memory {
	m := NewMemory()
	m.SetClock(steppingClock())
	return m
}

func seedCandidate(t *testing.T, m *Memory) *types.Candidate {
	t.Helper()
	c, err := m.CreateCandidate(context.Background(), &types.Candidate{
		Name: "John Smith", Email: "john@example.com", Phone: "555-0100",
	})
	require.NoError(t, err)
	return c
}

func TestMemory_CreateJobAssignsIdentity(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()

	job, err := m.CreateJob(ctx, &types.JobDescription{Title: "Dev", Status: types.StatusPending})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.Equal(t, int64(1), job.Version)
	assert.False(t, job.CreatedAt.IsZero())
	assert.Equal(t, job.CreatedAt, job.UpdatedAt)

	got, err := m.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job, got)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()

	job, err := m.CreateJob(ctx, &types.JobDescription{Title: "Dev"})
	require.NoError(t, err)
	job.Title = "mutated"

	got, err := m.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dev", got.Title)
}

func TestMemory_GetMissing(t *testing.T) {
	m := newTestMemory()
	_, err := m.GetJob(context.Background(), uuid.New())
	assert.True(t, types.IsNotFound(err))
	_, err = m.GetCandidate(context.Background(), uuid.New())
	assert.True(t, types.IsNotFound(err))
	_, err = m.GetResume(context.Background(), uuid.New())
	assert.True(t, types.IsNotFound(err))
	_, err = m.GetTemplate(context.Background(), uuid.New())
	assert.True(t, types.IsNotFound(err))
}

func TestMemory_UpdateJob(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()
	job, err := m.CreateJob(ctx, &types.JobDescription{Title: "Dev", Status: types.StatusPending})
	require.NoError(t, err)

	updated, err := m.UpdateJob(ctx, job.ID, AnyVersion, func(j *types.JobDescription) error {
		j.ID = uuid.New()
		j.CreatedAt = time.Time{}
		j.MarkProcessed(&types.JobSummary{Skills: []string{"Go"}})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, job.ID, updated.ID, "id is immutable")
	assert.Equal(t, job.CreatedAt, updated.CreatedAt, "createdAt is immutable")
	assert.Equal(t, int64(2), updated.Version)
	assert.True(t, updated.UpdatedAt.After(job.UpdatedAt))
	assert.True(t, updated.Ready())
}

func TestMemory_UpdateFnErrorLeavesRecord(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()
	job, err := m.CreateJob(ctx, &types.JobDescription{Title: "Dev"})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = m.UpdateJob(ctx, job.ID, AnyVersion, func(j *types.JobDescription) error {
		j.Title = "changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := m.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dev", got.Title)
	assert.Equal(t, int64(1), got.Version)
}

func TestMemory_VersionConflict(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()
	c := seedCandidate(t, m)

	called := false
	_, err := m.UpdateCandidate(ctx, c.ID, 7, func(*types.Candidate) error {
		called = true
		return nil
	})
	assert.True(t, types.IsConflict(err))
	assert.False(t, called)

	_, err = m.UpdateCandidate(ctx, c.ID, c.Version, func(c *types.Candidate) error {
		c.Name = "Jane"
		return nil
	})
	assert.NoError(t, err)
}

func TestMemory_CandidateDefaultsToNew(t *testing.T) {
	m := newTestMemory()
	c := seedCandidate(t, m)
	assert.Equal(t, types.CandidateNew, c.Status)
}

func TestMemory_CreateResumeLinksOwner(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()
	c := seedCandidate(t, m)

	r, err := m.CreateResume(ctx, &types.Resume{CandidateID: c.ID, FileName: "cv.pdf", Status: types.StatusPending})
	require.NoError(t, err)

	owner, err := m.GetCandidate(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, owner.ResumeID)
	assert.Equal(t, r.ID, *owner.ResumeID)
	assert.Equal(t, c.Version+1, owner.Version)
}

func TestMemory_CreateResumeUnknownOwner(t *testing.T) {
	m := newTestMemory()
	_, err := m.CreateResume(context.Background(), &types.Resume{CandidateID: uuid.New(), FileName: "cv.pdf"})
	var nf *types.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, types.KindCandidate, nf.Kind)

	list, err := m.ListResumes(context.Background(), ResumeFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemory_DeleteResumeClearsBackReference(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()
	c := seedCandidate(t, m)

	old, err := m.CreateResume(ctx, &types.Resume{CandidateID: c.ID, FileName: "old.pdf"})
	require.NoError(t, err)
	current, err := m.CreateResume(ctx, &types.Resume{CandidateID: c.ID, FileName: "new.pdf"})
	require.NoError(t, err)

	// Deleting a superseded resume leaves the current reference alone.
	require.NoError(t, m.DeleteResume(ctx, old.ID))
	owner, err := m.GetCandidate(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, owner.ResumeID)
	assert.Equal(t, current.ID, *owner.ResumeID)

	require.NoError(t, m.DeleteResume(ctx, current.ID))
	owner, err = m.GetCandidate(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, owner.ResumeID)

	assert.True(t, types.IsNotFound(m.DeleteResume(ctx, current.ID)))
}

func TestMemory_DeleteCandidateCascades(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()
	c := seedCandidate(t, m)
	other := seedCandidate(t, m)

	_, err := m.CreateResume(ctx, &types.Resume{CandidateID: c.ID, FileName: "a.pdf"})
	require.NoError(t, err)
	kept, err := m.CreateResume(ctx, &types.Resume{CandidateID: other.ID, FileName: "b.pdf"})
	require.NoError(t, err)

	require.NoError(t, m.DeleteCandidate(ctx, c.ID))

	list, err := m.ListResumes(ctx, ResumeFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, kept.ID, list[0].ID)
}

func TestMemory_ListFiltersAndOrder(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()

	first, err := m.CreateJob(ctx, &types.JobDescription{Title: "first", Status: types.StatusPending})
	require.NoError(t, err)
	second, err := m.CreateJob(ctx, &types.JobDescription{Title: "second", Status: types.StatusProcessed})
	require.NoError(t, err)
	third, err := m.CreateJob(ctx, &types.JobDescription{Title: "third", Status: types.StatusPending})
	require.NoError(t, err)

	all, err := m.ListJobs(ctx, JobFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{third.ID, second.ID, first.ID}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})

	pending, err := m.ListJobs(ctx, JobFilter{Status: types.StatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	stale, err := m.ListJobs(ctx, JobFilter{Status: types.StatusPending, CreatedBefore: third.CreatedAt})
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, first.ID, stale[0].ID)
}

func TestMemory_ListCandidatesByStatus(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()
	a := seedCandidate(t, m)
	seedCandidate(t, m)

	_, err := m.UpdateCandidate(ctx, a.ID, AnyVersion, func(c *types.Candidate) error {
		c.Status = types.CandidateRejected
		return nil
	})
	require.NoError(t, err)

	rejected, err := m.ListCandidates(ctx, CandidateFilter{Status: types.CandidateRejected})
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, a.ID, rejected[0].ID)
}

func TestMemory_UpdateResumeKeepsOwner(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()
	c := seedCandidate(t, m)
	r, err := m.CreateResume(ctx, &types.Resume{CandidateID: c.ID, FileName: "cv.pdf"})
	require.NoError(t, err)

	updated, err := m.UpdateResume(ctx, r.ID, AnyVersion, func(r *types.Resume) error {
		r.CandidateID = uuid.New()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, c.ID, updated.CandidateID)
}

func TestMemory_Templates(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()

	tpl, err := m.CreateTemplate(ctx, &types.EmailTemplate{Name: "Invite", Subject: "Hi", Body: "Hello {{candidateName}}"})
	require.NoError(t, err)

	updated, err := m.UpdateTemplate(ctx, tpl.ID, tpl.Version, func(t *types.EmailTemplate) error {
		t.Subject = "Interview Invitation"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Interview Invitation", updated.Subject)

	list, err := m.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, m.DeleteTemplate(ctx, tpl.ID))
	assert.True(t, types.IsNotFound(m.DeleteTemplate(ctx, tpl.ID)))
}

func TestMemory_ConcurrentUpdatesSerialize(t *testing.T) {
	m := newTestMemory()
	ctx := context.Background()
	c := seedCandidate(t, m)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.UpdateCandidate(ctx, c.ID, AnyVersion, func(c *types.Candidate) error {
				score := 0
				if c.MatchScore != nil {
					score = *c.MatchScore
				}
				score++
				c.MatchScore = &score
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := m.GetCandidate(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.MatchScore)
	assert.Equal(t, 50, *got.MatchScore)
	assert.Equal(t, int64(51), got.Version)
}
