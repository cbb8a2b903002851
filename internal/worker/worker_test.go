package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/extraction"
	"github.com/jonathan/talent-matcher/internal/queue"
	"github.com/jonathan/talent-matcher/internal/store"
	"github.com/jonathan/talent-matcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// failingExtractor fails every extraction with err.
type failingExtractor struct{ err error }

func (f failingExtractor) SummarizeJob(context.Context, *types.JobDescription) (*types.JobSummary, error) {
	return nil, f.err
}

func (f failingExtractor) ParseResume(context.Context, *types.Resume) (*types.ParsedResume, error) {
	return nil, f.err
}

// flakyStore fails the next failures candidate updates before delegating.
type flakyStore struct {
	*store.Memory
	failures int
}

func (f *flakyStore) UpdateCandidate(ctx context.Context, id uuid.UUID, expected int64, fn func(*types.Candidate) error) (*types.Candidate, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("connection reset")
	}
	return f.Memory.UpdateCandidate(ctx, id, expected, fn)
}

type harness struct {
	store  *store.Memory
	queue  *queue.Memory
	locker *queue.MemoryLocker
	proc   *Processor
}

func newHarness(t *testing.T, ex extraction.Extractor) *harness {
	t.Helper()
	if ex == nil {
		var err error
		ex, err = extraction.NewKeywordExtractor()
		require.NoError(t, err)
	}
	h := &harness{
		store:  store.NewMemory(),
		queue:  queue.NewMemory(64, 3, zap.NewNop()),
		locker: queue.NewMemoryLocker(),
	}
	h.proc = NewProcessor(h.store, h.queue, h.locker, ex, zap.NewNop(), Config{Timeout: time.Minute})
	h.proc.provisionalScore = func() int { return 77 }
	t.Cleanup(func() { _ = h.queue.Close() })
	return h
}

func (h *harness) pendingJob(t *testing.T, description string) *types.JobDescription {
	t.Helper()
	job, err := h.store.CreateJob(context.Background(), &types.JobDescription{
		Title: "Dev", Company: "Co", Location: "Remote", Description: description, Status: types.StatusPending,
	})
	require.NoError(t, err)
	return job
}

func (h *harness) pendingResume(t *testing.T, text string) (*types.Candidate, *types.Resume) {
	t.Helper()
	ctx := context.Background()
	c, err := h.store.CreateCandidate(ctx, &types.Candidate{Name: "John", Email: "john@example.com", Phone: "555"})
	require.NoError(t, err)
	r, err := h.store.CreateResume(ctx, &types.Resume{CandidateID: c.ID, FileName: "cv.pdf", Text: text, Status: types.StatusPending})
	require.NoError(t, err)
	return c, r
}

func TestHandle_ProcessesJob(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	job := h.pendingJob(t, "React role, 3 years")

	require.NoError(t, h.proc.Handle(ctx, queue.NewTask(types.KindJob, job.ID)))

	got, err := h.store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusProcessed, got.Status)
	require.NotNil(t, got.Summary)
	assert.Equal(t, "React.js", got.Summary.Skills[0])
	assert.Equal(t, "3+ years of experience", got.Summary.Experience[0])
}

func TestHandle_IsIdempotent(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	job := h.pendingJob(t, "Node backend")
	task := queue.NewTask(types.KindJob, job.ID)

	require.NoError(t, h.proc.Handle(ctx, task))
	first, err := h.store.GetJob(ctx, job.ID)
	require.NoError(t, err)

	require.NoError(t, h.proc.Handle(ctx, task))
	second, err := h.store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second, "second delivery must not write")
}

func TestHandle_ExtractionFailureMarksFailed(t *testing.T) {
	h := newHarness(t, failingExtractor{err: errors.New("skills failed shape check")})
	ctx := context.Background()
	job := h.pendingJob(t, "anything")

	require.NoError(t, h.proc.Handle(ctx, queue.NewTask(types.KindJob, job.ID)))

	got, err := h.store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailed, got.Status)
	assert.Nil(t, got.Summary)
	assert.Equal(t, "skills failed shape check", got.FailureReason)
}

func TestHandle_DeletedRecordIsAcknowledged(t *testing.T) {
	h := newHarness(t, nil)
	assert.NoError(t, h.proc.Handle(context.Background(), queue.NewTask(types.KindJob, uuid.New())))
	assert.NoError(t, h.proc.Handle(context.Background(), queue.NewTask(types.KindResume, uuid.New())))
}

func TestHandle_DuplicateInFlightIsDropped(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	job := h.pendingJob(t, "React")
	task := queue.NewTask(types.KindJob, job.ID)

	_, ok, err := h.locker.TryLock(ctx, task.Key(), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, h.proc.Handle(ctx, task))
	got, err := h.store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, got.Status)
}

func TestHandle_ResumeAssignsProvisionalScore(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c, r := h.pendingResume(t, "")

	require.NoError(t, h.proc.Handle(ctx, queue.NewTask(types.KindResume, r.ID)))

	resume, err := h.store.GetResume(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, resume.Ready())
	assert.Equal(t, extraction.PlaceholderResume(), resume.Parsed)

	owner, err := h.store.GetCandidate(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, owner.MatchScore)
	assert.Equal(t, 77, *owner.MatchScore)
	assert.True(t, owner.ScoreProvisional)
}

func TestHandle_ProvisionalNeverOverwritesEngineScore(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c, r := h.pendingResume(t, "Skills: Go")

	_, err := h.store.UpdateCandidate(ctx, c.ID, store.AnyVersion, func(c *types.Candidate) error {
		score := 42
		c.MatchScore = &score
		c.ScoreProvisional = false
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, h.proc.Handle(ctx, queue.NewTask(types.KindResume, r.ID)))

	owner, err := h.store.GetCandidate(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 42, *owner.MatchScore)
	assert.False(t, owner.ScoreProvisional)
}

func TestHandle_RetryAssignsProvisionalScoreAfterFailedWrite(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	c, r := h.pendingResume(t, "Skills: Go")

	flaky := &flakyStore{Memory: h.store, failures: 1}
	proc := NewProcessor(flaky, h.queue, h.locker, h.proc.extractor, zap.NewNop(), Config{Timeout: time.Minute})
	proc.provisionalScore = func() int { return 81 }

	task := queue.NewTask(types.KindResume, r.ID)
	require.Error(t, proc.Handle(ctx, task))

	resume, err := h.store.GetResume(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusProcessed, resume.Status)
	owner, err := h.store.GetCandidate(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, owner.MatchScore)

	task.Attempt++
	require.NoError(t, proc.Handle(ctx, task))
	owner, err = h.store.GetCandidate(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, owner.MatchScore)
	assert.Equal(t, 81, *owner.MatchScore)
	assert.True(t, owner.ScoreProvisional)

	// Further redeliveries keep the score already assigned.
	proc.provisionalScore = func() int { return 95 }
	require.NoError(t, proc.Handle(ctx, task))
	owner, err = h.store.GetCandidate(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 81, *owner.MatchScore)
}

func TestHandle_UnknownKindIsDropped(t *testing.T) {
	h := newHarness(t, nil)
	assert.NoError(t, h.proc.Handle(context.Background(), queue.NewTask("invoice", uuid.New())))
}

func TestHandle_CancelledDuringDelay(t *testing.T) {
	h := newHarness(t, nil)
	h.proc.cfg.Delay = time.Hour
	job := h.pendingJob(t, "React")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := h.proc.Handle(ctx, queue.NewTask(types.KindJob, job.ID))
	assert.ErrorIs(t, err, context.Canceled)

	got, err := h.store.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, got.Status)
}

func TestSweep_FailsStaleRecords(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	stale := h.pendingJob(t, "React")
	_, staleResume := h.pendingResume(t, "")

	later := func() time.Time { return time.Now().UTC().Add(2 * time.Minute) }
	h.proc.now = later
	h.store.SetClock(later)
	fresh := h.pendingJob(t, "Node")

	n, err := h.proc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	freshGot, err := h.store.GetJob(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, freshGot.Status)

	got, err := h.store.GetJob(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailed, got.Status)
	assert.Equal(t, TimeoutReason, got.FailureReason)

	resume, err := h.store.GetResume(ctx, staleResume.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailed, resume.Status)

	// A record failed by the sweeper is settled and later deliveries are no-ops.
	require.NoError(t, h.proc.Handle(ctx, queue.NewTask(types.KindJob, stale.ID)))
	got, err = h.store.GetJob(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailed, got.Status)
}

func TestSweep_LeavesFreshRecords(t *testing.T) {
	h := newHarness(t, nil)
	job := h.pendingJob(t, "React")

	n, err := h.proc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := h.store.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, got.Status)
}

func TestRecover_EnqueuesPending(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.pendingJob(t, "React")
	h.pendingResume(t, "")
	done := h.pendingJob(t, "Node")
	require.NoError(t, h.proc.Handle(ctx, queue.NewTask(types.KindJob, done.ID)))

	n, err := h.proc.Recover(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, h.queue.Len())
}

func TestRun_ProcessesEnqueuedTasks(t *testing.T) {
	h := newHarness(t, nil)
	job := h.pendingJob(t, "React")

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- h.proc.Run(ctx) }()

	require.Eventually(t, func() bool {
		got, err := h.store.GetJob(context.Background(), job.ID)
		return err == nil && got.Status == types.StatusProcessed
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}
