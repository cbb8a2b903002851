package recruiting

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/email"
	"github.com/jonathan/talent-matcher/internal/lifecycle"
	"github.com/jonathan/talent-matcher/internal/matching"
	"github.com/jonathan/talent-matcher/internal/queue"
	"github.com/jonathan/talent-matcher/internal/store"
	"github.com/jonathan/talent-matcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingDispatcher keeps sent messages and fails when err is set.
type recordingDispatcher struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (d *recordingDispatcher) Send(_ context.Context, msg email.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, msg)
	return nil
}

type fixture struct {
	svc        *Service
	store      *store.Memory
	queue      *queue.Memory
	dispatcher *recordingDispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemory()
	q := queue.NewMemory(64, queue.DefaultMaxAttempts, zap.NewNop())
	t.Cleanup(func() { _ = q.Close() })
	machine := lifecycle.New(lifecycle.DefaultShortlistThreshold)
	engine := matching.NewEngine(st, machine, zap.NewNop(), 2)
	d := &recordingDispatcher{}
	return &fixture{
		svc:        NewService(st, q, engine, machine, d, zap.NewNop()),
		store:      st,
		queue:      q,
		dispatcher: d,
	}
}

func (f *fixture) candidate(t *testing.T) *types.Candidate {
	t.Helper()
	c, err := f.svc.CreateCandidate(context.Background(), &types.CreateCandidateRequest{
		Name: "Jane Doe", Email: "jane@example.com", Phone: "555-0100",
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) processJob(t *testing.T, id uuid.UUID, summary *types.JobSummary) {
	t.Helper()
	_, err := f.store.UpdateJob(context.Background(), id, store.AnyVersion, func(j *types.JobDescription) error {
		j.MarkProcessed(summary)
		return nil
	})
	require.NoError(t, err)
}

func (f *fixture) processResume(t *testing.T, id uuid.UUID, parsed *types.ParsedResume) {
	t.Helper()
	_, err := f.store.UpdateResume(context.Background(), id, store.AnyVersion, func(r *types.Resume) error {
		r.MarkProcessed(parsed)
		return nil
	})
	require.NoError(t, err)
}

func TestCreateJob_PersistsPendingAndEnqueues(t *testing.T) {
	f := newFixture(t)
	job, err := f.svc.CreateJob(context.Background(), &types.CreateJobRequest{
		Title: " Frontend Developer ", Company: "Acme", Location: "Remote", Description: "React, 3 years",
	})
	require.NoError(t, err)

	assert.Equal(t, "Frontend Developer", job.Title)
	assert.Equal(t, types.StatusPending, job.Status)
	assert.Nil(t, job.Summary)
	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.Equal(t, 1, f.queue.Len())
}

func TestCreateJob_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateJob(context.Background(), &types.CreateJobRequest{Title: "T", Company: "C", Location: "L", Description: "   "})

	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "description", verr.Field)
	assert.Zero(t, f.queue.Len())
}

func TestUpdateJob_KeepsDescriptionAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job, err := f.svc.CreateJob(ctx, &types.CreateJobRequest{Title: "T", Company: "C", Location: "L", Description: "React"})
	require.NoError(t, err)
	f.processJob(t, job.ID, &types.JobSummary{Skills: []string{"React.js"}, Experience: []string{"x"}, Responsibilities: []string{"y"}})

	title := "Senior T"
	updated, err := f.svc.UpdateJob(ctx, job.ID, store.AnyVersion, &types.UpdateJobRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Senior T", updated.Title)
	assert.Equal(t, "React", updated.Description)
	assert.Equal(t, types.StatusProcessed, updated.Status)

	_, err = f.svc.UpdateJob(ctx, job.ID, 1, &types.UpdateJobRequest{Title: &title})
	assert.True(t, types.IsConflict(err))
}

func TestCreateResume_LinksCandidateAndEnqueues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.candidate(t)

	resume, err := f.svc.CreateResume(ctx, &types.CreateResumeRequest{CandidateID: c.ID.String(), FileName: "jane.pdf"})
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, resume.Status)
	assert.Equal(t, 1, f.queue.Len())

	got, err := f.svc.GetCandidate(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ResumeID)
	assert.Equal(t, resume.ID, *got.ResumeID)
}

func TestCreateResume_UnknownCandidate(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateResume(context.Background(), &types.CreateResumeRequest{CandidateID: uuid.NewString(), FileName: "x.pdf"})
	assert.True(t, types.IsNotFound(err))
	assert.Zero(t, f.queue.Len())
}

func TestUpdateCandidate_Status(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.candidate(t)

	rejected := types.CandidateRejected
	got, err := f.svc.UpdateCandidate(ctx, c.ID, store.AnyVersion, &types.UpdateCandidateRequest{Status: &rejected})
	require.NoError(t, err)
	assert.Equal(t, types.CandidateRejected, got.Status)

	contacted := types.CandidateContacted
	_, err = f.svc.UpdateCandidate(ctx, c.ID, store.AnyVersion, &types.UpdateCandidateRequest{Status: &contacted})
	assert.True(t, types.IsValidation(err))

	name := "Jane Q. Doe"
	got, err = f.svc.UpdateCandidate(ctx, c.ID, store.AnyVersion, &types.UpdateCandidateRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Jane Q. Doe", got.Name)
	assert.Equal(t, types.CandidateRejected, got.Status)
}

func TestOperatorTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.candidate(t)

	got, err := f.svc.Shortlist(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, types.CandidateShortlisted, got.Status)

	got, err = f.svc.Reject(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, types.CandidateRejected, got.Status)

	got, err = f.svc.Reset(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, types.CandidateNew, got.Status)

	_, err = f.svc.Shortlist(ctx, uuid.New())
	assert.True(t, types.IsNotFound(err))
}

func TestMatch_ThroughService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.candidate(t)

	job, err := f.svc.CreateJob(ctx, &types.CreateJobRequest{Title: "T", Company: "C", Location: "L", Description: "React"})
	require.NoError(t, err)
	resume, err := f.svc.CreateResume(ctx, &types.CreateResumeRequest{CandidateID: c.ID.String(), FileName: "jane.pdf"})
	require.NoError(t, err)

	_, err = f.svc.Match(ctx, c.ID, job.ID)
	assert.True(t, types.IsNotReady(err))

	f.processJob(t, job.ID, &types.JobSummary{
		Skills:           []string{"React.js", "JavaScript"},
		Experience:       []string{"3+ years of experience"},
		Responsibilities: []string{"Write clean code"},
	})
	f.processResume(t, resume.ID, &types.ParsedResume{
		Education:      []string{"BSc"},
		WorkExperience: []string{"Wrote clean code for 3+ years of experience"},
		Skills:         []string{"React.js", "JavaScript"},
		Certifications: []string{"AWS"},
	})

	res, err := f.svc.Match(ctx, c.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, res.MatchScore)
	assert.Equal(t, types.CandidateShortlisted, res.Status)

	ranking, err := f.svc.MatchAll(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, ranking.Results, 1)
	assert.Equal(t, c.ID, ranking.Results[0].CandidateID)
}

func TestDeleteResume_ClearsReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.candidate(t)
	resume, err := f.svc.CreateResume(ctx, &types.CreateResumeRequest{CandidateID: c.ID.String(), FileName: "jane.pdf"})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteResume(ctx, resume.ID))

	got, err := f.svc.GetCandidate(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ResumeID)
}

func TestSendEmail_MarksContacted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.candidate(t)
	tpl, err := f.svc.CreateTemplate(ctx, &types.CreateEmailTemplateRequest{
		Name: "Invite", Subject: "Interview at {{company}}", Body: "Dear {{candidateName}}",
	})
	require.NoError(t, err)

	res, err := f.svc.SendEmail(ctx, c.ID, &types.SendEmailRequest{
		TemplateID: tpl.ID.String(),
		Variables:  map[string]string{"company": "Acme"},
	})
	require.NoError(t, err)
	assert.Equal(t, types.CandidateContacted, res.Candidate.Status)
	assert.Equal(t, "Interview at Acme", res.Message.Subject)
	assert.Equal(t, "Dear Jane Doe", res.Message.Body)
	require.Len(t, f.dispatcher.sent, 1)
	assert.Equal(t, "jane@example.com", f.dispatcher.sent[0].To)
}

func TestSendEmail_DispatchFailureKeepsStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.candidate(t)
	tpl, err := f.svc.CreateTemplate(ctx, &types.CreateEmailTemplateRequest{Name: "N", Subject: "S", Body: "B"})
	require.NoError(t, err)
	f.dispatcher.err = errors.New("smtp down")

	_, err = f.svc.SendEmail(ctx, c.ID, &types.SendEmailRequest{TemplateID: tpl.ID.String()})
	assert.ErrorIs(t, err, ErrDeliveryFailed)

	got, err := f.svc.GetCandidate(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, types.CandidateNew, got.Status)
}

func TestSendEmail_UnknownTemplate(t *testing.T) {
	f := newFixture(t)
	c := f.candidate(t)
	_, err := f.svc.SendEmail(context.Background(), c.ID, &types.SendEmailRequest{TemplateID: uuid.NewString()})
	assert.True(t, types.IsNotFound(err))
	assert.Empty(t, f.dispatcher.sent)
}

func TestTemplates_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tpl, err := f.svc.CreateTemplate(ctx, &types.CreateEmailTemplateRequest{Name: "N", Subject: "S", Body: "B"})
	require.NoError(t, err)

	subject := "New subject"
	updated, err := f.svc.UpdateTemplate(ctx, tpl.ID, tpl.Version, &types.UpdateEmailTemplateRequest{Subject: &subject})
	require.NoError(t, err)
	assert.Equal(t, "New subject", updated.Subject)

	list, err := f.svc.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.svc.DeleteTemplate(ctx, tpl.ID))
	_, err = f.svc.GetTemplate(ctx, tpl.ID)
	assert.True(t, types.IsNotFound(err))
}

func TestSeedTemplates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.svc.SeedTemplates(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(email.DefaultTemplates()), n)

	n, err = f.svc.SeedTemplates(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
