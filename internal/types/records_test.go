package types

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobDescription_Transitions(t *testing.T) {
	job := &JobDescription{Status: StatusPending}
	assert.False(t, job.Ready())

	job.MarkProcessed(&JobSummary{Skills: []string{"Go"}})
	assert.True(t, job.Ready())
	assert.Empty(t, job.FailureReason)

	job.MarkFailed("boom")
	assert.False(t, job.Ready())
	assert.Nil(t, job.Summary, "a failed job never carries a summary")
	assert.Equal(t, "boom", job.FailureReason)
}

func TestResume_Transitions(t *testing.T) {
	r := &Resume{Status: StatusPending}
	r.MarkProcessed(&ParsedResume{Skills: []string{"Go"}})
	assert.True(t, r.Ready())

	r.MarkFailed("bad shape")
	assert.False(t, r.Ready())
	assert.Nil(t, r.Parsed)
}

func TestCandidate_HasEngineScore(t *testing.T) {
	score := 75
	tests := []struct {
		name string
		c    Candidate
		want bool
	}{
		{name: "no score", c: Candidate{}},
		{name: "provisional", c: Candidate{MatchScore: &score, ScoreProvisional: true}},
		{name: "engine", c: Candidate{MatchScore: &score}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.HasEngineScore())
		})
	}
}

func TestClone_IsDeep(t *testing.T) {
	job := &JobDescription{Summary: &JobSummary{Skills: []string{"Go"}}}
	jc := job.Clone()
	jc.Summary.Skills[0] = "Rust"
	assert.Equal(t, "Go", job.Summary.Skills[0])

	score := 50
	rid := uuid.New()
	c := &Candidate{MatchScore: &score, ResumeID: &rid}
	cc := c.Clone()
	*cc.MatchScore = 90
	*cc.ResumeID = uuid.New()
	assert.Equal(t, 50, *c.MatchScore)
	assert.Equal(t, rid, *c.ResumeID)

	r := &Resume{Parsed: &ParsedResume{Education: []string{"BSc"}}}
	rc := r.Clone()
	rc.Parsed.Education[0] = "PhD"
	assert.Equal(t, "BSc", r.Parsed.Education[0])

	var nilJob *JobDescription
	assert.Nil(t, nilJob.Clone())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusFailed.Valid())
	assert.False(t, ProcessingStatus("done").Valid())
	assert.True(t, CandidateContacted.Valid())
	assert.False(t, CandidateStatus("hired").Valid())
}

func TestUniqueFold(t *testing.T) {
	got := UniqueFold([]string{"React.js", " react.js ", "", "Go", "GO", "Node.js"})
	assert.Equal(t, []string{"React.js", "Go", "Node.js"}, got)
	assert.NotNil(t, UniqueFold(nil))
}

func TestErrorKinds(t *testing.T) {
	id := uuid.New()
	notFound := fmt.Errorf("failed to load: %w", &NotFoundError{Kind: KindJob, ID: id})
	notReady := &NotReadyError{Kind: KindResume, ID: id, Reason: "status is pending"}
	invalid := &ValidationError{Field: "email", Message: "must be a valid email address"}
	conflict := &ConflictError{Kind: KindCandidate, ID: id, Expected: 1, Actual: 2}

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(notReady))
	assert.True(t, IsNotReady(notReady))
	assert.True(t, IsValidation(invalid))
	assert.True(t, IsConflict(conflict))
	assert.False(t, IsConflict(nil))

	assert.Contains(t, notFound.Error(), "job not found")
	assert.Contains(t, notReady.Error(), "status is pending")
	assert.Equal(t, "validation error in email: must be a valid email address", invalid.Error())
	require.Contains(t, conflict.Error(), "expected version 1, found 2")
}
