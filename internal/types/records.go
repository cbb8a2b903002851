// Package types provides the domain records, request payloads and error kinds
// shared by the store, extraction, matching and HTTP layers.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProcessingStatus is the extraction state of a JobDescription or Resume.
type ProcessingStatus string

// Processing states. A record leaves pending exactly once.
const (
	StatusPending   ProcessingStatus = "pending"
	StatusProcessed ProcessingStatus = "processed"
	StatusFailed    ProcessingStatus = "failed"
)

// Valid reports whether s is a known processing status.
func (s ProcessingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessed, StatusFailed:
		return true
	}
	return false
}

// CandidateStatus is a Candidate's position in the hiring pipeline.
type CandidateStatus string

// Candidate pipeline states.
const (
	CandidateNew         CandidateStatus = "new"
	CandidateContacted   CandidateStatus = "contacted"
	CandidateShortlisted CandidateStatus = "shortlisted"
	CandidateRejected    CandidateStatus = "rejected"
)

// Valid reports whether s is a known candidate status.
func (s CandidateStatus) Valid() bool {
	switch s {
	case CandidateNew, CandidateContacted, CandidateShortlisted, CandidateRejected:
		return true
	}
	return false
}

// JobSummary is the structured view extracted from a job description.
type JobSummary struct {
	Skills           []string `json:"skills"`
	Experience       []string `json:"experience"`
	Responsibilities []string `json:"responsibilities"`
}

// JobDescription is a job posting tracked by the pipeline.
type JobDescription struct {
	ID            uuid.UUID        `json:"id"`
	Title         string           `json:"title"`
	Company       string           `json:"company"`
	Location      string           `json:"location"`
	Description   string           `json:"description"`
	Summary       *JobSummary      `json:"summary,omitempty"`
	Status        ProcessingStatus `json:"status"`
	FailureReason string           `json:"failureReason,omitempty"`
	Version       int64            `json:"version"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// Ready reports whether the job has a summary that can be matched against.
func (j *JobDescription) Ready() bool {
	return j.Status == StatusProcessed && j.Summary != nil
}

// MarkProcessed attaches the summary and moves the job out of pending.
func (j *JobDescription) MarkProcessed(summary *JobSummary) {
	j.Summary = summary
	j.Status = StatusProcessed
	j.FailureReason = ""
}

// MarkFailed records an extraction failure. The summary stays absent.
func (j *JobDescription) MarkFailed(reason string) {
	j.Summary = nil
	j.Status = StatusFailed
	j.FailureReason = reason
}

// Clone returns a deep copy of the job.
func (j *JobDescription) Clone() *JobDescription {
	if j == nil {
		return nil
	}
	c := *j
	if j.Summary != nil {
		c.Summary = &JobSummary{
			Skills:           cloneStrings(j.Summary.Skills),
			Experience:       cloneStrings(j.Summary.Experience),
			Responsibilities: cloneStrings(j.Summary.Responsibilities),
		}
	}
	return &c
}

// Candidate is a person moving through the hiring pipeline.
type Candidate struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	ResumeID         *uuid.UUID      `json:"resumeId,omitempty"`
	MatchScore       *int            `json:"matchScore,omitempty"`
	ScoreProvisional bool            `json:"scoreProvisional,omitempty"`
	LastMatchedJobID *uuid.UUID      `json:"lastMatchedJobId,omitempty"`
	Status           CandidateStatus `json:"status"`
	Version          int64           `json:"version"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// HasEngineScore reports whether the current score came from the matching engine.
func (c *Candidate) HasEngineScore() bool {
	return c.MatchScore != nil && !c.ScoreProvisional
}

// Clone returns a deep copy of the candidate.
func (c *Candidate) Clone() *Candidate {
	if c == nil {
		return nil
	}
	cp := *c
	if c.ResumeID != nil {
		id := *c.ResumeID
		cp.ResumeID = &id
	}
	if c.MatchScore != nil {
		score := *c.MatchScore
		cp.MatchScore = &score
	}
	if c.LastMatchedJobID != nil {
		id := *c.LastMatchedJobID
		cp.LastMatchedJobID = &id
	}
	return &cp
}

// ParsedResume is the structured view extracted from a resume.
type ParsedResume struct {
	Education      []string `json:"education"`
	WorkExperience []string `json:"workExperience"`
	Skills         []string `json:"skills"`
	Certifications []string `json:"certifications"`
}

// Resume is an uploaded resume owned by one candidate.
type Resume struct {
	ID            uuid.UUID        `json:"id"`
	CandidateID   uuid.UUID        `json:"candidateId"`
	FileName      string           `json:"fileName"`
	FileURL       string           `json:"fileUrl,omitempty"`
	Text          string           `json:"text,omitempty"`
	Parsed        *ParsedResume    `json:"parsed,omitempty"`
	Status        ProcessingStatus `json:"status"`
	FailureReason string           `json:"failureReason,omitempty"`
	Version       int64            `json:"version"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// Ready reports whether the resume has parsed content that can be matched.
func (r *Resume) Ready() bool {
	return r.Status == StatusProcessed && r.Parsed != nil
}

// MarkProcessed attaches the parsed content and moves the resume out of pending.
func (r *Resume) MarkProcessed(parsed *ParsedResume) {
	r.Parsed = parsed
	r.Status = StatusProcessed
	r.FailureReason = ""
}

// MarkFailed records a parsing failure.
func (r *Resume) MarkFailed(reason string) {
	r.Parsed = nil
	r.Status = StatusFailed
	r.FailureReason = reason
}

// Clone returns a deep copy of the resume.
func (r *Resume) Clone() *Resume {
	if r == nil {
		return nil
	}
	c := *r
	if r.Parsed != nil {
		c.Parsed = &ParsedResume{
			Education:      cloneStrings(r.Parsed.Education),
			WorkExperience: cloneStrings(r.Parsed.WorkExperience),
			Skills:         cloneStrings(r.Parsed.Skills),
			Certifications: cloneStrings(r.Parsed.Certifications),
		}
	}
	return &c
}

// EmailTemplate is a reusable message handed to the email dispatcher.
type EmailTemplate struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a copy of the template.
func (t *EmailTemplate) Clone() *EmailTemplate {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// UniqueFold removes blank entries and case-insensitive duplicates, keeping
// the first spelling seen.
func UniqueFold(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
