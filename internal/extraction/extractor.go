// Package extraction derives structured summaries from job descriptions and
// resumes using deterministic keyword rules.
package extraction

import (
	"context"
	"fmt"

	"github.com/jonathan/talent-matcher/internal/types"
)

// Extractor turns raw record content into structured data.
type Extractor interface {
	SummarizeJob(ctx context.Context, job *types.JobDescription) (*types.JobSummary, error)
	ParseResume(ctx context.Context, resume *types.Resume) (*types.ParsedResume, error)
}

// KeywordExtractor is the rule-based Extractor. Results are checked against
// the embedded schemas before being returned.
type KeywordExtractor struct {
	schemas schemaSet
}

// NewKeywordExtractor compiles the embedded schemas.
func NewKeywordExtractor() (*KeywordExtractor, error) {
	schemas, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	return &KeywordExtractor{schemas: schemas}, nil
}

// SummarizeJob normalizes the description and applies the job rules.
func (e *KeywordExtractor) SummarizeJob(ctx context.Context, job *types.JobDescription) (*types.JobSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, err := NormalizeText(job.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize job description: %w", err)
	}

	summary := SummarizeJob(text)
	if err := e.schemas.validate(SchemaJobSummary, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// ParseResume normalizes the resume text and classifies it. A resume without
// text yields the placeholder profile.
func (e *KeywordExtractor) ParseResume(ctx context.Context, resume *types.Resume) (*types.ParsedResume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, err := NormalizeText(resume.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize resume text: %w", err)
	}

	parsed := PlaceholderResume()
	if text != "" {
		parsed = ParseResume(text)
	}
	if err := e.schemas.validate(SchemaParsedResume, parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

var _ Extractor = (*KeywordExtractor)(nil)
