// Package matching scores a candidate's parsed resume against a job summary
// and persists the result.
package matching

import (
	"strings"
	"unicode/utf8"

	"github.com/jonathan/talent-matcher/internal/types"
)

// Details holds the three sub-scores, each in [0,100].
type Details struct {
	Skills           int `json:"skills"`
	Experience       int `json:"experience"`
	Responsibilities int `json:"responsibilities"`
}

// Score is a complete match computation.
type Score struct {
	Overall int     `json:"matchScore"`
	Details Details `json:"matchDetails"`
}

// minKeywordLength is the length a responsibility keyword must exceed to count.
const minKeywordLength = 3

// ComputeScore compares a job summary with a parsed resume. It is pure and
// deterministic.
func ComputeScore(job *types.JobSummary, resume *types.ParsedResume) Score {
	blob := experienceBlob(resume.WorkExperience)
	d := Details{
		Skills:           SkillsScore(job.Skills, resume.Skills),
		Experience:       ExperienceScore(job.Experience, blob),
		Responsibilities: ResponsibilitiesScore(job.Responsibilities, blob),
	}
	return Score{
		Overall: (d.Skills + d.Experience + d.Responsibilities) / 3,
		Details: d,
	}
}

// SkillsScore is the percentage of job skills contained, case-insensitively,
// in at least one candidate skill.
func SkillsScore(jobSkills, candidateSkills []string) int {
	lowered := make([]string, len(candidateSkills))
	for i, s := range candidateSkills {
		lowered[i] = strings.ToLower(s)
	}

	matches := 0
	for _, skill := range jobSkills {
		want := strings.ToLower(skill)
		for _, have := range lowered {
			if strings.Contains(have, want) {
				matches++
				break
			}
		}
	}
	return percentage(matches, len(jobSkills))
}

// ExperienceScore is the percentage of experience phrases found verbatim,
// case-insensitively, in the work experience blob.
func ExperienceScore(phrases []string, blob string) int {
	matches := 0
	for _, phrase := range phrases {
		if strings.Contains(blob, strings.ToLower(phrase)) {
			matches++
		}
	}
	return percentage(matches, len(phrases))
}

// ResponsibilitiesScore is the percentage of responsibility phrases for which
// more than half of the phrase's words are significant keywords present in the
// blob. Short words count toward the total but can never match.
func ResponsibilitiesScore(phrases []string, blob string) int {
	matches := 0
	for _, phrase := range phrases {
		if phraseMatches(phrase, blob) {
			matches++
		}
	}
	return percentage(matches, len(phrases))
}

func phraseMatches(phrase, blob string) bool {
	keywords := strings.Fields(strings.ToLower(phrase))
	if len(keywords) == 0 {
		return false
	}
	found := 0
	for _, kw := range keywords {
		if utf8.RuneCountInString(kw) > minKeywordLength && strings.Contains(blob, kw) {
			found++
		}
	}
	return found*2 > len(keywords)
}

// experienceBlob joins work experience entries into one lowercase string.
func experienceBlob(entries []string) string {
	return strings.ToLower(strings.Join(entries, " "))
}

// percentage returns floor(matches/total*100) clamped to [0,100]. An empty
// requirement set is fully satisfied.
func percentage(matches, total int) int {
	if total == 0 {
		return 100
	}
	p := matches * 100 / total
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
