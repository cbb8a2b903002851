// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/talent-matcher/internal/matching"
	"github.com/jonathan/talent-matcher/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// writeList writes up to limit items under a heading.
func writeList(sb *strings.Builder, heading string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", truncate(items[i], 50)))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
	sb.WriteString("\n")
}

// PrintJobSummary outputs a job description and its extracted summary.
func (p *Printer) PrintJobSummary(job *types.JobDescription) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:    %s\n", job.Title))
	sb.WriteString(fmt.Sprintf("Company:  %s\n", job.Company))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", job.Status))
	if job.FailureReason != "" {
		sb.WriteString(fmt.Sprintf("Reason:   %s\n", job.FailureReason))
	}
	sb.WriteString("\n")

	if job.Summary != nil {
		writeList(&sb, "Skills", job.Summary.Skills, maxItemsToShow)
		writeList(&sb, "Experience", job.Summary.Experience, 3)
		writeList(&sb, "Responsibilities", job.Summary.Responsibilities, 3)
	}

	p.printBox("JOB SUMMARY", strings.TrimRight(sb.String(), "\n"))
}

// PrintParsedResume outputs the structured fields extracted from a resume.
func (p *Printer) PrintParsedResume(resume *types.Resume) {
	if resume == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:     %s\n", resume.FileName))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", resume.Status))
	sb.WriteString("\n")

	if resume.Parsed != nil {
		writeList(&sb, "Skills", resume.Parsed.Skills, maxItemsToShow)
		writeList(&sb, "Work Experience", resume.Parsed.WorkExperience, 3)
		writeList(&sb, "Education", resume.Parsed.Education, 3)
		writeList(&sb, "Certifications", resume.Parsed.Certifications, 3)
	}

	p.printBox("PARSED RESUME", strings.TrimRight(sb.String(), "\n"))
}

// PrintMatchResult outputs one match score with its breakdown.
func (p *Printer) PrintMatchResult(res *matching.Result) {
	if res == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidate: %s\n", res.CandidateID))
	sb.WriteString(fmt.Sprintf("Job:       %s\n", res.JobID))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Score:     %d\n", res.MatchScore))
	sb.WriteString(fmt.Sprintf("  Skills:           %3d\n", res.MatchDetails.Skills))
	sb.WriteString(fmt.Sprintf("  Experience:       %3d\n", res.MatchDetails.Experience))
	sb.WriteString(fmt.Sprintf("  Responsibilities: %3d\n", res.MatchDetails.Responsibilities))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Status:    %s", res.Status))

	p.printBox("MATCH RESULT", sb.String())
}

// PrintRanking outputs the top ranked candidates for a job and any that were skipped.
func (p *Printer) PrintRanking(ranking *matching.Ranking) {
	if ranking == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidates ranked: %d\n", len(ranking.Results)))
	sb.WriteString(fmt.Sprintf("Skipped:           %d\n\n", len(ranking.Skipped)))

	count := min(len(ranking.Results), maxItemsToShow)
	for i := 0; i < count; i++ {
		res := ranking.Results[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, res.CandidateID))
		sb.WriteString(fmt.Sprintf("    Score: %d (%d/%d/%d)  %s\n",
			res.MatchScore,
			res.MatchDetails.Skills,
			res.MatchDetails.Experience,
			res.MatchDetails.Responsibilities,
			res.Status))
	}
	if len(ranking.Results) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more candidates\n", len(ranking.Results)-maxItemsToShow))
	}

	if len(ranking.Skipped) > 0 {
		sb.WriteString("\nSkipped:\n")
		count := min(len(ranking.Skipped), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", ranking.Skipped[i].Reason))
		}
		if len(ranking.Skipped) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(ranking.Skipped)-3))
		}
	}

	p.printBox("CANDIDATE RANKING", strings.TrimRight(sb.String(), "\n"))
}
