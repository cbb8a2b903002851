package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/talent-matcher/internal/extraction"
	"github.com/jonathan/talent-matcher/internal/lifecycle"
	"github.com/jonathan/talent-matcher/internal/matching"
	"github.com/jonathan/talent-matcher/internal/observability"
	"github.com/jonathan/talent-matcher/internal/types"
	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score a resume file against a job description file",
	Long:  "Runs extraction on a local job description and resume (plain text or HTML) and prints the match score without touching any store.",
	RunE:  runMatch,
}

var (
	matchJobFile    string
	matchResumeFile string
	matchJSON       bool
)

func init() {
	matchCmd.Flags().StringVarP(&matchJobFile, "job", "j", "", "Path to the job description file (required)")
	matchCmd.Flags().StringVarP(&matchResumeFile, "resume", "r", "", "Path to the resume text file (required)")
	matchCmd.Flags().BoolVar(&matchJSON, "json", false, "Print the report as JSON")

	if err := matchCmd.MarkFlagRequired("job"); err != nil {
		panic(fmt.Sprintf("failed to mark job flag as required: %v", err))
	}
	if err := matchCmd.MarkFlagRequired("resume"); err != nil {
		panic(fmt.Sprintf("failed to mark resume flag as required: %v", err))
	}

	rootCmd.AddCommand(matchCmd)
}

// matchReport is the JSON form of the match command's output.
type matchReport struct {
	Job    *types.JobSummary     `json:"job"`
	Resume *types.ParsedResume   `json:"resume"`
	Score  matching.Score        `json:"score"`
	Status types.CandidateStatus `json:"status"`
}

func runMatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	jobText, err := os.ReadFile(matchJobFile)
	if err != nil {
		return fmt.Errorf("failed to read job description file %s: %w", matchJobFile, err)
	}
	resumeText, err := os.ReadFile(matchResumeFile)
	if err != nil {
		return fmt.Errorf("failed to read resume file %s: %w", matchResumeFile, err)
	}

	ex, err := extraction.NewKeywordExtractor()
	if err != nil {
		return fmt.Errorf("failed to load extraction schemas: %w", err)
	}

	job := &types.JobDescription{Title: matchJobFile, Description: string(jobText)}
	summary, err := ex.SummarizeJob(cmd.Context(), job)
	if err != nil {
		return fmt.Errorf("failed to summarize job: %w", err)
	}
	job.MarkProcessed(summary)

	resume := &types.Resume{FileName: matchResumeFile, Text: string(resumeText)}
	parsed, err := ex.ParseResume(cmd.Context(), resume)
	if err != nil {
		return fmt.Errorf("failed to parse resume: %w", err)
	}
	resume.MarkProcessed(parsed)

	score := matching.ComputeScore(summary, parsed)
	status, err := newMachine(cfg).Apply(types.CandidateNew, lifecycle.Matched(score.Overall))
	if err != nil {
		return err
	}

	if matchJSON {
		out, err := json.MarshalIndent(matchReport{Job: summary, Resume: parsed, Score: score, Status: status}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal match report: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	p := observability.NewPrinter(cmd.OutOrStdout())
	p.PrintJobSummary(job)
	p.PrintParsedResume(resume)
	p.PrintMatchResult(&matching.Result{
		MatchScore:   score.Overall,
		MatchDetails: score.Details,
		Status:       status,
	})
	return nil
}
