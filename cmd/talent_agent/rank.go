package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/matching"
	"github.com/jonathan/talent-matcher/internal/observability"
	"github.com/jonathan/talent-matcher/internal/store/postgres"
	"github.com/spf13/cobra"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Match every candidate against a stored job",
	Long:  "Scores every candidate in the database against one processed job, stores the scores and prints the ranking.",
	RunE:  runRank,
}

var (
	rankJobID string
	rankJSON  bool
)

func init() {
	rankCmd.Flags().StringVar(&rankJobID, "job-id", "", "ID of the job to rank candidates for (required)")
	rankCmd.Flags().BoolVar(&rankJSON, "json", false, "Print the ranking as JSON")
	if err := rankCmd.MarkFlagRequired("job-id"); err != nil {
		panic(fmt.Sprintf("failed to mark job-id flag as required: %v", err))
	}
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, _ []string) error {
	jobID, err := uuid.Parse(rankJobID)
	if err != nil {
		return fmt.Errorf("invalid job ID %q: %w", rankJobID, err)
	}
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("database_url is required")
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := postgres.Connect(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	engine := matching.NewEngine(db, newMachine(cfg), log.Named("matching"), cfg.MatchConcurrency)
	ranking, err := engine.MatchAll(cmd.Context(), jobID)
	if err != nil {
		return err
	}

	if rankJSON {
		out, err := json.MarshalIndent(ranking, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal ranking: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintRanking(ranking)
	return nil
}
