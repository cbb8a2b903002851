package main

import (
	"context"
	"errors"

	"github.com/jonathan/talent-matcher/internal/config"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the extraction worker",
	Long:  `Consume extraction tasks from RabbitMQ and write job summaries and parsed resumes to PostgreSQL. Run several workers with a shared Redis to spread the load.`,
	RunE:  runWorker,
}

func init() {
	workerCmd.Flags().Int("concurrency", 4, "Number of concurrent task consumers")
	rootCmd.AddCommand(workerCmd)
}

// errStandaloneWorker is returned when a separate worker could never see the
// server's records or tasks.
var errStandaloneWorker = errors.New("a standalone worker needs database_url and the rabbitmq queue backend")

func runWorker(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd.Flags(), flagBinding{key: "worker_concurrency", flag: "concurrency"})
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" || cfg.QueueBackend != config.QueueRabbitMQ {
		return errStandaloneWorker
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	return runUntilSignal(cmd.Context(), func(ctx context.Context) error {
		b, err := openBackends(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer b.Close()

		proc, err := newProcessor(cfg, b, log)
		if err != nil {
			return err
		}
		return proc.Run(ctx)
	})
}
