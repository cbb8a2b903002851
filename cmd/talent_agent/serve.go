package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/talent-matcher/internal/config"
	"github.com/jonathan/talent-matcher/internal/email"
	"github.com/jonathan/talent-matcher/internal/extraction"
	"github.com/jonathan/talent-matcher/internal/matching"
	"github.com/jonathan/talent-matcher/internal/recruiting"
	"github.com/jonathan/talent-matcher/internal/server"
	"github.com/jonathan/talent-matcher/internal/server/ratelimit"
	"github.com/jonathan/talent-matcher/internal/worker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for jobs, candidates, resumes, matching and email. By default the extraction worker runs in the same process.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().Bool("embedded-worker", true, "Run the extraction worker in this process")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd.Flags(),
		flagBinding{key: "port", flag: "port"},
		flagBinding{key: "embedded_worker", flag: "embedded-worker"},
	)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	if cfg.QueueBackend == config.QueueMemory && !cfg.EmbeddedWorker {
		log.Warn("in-memory queue without an embedded worker: records will stay pending until swept")
	}

	machine := newMachine(cfg)
	engine := matching.NewEngine(b.store, machine, log.Named("matching"), cfg.MatchConcurrency)
	svc := recruiting.NewService(b.store, b.queue, engine, machine, email.NewLogDispatcher(log.Named("email")), log.Named("recruiting"))

	if cfg.SeedTemplates {
		n, err := svc.SeedTemplates(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed email templates: %w", err)
		}
		if n > 0 {
			log.Info("seeded default email templates", zap.Int("count", n))
		}
	}

	srvCfg, err := serverConfig(cfg)
	if err != nil {
		return err
	}
	srv := server.New(svc, log.Named("http"), srvCfg)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gCtx) })
	if cfg.EmbeddedWorker {
		proc, err := newProcessor(cfg, b, log)
		if err != nil {
			return err
		}
		g.Go(func() error { return proc.Run(gCtx) })
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// serverConfig derives the HTTP settings from the process config.
func serverConfig(cfg *config.Config) (server.Config, error) {
	srvCfg := server.Config{
		Port:       cfg.Port,
		CORSOrigin: cfg.CORSOrigin,
		RateLimit: ratelimit.NewConfig(
			cfg.RateLimitEnabled,
			cfg.RateLimitDefaultLimit,
			cfg.RateLimitDefaultWindow,
			cfg.RateLimitCleanupInterval,
			cfg.RateLimitWhitelist,
			cfg.RateLimitBlacklist,
		),
	}
	if cfg.AuthEnabled() {
		jwtCfg, err := cfg.JWT()
		if err != nil {
			return server.Config{}, fmt.Errorf("invalid operator auth config: %w", err)
		}
		srvCfg.JWT = jwtCfg
	}
	return srvCfg, nil
}

// newProcessor builds the extraction worker over the opened backends.
func newProcessor(cfg *config.Config, b *backends, log *zap.Logger) (*worker.Processor, error) {
	ex, err := extraction.NewKeywordExtractor()
	if err != nil {
		return nil, fmt.Errorf("failed to load extraction schemas: %w", err)
	}
	return worker.NewProcessor(b.store, b.queue, b.locker, ex, log.Named("worker"), worker.Config{
		Delay:         cfg.ExtractionDelay,
		Timeout:       cfg.ExtractionTimeout,
		SweepInterval: cfg.SweepInterval,
		Concurrency:   cfg.WorkerConcurrency,
	}), nil
}

// runUntilSignal is shared by long-running commands that only need a
// cancellable context.
func runUntilSignal(parent context.Context, fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := fn(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
