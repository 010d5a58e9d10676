package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/duskcrawl/webcrawler/internal/backoff"
	"github.com/duskcrawl/webcrawler/internal/checkpoint"
	"github.com/duskcrawl/webcrawler/internal/config"
	"github.com/duskcrawl/webcrawler/internal/fetcher"
	"github.com/duskcrawl/webcrawler/internal/fingerprint"
	"github.com/duskcrawl/webcrawler/internal/orchestrator"
	"github.com/duskcrawl/webcrawler/internal/ratelimit"
	"github.com/duskcrawl/webcrawler/internal/result"
	"github.com/duskcrawl/webcrawler/internal/scope"
	"github.com/duskcrawl/webcrawler/internal/worker"
	"time"
)

func newResumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume <checkpoint-path>",
		Short: "Resume a crawl from a previously saved checkpoint",
		RunE:  runResume,
	}
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "number of concurrent fetch workers (0 uses the default)")
	cmd.Flags().IntVar(&flagMaxPages, "max-pages", 0, "maximum number of page records to produce (0 for unlimited)")
	return cmd
}

func runResume(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return withExitCode(exitUsageError, fmt.Errorf("resume: exactly one checkpoint path is required"))
	}

	state, err := checkpoint.Load(args[0])
	if err != nil {
		return withExitCode(exitInitFailure, err)
	}

	f, err := checkpoint.Restore(state)
	if err != nil {
		return withExitCode(exitInitFailure, err)
	}

	scopeSet := scope.NewSet()
	for _, p := range state.ScopeRules.Includes {
		scopeSet.AddInclude(p)
	}
	for _, p := range state.ScopeRules.Excludes {
		scopeSet.AddExclude(p)
	}

	opts := []config.Opt{config.WithScope(state.ScopeRules.Includes, state.ScopeRules.Excludes)}
	if flagConcurrency > 0 {
		opts = append(opts, config.WithConcurrency(flagConcurrency))
	}
	if flagMaxPages > 0 {
		opts = append(opts, config.WithPageCap(flagMaxPages))
	}
	settings := config.NewFromEnv(opts...)
	logger := log.New(os.Stderr, "resume: ", log.LstdFlags)

	if state.ConfigFingerprint != "" && state.ConfigFingerprint != settings.Fingerprint() {
		logger.Printf("settings fingerprint differs from the checkpoint's (checkpoint=%q running=%q); continuing anyway", state.ConfigFingerprint, settings.Fingerprint())
	}

	store := result.NewStore()
	for _, r := range state.Results {
		store.Append(r)
	}

	limiter := ratelimit.NewLimiter(settings.Concurrency, settings.RateLimit)
	fetchAdapter := fetcher.New(settings.FetchTimeout)
	fpSource := fingerprint.NewSource(time.Now().UnixNano())
	bo := backoff.NewPolicy(500*time.Millisecond, 30*time.Second, settings.MaxRetries)

	poolCfg := worker.Config{
		NumWorkers:     settings.Concurrency,
		MaxDepth:       settings.MaxDepth,
		FetchTimeout:   settings.FetchTimeout,
		DequeueTimeout: settings.DequeueTimeout,
	}
	pool := worker.New(poolCfg, f, limiter, fetchAdapter, scopeSet, fpSource, bo, store, nil, logger, settings.UserAgent)

	orchCfg := orchestrator.Config{
		MaxDepth:   settings.MaxDepth,
		NumWorkers: settings.Concurrency,
		PageCap:    settings.PageCap,
	}
	orch := orchestrator.New(orchCfg, f, scopeSet, pool, store, logger, settings.Fingerprint())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		orch.RequestStop()
	}()

	records, err := orch.Run(ctx, nil)
	if err != nil && err != orchestrator.ErrScopeTooStrict {
		return withExitCode(exitInitFailure, err)
	}
	return writeRecords(flagOutput, records)
}
