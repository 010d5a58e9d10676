package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/duskcrawl/webcrawler/internal/backoff"
	"github.com/duskcrawl/webcrawler/internal/checkpoint"
	"github.com/duskcrawl/webcrawler/internal/config"
	"github.com/duskcrawl/webcrawler/internal/fetcher"
	"github.com/duskcrawl/webcrawler/internal/fingerprint"
	"github.com/duskcrawl/webcrawler/internal/frontier"
	"github.com/duskcrawl/webcrawler/internal/messaging"
	"github.com/duskcrawl/webcrawler/internal/orchestrator"
	"github.com/duskcrawl/webcrawler/internal/ratelimit"
	"github.com/duskcrawl/webcrawler/internal/result"
	"github.com/duskcrawl/webcrawler/internal/scope"
	"github.com/duskcrawl/webcrawler/internal/sharedstore"
	"github.com/duskcrawl/webcrawler/internal/urlcanon"
	"github.com/duskcrawl/webcrawler/internal/worker"
)

var (
	flagMaxPages        int
	flagConcurrency     int
	flagInScope         []string
	flagOutScope        []string
	flagRateLimit       float64
	flagTimeout         time.Duration
	flagRetries         int
	flagOutput          string
	flagFlushEvery      int
	flagCheckpointPath  string
	flagCheckpointEvery time.Duration
	flagSharedStoreURL  string
)

func newCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <seeds...>",
		Short: "Start a crawl from one or more seed URLs",
		RunE:  runCrawl,
	}
	cmd.Flags().IntVar(&flagMaxPages, "max-pages", 0, "maximum number of page records to produce (0 for unlimited)")
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "number of concurrent fetch workers (0 uses the default)")
	cmd.Flags().StringArrayVar(&flagInScope, "in-scope", nil, "hostname include pattern, may repeat (supports *.base and **.base)")
	cmd.Flags().StringArrayVar(&flagOutScope, "out-scope", nil, "hostname exclude pattern, may repeat")
	cmd.Flags().Float64Var(&flagRateLimit, "rate-limit", 0, "global requests-per-second ceiling (0 uses the default)")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "per-fetch deadline (0 uses the default)")
	cmd.Flags().IntVar(&flagRetries, "retries", 0, "max retries per work item before recording a permanent failure (0 uses the default)")
	cmd.Flags().StringVar(&flagOutput, "output", "", "path to write the final JSON page records to (stdout if empty)")
	cmd.Flags().IntVar(&flagFlushEvery, "flush-every", 0, "unused placeholder for streaming export cadence, reserved for exporters")
	cmd.Flags().StringVar(&flagCheckpointPath, "checkpoint", "", "path to periodically write a resumable checkpoint to")
	cmd.Flags().DurationVar(&flagCheckpointEvery, "checkpoint-every", 0, "checkpoint interval (0 disables periodic checkpointing)")
	cmd.Flags().StringVar(&flagSharedStoreURL, "shared-store-url", "", "distributed mode: address of a shared visited-set broker ('memory' for an in-process stand-in, or host:port for a RESP-speaking broker). Local mode if empty")
	return cmd
}

func runCrawl(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return withExitCode(exitUsageError, fmt.Errorf("crawl: at least one seed URL is required"))
	}

	opts := []config.Opt{config.WithScope(flagInScope, flagOutScope)}
	if flagConcurrency > 0 {
		opts = append(opts, config.WithConcurrency(flagConcurrency))
	}
	if flagRateLimit > 0 {
		opts = append(opts, config.WithRateLimit(flagRateLimit))
	}
	if flagTimeout > 0 {
		opts = append(opts, config.WithFetchTimeout(flagTimeout))
	}
	if flagRetries > 0 {
		opts = append(opts, config.WithMaxRetries(flagRetries))
	}
	if flagMaxPages > 0 {
		opts = append(opts, config.WithPageCap(flagMaxPages))
	}
	if flagCheckpointPath != "" {
		opts = append(opts, config.WithCheckpoint(flagCheckpointPath, flagCheckpointEvery))
	}
	if flagSharedStoreURL != "" {
		opts = append(opts, config.WithSharedStore(flagSharedStoreURL))
	}
	settings := config.NewFromEnv(opts...)

	scopeSet := scope.NewSet()
	for _, p := range settings.IncludePatterns {
		scopeSet.AddInclude(p)
	}
	for _, p := range settings.ExcludePatterns {
		scopeSet.AddExclude(p)
	}

	logger := log.New(os.Stderr, "crawl: ", log.LstdFlags)

	f := newFrontier(settings.SharedStoreAddr, logger)
	store := result.NewStore()
	limiter := ratelimit.NewLimiter(settings.Concurrency, settings.RateLimit)
	fetchAdapter := fetcher.New(settings.FetchTimeout)
	fpSource := fingerprint.NewSource(time.Now().UnixNano())
	bo := backoff.NewPolicy(500*time.Millisecond, 30*time.Second, settings.MaxRetries)

	notifyQueue := messaging.NewChannelQueue(settings.Concurrency * 4)
	notify := messaging.NewNotifySink(notifyQueue, log.New(os.Stderr, "notify: ", log.LstdFlags))
	go drainNotifications(notifyQueue, logger)

	poolCfg := worker.Config{
		NumWorkers:     settings.Concurrency,
		MaxDepth:       settings.MaxDepth,
		FetchTimeout:   settings.FetchTimeout,
		DequeueTimeout: settings.DequeueTimeout,
	}
	pool := worker.New(poolCfg, f, limiter, fetchAdapter, scopeSet, fpSource, bo, store, &notify, log.New(os.Stderr, "worker: ", log.LstdFlags), settings.UserAgent)

	orchCfg := orchestrator.Config{
		MaxDepth:        settings.MaxDepth,
		NumWorkers:      settings.Concurrency,
		PageCap:         settings.PageCap,
		CheckpointPath:  settings.CheckpointPath,
		CheckpointEvery: settings.CheckpointEvery,
	}
	orch := orchestrator.New(orchCfg, f, scopeSet, pool, store, logger, settings.Fingerprint())

	for _, seedHost := range distinctHosts(args) {
		go limiter.SeedFromRobots(nil, "https", seedHost, settings.UserAgent)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Println("stop requested, draining in-flight work")
		orch.RequestStop()
	}()

	records, err := orch.Run(ctx, args)
	if err == orchestrator.ErrScopeTooStrict {
		return withExitCode(exitScopeTooStrict, err)
	}
	if err != nil {
		return withExitCode(exitInitFailure, err)
	}

	if settings.CheckpointPath != "" {
		if err := checkpoint.Save(settings.CheckpointPath, orch.Snapshot()); err != nil {
			logger.Printf("final checkpoint save failed: %v", err)
		}
	}

	return writeRecords(flagOutput, records)
}

// newFrontier builds a local-mode Frontier, unless sharedStoreAddr names
// a distributed-mode broker, in which case the Frontier's Visited Set is
// backed by package sharedstore instead of an in-process map so that
// multiple crawler processes pointed at the same broker never both
// claim the same URL. "memory" selects an in-process stand-in adapter,
// useful for exercising distributed mode without a real broker; any
// other value is dialed as a RESP-speaking host:port.
func newFrontier(sharedStoreAddr string, logger *log.Logger) *frontier.Frontier {
	if sharedStoreAddr == "" {
		return frontier.NewFrontier()
	}
	var adapter sharedstore.Adapter
	if sharedStoreAddr == "memory" {
		adapter = sharedstore.NewMemory()
	} else {
		adapter = sharedstore.NewRESP(sharedStoreAddr)
	}
	visited := sharedstore.NewVisitedSet(adapter, "visited", logger)
	return frontier.NewFrontierWithVisitedSet(visited)
}

// distinctHosts extracts the unique hostnames among a set of seed URLs,
// used to seed the rate limiter's robots.txt crawl-delay lookups once per
// host rather than once per seed.
func distinctHosts(seeds []string) []string {
	seen := make(map[string]struct{}, len(seeds))
	var hosts []string
	for _, raw := range seeds {
		canon, err := urlcanon.Normalize(raw)
		if err != nil {
			continue
		}
		host := urlcanon.Hostname(canon)
		if _, ok := seen[host]; ok || host == "" {
			continue
		}
		seen[host] = struct{}{}
		hosts = append(hosts, host)
	}
	return hosts
}

// drainNotifications consumes the crawl's fire-and-forget page-completed
// events and logs each one. A real deployment would hand queue off to a
// broker-backed ProducerConsumer instead of logging it directly.
func drainNotifications(queue messaging.ChannelQueue, logger *log.Logger) {
	events := make(chan []byte)
	go func() {
		for url := range events {
			logger.Printf("page completed: %s", url)
		}
	}()
	queue.Consume(events)
}

func writeRecords(path string, records []result.PageRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return withExitCode(exitInitFailure, err)
	}
	if path == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
