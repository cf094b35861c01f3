// Package main wires together the crawl-frontier coordination daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/campussearch/crawler/internal/api"
	"github.com/campussearch/crawler/internal/clock/system"
	"github.com/campussearch/crawler/internal/config"
	"github.com/campussearch/crawler/internal/extract"
	collyfetcher "github.com/campussearch/crawler/internal/fetcher/colly"
	"github.com/campussearch/crawler/internal/fingerprint"
	"github.com/campussearch/crawler/internal/frontier"
	"github.com/campussearch/crawler/internal/id/uuid"
	"github.com/campussearch/crawler/internal/ledger"
	"github.com/campussearch/crawler/internal/logging"
	"github.com/campussearch/crawler/internal/metrics"
	"github.com/campussearch/crawler/internal/ratelimit"
	"github.com/campussearch/crawler/internal/worker"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("crawler failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	owner, err := uuid.New().NewID()
	if err != nil {
		return fmt.Errorf("generate process identity: %w", err)
	}
	logger = logger.With(zap.String("process_id", owner))

	led, err := ledger.Open(ctx, cfg.Ledger, owner, system.New())
	if err != nil {
		return fmt.Errorf("open ledger backend %q: %w", cfg.Ledger.Backend, err)
	}
	defer func() {
		if closeErr := led.Close(); closeErr != nil {
			logger.Warn("ledger close failed", zap.Error(closeErr))
		}
	}()

	// An unreachable ledger at startup is fatal: continuing would silently
	// degrade dedup to this process's own memory.
	pingCtx, cancel := context.WithTimeout(ctx, cfg.Ledger.OpTimeout())
	err = led.Ping(pingCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("ledger backend %q unreachable at startup: %w", cfg.Ledger.Backend, err)
	}
	logger.Info("ledger ready",
		zap.String("backend", cfg.Ledger.Backend),
		zap.Duration("ttl", cfg.Ledger.TTL()))

	extractor, err := extract.New(cfg.Crawl.Seeds[0], cfg.Extract.AllowPatterns, cfg.Extract.DenyPatterns)
	if err != nil {
		return fmt.Errorf("build link extractor: %w", err)
	}

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent:     cfg.Crawl.UserAgent,
		RespectRobots: cfg.Crawl.RespectRobots,
		Timeout:       cfg.Crawl.FetchTimeout(),
	})
	limiter := ratelimit.New(ratelimit.Config{
		DefaultRPS:   cfg.Crawl.PerDomainRPS,
		DefaultBurst: cfg.Crawl.PerDomainBurst,
	})

	front := frontier.New(cfg.Crawl.TraversalDiscipline(), cfg.Crawl.MaxDepth)
	loop := worker.New(
		front,
		fingerprint.New(),
		led,
		fetcher,
		extractor,
		limiter,
		worker.Config{
			Concurrency:      cfg.Crawl.Concurrency,
			MaxPages:         cfg.Crawl.MaxPages,
			FetchTimeout:     cfg.Crawl.FetchTimeout(),
			ClaimTimeout:     cfg.Ledger.OpTimeout(),
			ClaimMaxRetries:  cfg.Ledger.MaxRetries,
			ClaimBackoffBase: cfg.Ledger.BackoffInitial(),
			ClaimBackoffMax:  cfg.Ledger.BackoffMax(),
		},
		logger.Named("worker"),
	)
	loop.Seed(cfg.Crawl.Seeds)
	logger.Info("crawl starting",
		zap.Strings("seeds", cfg.Crawl.Seeds),
		zap.String("discipline", cfg.Crawl.Discipline),
		zap.Int("max_depth", cfg.Crawl.MaxDepth),
		zap.Int("max_pages", cfg.Crawl.MaxPages))

	apiServer := api.New(cfg.Server.Port, led, loop, logger.Named("api"))

	g, gctx := errgroup.WithContext(ctx)
	serverCtx, stopServer := context.WithCancel(gctx)
	defer stopServer()

	g.Go(func() error {
		return apiServer.Run(serverCtx)
	})
	g.Go(func() error {
		// The API server stays up until the crawl finishes so the last
		// counters remain scrapeable during the run, then drains.
		defer stopServer()
		if err := loop.Run(gctx); err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info("crawl interrupted", zap.Any("stats", loop.Snapshot()))
				return nil
			}
			return fmt.Errorf("crawl loop: %w", err)
		}
		logger.Info("frontier exhausted", zap.Any("stats", loop.Snapshot()))
		return nil
	})

	return g.Wait()
}
