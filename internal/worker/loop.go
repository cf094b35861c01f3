// Package worker implements the crawl loop: it pops candidates from the
// frontier, claims their fingerprints in the shared dedup ledger, fans
// fetches out to a bounded pool, and re-admits discovered links.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campussearch/crawler/internal/crawler"
	"github.com/campussearch/crawler/internal/frontier"
	"github.com/campussearch/crawler/internal/metrics"
)

// Config controls Loop behavior.
type Config struct {
	// Concurrency bounds the number of in-flight fetches.
	Concurrency int
	// MaxPages stops the loop after this many successful claims
	// (0 = unbounded).
	MaxPages int
	// FetchTimeout bounds each fetch call.
	FetchTimeout time.Duration
	// ClaimTimeout bounds each individual ledger call.
	ClaimTimeout time.Duration
	// ClaimMaxRetries is the number of extra attempts after a retryable
	// ledger failure; once exhausted the request is dropped and the loop
	// continues.
	ClaimMaxRetries  int
	ClaimBackoffBase time.Duration
	ClaimBackoffMax  time.Duration
}

// Limiter is the per-domain politeness gate applied before each fetch.
type Limiter interface {
	Wait(ctx context.Context, url string) error
}

// Loop owns one frontier and drives it against the shared ledger. Frontier
// access and claim attempts are serialized on the coordinator goroutine;
// only fetches run concurrently.
type Loop struct {
	frontier      *frontier.Frontier
	fingerprinter crawler.Fingerprinter
	ledger        crawler.Ledger
	fetcher       crawler.Fetcher
	extractor     crawler.LinkExtractor
	limiter       Limiter
	cfg           Config
	logger        *zap.Logger
	stats         stats
}

// New constructs a Loop. The extractor and limiter may be nil, in which
// case fetched pages yield no new candidates and fetches are not paced.
func New(
	front *frontier.Frontier,
	fingerprinter crawler.Fingerprinter,
	ledger crawler.Ledger,
	fetcher crawler.Fetcher,
	extractor crawler.LinkExtractor,
	limiter Limiter,
	cfg Config,
	logger *zap.Logger,
) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	if cfg.ClaimTimeout == 0 {
		cfg.ClaimTimeout = 5 * time.Second
	}
	if cfg.ClaimBackoffBase == 0 {
		cfg.ClaimBackoffBase = 250 * time.Millisecond
	}
	if cfg.ClaimBackoffMax == 0 {
		cfg.ClaimBackoffMax = 5 * time.Second
	}
	return &Loop{
		frontier:      front,
		fingerprinter: fingerprinter,
		ledger:        ledger,
		fetcher:       fetcher,
		extractor:     extractor,
		limiter:       limiter,
		cfg:           cfg,
		logger:        logger,
	}
}

// Seed admits the start URLs at depth 0.
func (l *Loop) Seed(urls []string) {
	for _, u := range urls {
		l.frontier.Push(crawler.FrontierEntry{URL: u, Depth: 0})
	}
}

type fetchResult struct {
	entry      crawler.FrontierEntry
	candidates []string
	err        error
}

// Run drives the crawl until the frontier empties with no fetch in flight,
// the page budget is spent, or the context is canceled. On cancellation the
// in-flight fetches are drained; their claims are never rolled back, so an
// abandoned page stays "visited".
func (l *Loop) Run(ctx context.Context) error {
	results := make(chan fetchResult)
	sem := make(chan struct{}, l.cfg.Concurrency)
	inflight := 0

	defer l.stats.done.Store(true)

	for {
		metrics.SetFrontierEntries(l.frontier.Len())

		if ctx.Err() != nil {
			l.drain(results, inflight)
			return ctx.Err()
		}

		if l.budgetSpent() {
			if inflight == 0 {
				l.logger.Info("page budget reached", zap.Int64("claimed", l.stats.claimed.Load()))
				return nil
			}
			inflight = l.awaitResult(ctx, results, inflight)
			continue
		}

		entry, ok := l.frontier.Pop()
		if !ok {
			if inflight == 0 {
				// Frontier exhausted with nothing outstanding.
				return nil
			}
			inflight = l.awaitResult(ctx, results, inflight)
			continue
		}

		fp, err := l.fingerprinter.Fingerprint(entry.URL)
		if err != nil {
			l.stats.invalid.Add(1)
			metrics.IncInvalidURL()
			l.logger.Debug("dropping malformed candidate", zap.String("url", entry.URL), zap.Error(err))
			continue
		}

		status, err := l.tryClaim(ctx, fp)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			l.stats.dropped.Add(1)
			metrics.IncClaim("error")
			metrics.IncLedgerError()
			l.logger.Warn("dropping request after ledger failure",
				zap.String("url", entry.URL), zap.Error(err))
			continue
		}
		if status == crawler.StatusAlreadyClaimed {
			// Expected, silent, terminal: another process or an earlier
			// pass owns this fingerprint.
			l.stats.duplicates.Add(1)
			metrics.IncClaim("already_claimed")
			continue
		}

		l.stats.claimed.Add(1)
		metrics.IncClaim("claimed")

		if !l.acquireSlot(ctx, sem, results, &inflight) {
			continue
		}
		inflight++
		go func(e crawler.FrontierEntry) {
			defer func() { <-sem }()
			results <- l.fetch(ctx, e)
		}(entry)
	}
}

// awaitResult blocks for one fetch result (or cancellation) and returns the
// updated in-flight count.
func (l *Loop) awaitResult(ctx context.Context, results chan fetchResult, inflight int) int {
	select {
	case res := <-results:
		l.handleResult(res)
		return inflight - 1
	case <-ctx.Done():
		return inflight
	}
}

// acquireSlot reserves a fetch slot, consuming results while the pool is
// full. It reports false when the context ended first.
func (l *Loop) acquireSlot(ctx context.Context, sem chan struct{}, results chan fetchResult, inflight *int) bool {
	for {
		select {
		case sem <- struct{}{}:
			return true
		case res := <-results:
			l.handleResult(res)
			*inflight--
		case <-ctx.Done():
			return false
		}
	}
}

func (l *Loop) drain(results chan fetchResult, inflight int) {
	for i := 0; i < inflight; i++ {
		l.handleResult(<-results)
	}
}

func (l *Loop) budgetSpent() bool {
	return l.cfg.MaxPages > 0 && l.stats.claimed.Load() >= int64(l.cfg.MaxPages)
}

// tryClaim calls the ledger with a per-call timeout and bounded, backed-off
// retries. AlreadyClaimed is a normal outcome, not an error; only
// infrastructure failures are retried.
func (l *Loop) tryClaim(ctx context.Context, fp crawler.Fingerprint) (crawler.ClaimStatus, error) {
	backoff := l.cfg.ClaimBackoffBase
	var lastErr error

	for attempt := 0; attempt <= l.cfg.ClaimMaxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return crawler.StatusAlreadyClaimed, ctx.Err()
			case <-timer.C:
			}
			backoff *= 2
			if backoff > l.cfg.ClaimBackoffMax {
				backoff = l.cfg.ClaimBackoffMax
			}
		}

		claimCtx, cancel := context.WithTimeout(ctx, l.cfg.ClaimTimeout)
		status, err := l.ledger.TryClaim(claimCtx, fp)
		cancel()
		if err == nil {
			return status, nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) {
			break
		}
		l.logger.Debug("ledger claim attempt failed",
			zap.Int("attempt", attempt+1), zap.Error(err))
	}

	return crawler.StatusAlreadyClaimed,
		fmt.Errorf("claim failed after %d attempts: %w", l.cfg.ClaimMaxRetries+1, lastErr)
}

func (l *Loop) fetch(ctx context.Context, entry crawler.FrontierEntry) fetchResult {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx, entry.URL); err != nil {
			return fetchResult{entry: entry, err: err}
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, l.cfg.FetchTimeout)
	defer cancel()

	resp, err := l.fetcher.Fetch(fetchCtx, crawler.FetchRequest{
		URL:     entry.URL,
		Depth:   entry.Depth,
		Timeout: l.cfg.FetchTimeout,
	})
	if err != nil {
		return fetchResult{entry: entry, err: err}
	}
	metrics.ObserveFetchDuration(resp.Duration)

	var candidates []string
	if l.extractor != nil {
		candidates = l.extractor.Extract(resp.URL, resp.ContentType, resp.Body)
	}
	return fetchResult{entry: entry, candidates: candidates}
}

// handleResult records a fetch outcome and re-admits discovered links at
// depth+1. A failed fetch never rolls back its claim: a known-bad URL must
// not be retried from other queue paths.
func (l *Loop) handleResult(res fetchResult) {
	if res.err != nil {
		l.stats.failed.Add(1)
		metrics.IncPage("fetch_failed")
		l.logger.Warn("fetch failed",
			zap.String("url", res.entry.URL),
			zap.Int("depth", res.entry.Depth),
			zap.Error(res.err))
		return
	}

	l.stats.completed.Add(1)
	metrics.IncPage("completed")
	l.logger.Debug("page completed",
		zap.String("url", res.entry.URL),
		zap.Int("depth", res.entry.Depth),
		zap.Int("links", len(res.candidates)))

	for _, u := range res.candidates {
		l.frontier.Push(crawler.FrontierEntry{URL: u, Depth: res.entry.Depth + 1})
	}
}
