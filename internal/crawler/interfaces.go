package crawler

import (
	"context"
	"time"
)

// Ledger is the shared dedup store consulted by every crawl loop before a
// fetch. TryClaim is the sole synchronization primitive between processes:
// it must be a single atomic operation on the backend, never a read followed
// by a separate write.
type Ledger interface {
	// TryClaim atomically claims the fingerprint. Exactly one concurrent
	// caller receives StatusClaimed; all others receive
	// StatusAlreadyClaimed. Infrastructure failures are returned as errors
	// wrapping ErrLedgerUnavailable, never as StatusAlreadyClaimed.
	TryClaim(ctx context.Context, fp Fingerprint) (ClaimStatus, error)

	// Size reports the approximate number of claimed fingerprints. It is
	// for monitoring only and need not be exact during concurrent writes.
	Size(ctx context.Context) (int64, error)

	// Clear removes all claims. Administrative use only.
	Clear(ctx context.Context) error

	// Ping verifies the backend is reachable. Called once at startup; a
	// failure there is fatal for the process.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Fingerprinter canonicalizes a raw URL into a Fingerprint. Implementations
// must be pure: the same URL always yields the same fingerprint.
type Fingerprinter interface {
	Fingerprint(rawURL string) (Fingerprint, error)
}

// Fetcher fetches a single URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// LinkExtractor returns the admissible outbound URLs found in a fetched
// page. Admission filtering (host restriction, allow/deny patterns) happens
// here, before candidates reach the frontier.
type LinkExtractor interface {
	Extract(pageURL string, contentType string, body []byte) []string
}

// Clock returns the current time (swap-able for tests).
type Clock interface {
	Now() time.Time
}
