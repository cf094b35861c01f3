package crawler

import (
	"net/http"
	"time"
)

// Fingerprint is the fixed-size identifier for a normalized URL. It is the
// hex-encoded hash of the normalized form, never the normalized string
// itself, so ledger entries stay constant-size.
type Fingerprint string

// ClaimStatus is the outcome of a ledger claim attempt.
type ClaimStatus int

// Claim outcomes. Exactly one caller across all concurrent callers receives
// StatusClaimed for a given fingerprint.
const (
	StatusClaimed ClaimStatus = iota
	StatusAlreadyClaimed
)

// String returns the lowercase name of the status.
func (s ClaimStatus) String() string {
	switch s {
	case StatusClaimed:
		return "claimed"
	case StatusAlreadyClaimed:
		return "already_claimed"
	default:
		return "unknown"
	}
}

// Discipline selects the frontier traversal order for a process. It is fixed
// for the process's lifetime.
type Discipline string

// Supported traversal disciplines.
const (
	DisciplineBreadth Discipline = "breadth"
	DisciplineDepth   Discipline = "depth"
)

// FrontierEntry is a pending crawl request: the target URL and its discovery
// depth (hop count from a seed). Entries are not deduplicated at insertion;
// the ledger is the sole dedup gate at claim time.
type FrontierEntry struct {
	URL   string
	Depth int
}

// FetchRequest carries everything a Fetcher needs for one page.
type FetchRequest struct {
	URL     string
	Depth   int
	Timeout time.Duration
}

// FetchResponse is the result of a successful fetch.
type FetchResponse struct {
	URL         string
	StatusCode  int
	ContentType string
	Headers     http.Header
	Body        []byte
	Duration    time.Duration
}

// LedgerRecord is the metadata a durable backend keeps per claimed
// fingerprint. The memory and file backends store only the fingerprint.
type LedgerRecord struct {
	Fingerprint Fingerprint
	ClaimedAt   time.Time
	Owner       string
}
