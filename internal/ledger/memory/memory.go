// Package memory provides an in-process dedup ledger for single-process
// crawls and tests. State does not survive a restart and is invisible to
// other processes.
package memory

import (
	"context"
	"sync"

	"github.com/campussearch/crawler/internal/crawler"
)

// Ledger implements crawler.Ledger with a mutex-guarded set.
type Ledger struct {
	mu      sync.Mutex
	claimed map[crawler.Fingerprint]struct{}
}

// New returns an empty in-memory ledger.
func New() *Ledger {
	return &Ledger{claimed: make(map[crawler.Fingerprint]struct{})}
}

// TryClaim claims fp if no caller has claimed it before.
func (l *Ledger) TryClaim(_ context.Context, fp crawler.Fingerprint) (crawler.ClaimStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.claimed[fp]; ok {
		return crawler.StatusAlreadyClaimed, nil
	}
	l.claimed[fp] = struct{}{}
	return crawler.StatusClaimed, nil
}

// Size reports the number of claimed fingerprints.
func (l *Ledger) Size(_ context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return int64(len(l.claimed)), nil
}

// Clear drops every claim.
func (l *Ledger) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.claimed = make(map[crawler.Fingerprint]struct{})
	return nil
}

// Ping always succeeds; there is nothing to reach.
func (l *Ledger) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (l *Ledger) Close() error {
	return nil
}
