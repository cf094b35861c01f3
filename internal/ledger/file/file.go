// Package file provides a dedup ledger backed by a newline-delimited,
// append-only file of fingerprints.
//
// Cross-process claims are best-effort by design: each process loads the
// file once at open and appends on claim, so two processes can both read
// "not present" before either append lands. That race window is a known,
// accepted trade-off for low-contention local runs; it is deliberately not
// upgraded to a stronger guarantee here. Use the sqlite or redis backend
// when the race matters.
package file

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/campussearch/crawler/internal/crawler"
)

// Ledger implements crawler.Ledger over an append-only fingerprint file.
// Claims within one process are serialized by a mutex; the file makes them
// visible to later runs and, best-effort, to concurrent processes sharing
// the filesystem.
type Ledger struct {
	mu   sync.Mutex
	path string
	out  *os.File
	seen map[crawler.Fingerprint]struct{}
}

// Open loads any prior claims from path and opens it for appending, creating
// it (and parent directories) when absent.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}

	seen := make(map[crawler.Fingerprint]struct{})
	if existing, err := os.Open(path); err == nil {
		scanner := bufio.NewScanner(existing)
		for scanner.Scan() {
			fp := strings.TrimSpace(scanner.Text())
			if fp != "" {
				seen[crawler.Fingerprint(fp)] = struct{}{}
			}
		}
		closeErr := existing.Close()
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read ledger file: %w", err)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("close ledger file: %w", closeErr)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open ledger file: %w", err)
	}

	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open ledger file for append: %w", err)
	}

	return &Ledger{path: path, out: out, seen: seen}, nil
}

// TryClaim claims fp against the set loaded at open plus this process's own
// appends. The append is flushed immediately for cross-process visibility.
func (l *Ledger) TryClaim(_ context.Context, fp crawler.Fingerprint) (crawler.ClaimStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seen[fp]; ok {
		return crawler.StatusAlreadyClaimed, nil
	}
	if _, err := fmt.Fprintln(l.out, string(fp)); err != nil {
		return crawler.StatusAlreadyClaimed, fmt.Errorf("%w: append fingerprint: %v", crawler.ErrLedgerUnavailable, err)
	}
	l.seen[fp] = struct{}{}
	return crawler.StatusClaimed, nil
}

// Size reports the number of fingerprints known to this process.
func (l *Ledger) Size(_ context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return int64(len(l.seen)), nil
}

// Clear truncates the file and resets the in-memory set.
func (l *Ledger) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.out.Truncate(0); err != nil {
		return fmt.Errorf("truncate ledger file: %w", err)
	}
	l.seen = make(map[crawler.Fingerprint]struct{})
	return nil
}

// Ping verifies the backing file is still writable.
func (l *Ledger) Ping(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := os.Stat(l.path); err != nil {
		return fmt.Errorf("%w: stat ledger file: %v", crawler.ErrLedgerUnavailable, err)
	}
	return nil
}

// Close flushes and closes the backing file.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.out.Close(); err != nil {
		return fmt.Errorf("close ledger file: %w", err)
	}
	return nil
}
