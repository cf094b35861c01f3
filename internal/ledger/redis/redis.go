// Package redis provides the networked dedup ledger. It is the only backend
// that coordinates crawler processes across machines.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campussearch/crawler/internal/crawler"
)

// Config controls the Redis ledger.
type Config struct {
	// URL is a redis connection string, e.g. redis://localhost:6379/0.
	URL string
	// KeyPrefix namespaces the claim keys; the full key is
	// "<prefix>:<fingerprint>".
	KeyPrefix string
	// TTL releases a claim after the given duration, allowing periodic
	// re-crawls. Zero means claims are permanent. Expiry is native to
	// Redis; nothing here polls for it.
	TTL time.Duration
	// Owner is stored as the key's value, identifying the claiming
	// process.
	Owner string
}

// Ledger implements crawler.Ledger on a Redis server.
type Ledger struct {
	client *redis.Client
	cfg    Config
}

// Open parses the connection URL and builds the client. It does not dial;
// call Ping to verify reachability before crawling.
func Open(cfg Config) (*Ledger, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "crawler:dedup"
	}
	if cfg.Owner == "" {
		cfg.Owner = "1"
	}
	return &Ledger{client: redis.NewClient(opts), cfg: cfg}, nil
}

func (l *Ledger) key(fp crawler.Fingerprint) string {
	return l.cfg.KeyPrefix + ":" + string(fp)
}

// TryClaim performs a single atomic set-if-not-exists with the configured
// expiry. Connection failures surface as retryable errors, never as
// StatusAlreadyClaimed.
func (l *Ledger) TryClaim(ctx context.Context, fp crawler.Fingerprint) (crawler.ClaimStatus, error) {
	set, err := l.client.SetNX(ctx, l.key(fp), l.cfg.Owner, l.cfg.TTL).Result()
	if err != nil {
		return crawler.StatusAlreadyClaimed, fmt.Errorf("%w: setnx: %v", crawler.ErrLedgerUnavailable, err)
	}
	if set {
		return crawler.StatusClaimed, nil
	}
	return crawler.StatusAlreadyClaimed, nil
}

// Size counts keys under the prefix by scanning. Approximate by nature:
// concurrent claims and expiries move the number while the scan runs.
func (l *Ledger) Size(ctx context.Context) (int64, error) {
	var count int64
	iter := l.client.Scan(ctx, 0, l.cfg.KeyPrefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("%w: scan claims: %v", crawler.ErrLedgerUnavailable, err)
	}
	return count, nil
}

// Clear deletes every key under the prefix.
func (l *Ledger) Clear(ctx context.Context) error {
	iter := l.client.Scan(ctx, 0, l.cfg.KeyPrefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		if err := l.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("%w: delete claim: %v", crawler.ErrLedgerUnavailable, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: scan claims: %v", crawler.ErrLedgerUnavailable, err)
	}
	return nil
}

// Ping checks the server is reachable.
func (l *Ledger) Ping(ctx context.Context) error {
	if err := l.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping redis: %v", crawler.ErrLedgerUnavailable, err)
	}
	return nil
}

// Close closes the client.
func (l *Ledger) Close() error {
	if err := l.client.Close(); err != nil {
		return fmt.Errorf("close redis client: %w", err)
	}
	return nil
}
