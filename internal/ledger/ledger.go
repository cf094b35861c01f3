// Package ledger selects and opens the configured dedup ledger backend.
// The choice is made once at startup and fixed for the process's lifetime.
package ledger

import (
	"context"
	"fmt"

	"github.com/campussearch/crawler/internal/config"
	"github.com/campussearch/crawler/internal/crawler"
	fileledger "github.com/campussearch/crawler/internal/ledger/file"
	memoryledger "github.com/campussearch/crawler/internal/ledger/memory"
	redisledger "github.com/campussearch/crawler/internal/ledger/redis"
	sqliteledger "github.com/campussearch/crawler/internal/ledger/sqlite"
)

// Open builds the backend named by cfg. The owner string identifies this
// process in durable claim records.
func Open(ctx context.Context, cfg config.LedgerConfig, owner string, clock crawler.Clock) (crawler.Ledger, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memoryledger.New(), nil
	case config.BackendFile:
		l, err := fileledger.Open(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("open file ledger: %w", err)
		}
		return l, nil
	case config.BackendSQLite:
		l, err := sqliteledger.Open(ctx, cfg.SQLitePath, owner, clock)
		if err != nil {
			return nil, fmt.Errorf("open sqlite ledger: %w", err)
		}
		return l, nil
	case config.BackendRedis:
		l, err := redisledger.Open(redisledger.Config{
			URL:       cfg.RedisURL,
			KeyPrefix: cfg.RedisKeyPrefix,
			TTL:       cfg.TTL(),
			Owner:     owner,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis ledger: %w", err)
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}
