// Package sqlite provides a dedup ledger on an embedded SQLite database in
// WAL mode. Concurrent writers, in this process or in other processes
// sharing the file, are serialized by the database; readers never block
// writers. A corrupt database file surfaces as an open/ping error and is
// fatal for the process; recovery is to delete the file and accept the
// re-fetch cost.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/campussearch/crawler/internal/crawler"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS claims (
	fingerprint TEXT PRIMARY KEY,
	claimed_at  TEXT NOT NULL,
	owner       TEXT NOT NULL
);`

// Ledger implements crawler.Ledger on an embedded SQLite file.
type Ledger struct {
	db    *sql.DB
	owner string
	clock crawler.Clock
}

// Open opens (or creates) the database at path and prepares the claims
// table. The owner identity is recorded with every claim this process wins.
func Open(ctx context.Context, path string, owner string, clock crawler.Clock) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite ledger: %w", err)
	}
	// A single connection keeps this process's writes serialized; cross
	// process serialization is the database's own file locking.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=30000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create claims table: %w", err)
	}

	return &Ledger{db: db, owner: owner, clock: clock}, nil
}

// TryClaim inserts the fingerprint if absent. The insert-if-absent runs as
// one statement inside the database's own transaction, so exactly one caller
// across all processes sharing the file wins.
func (l *Ledger) TryClaim(ctx context.Context, fp crawler.Fingerprint) (crawler.ClaimStatus, error) {
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO claims (fingerprint, claimed_at, owner) VALUES (?, ?, ?)
		 ON CONFLICT (fingerprint) DO NOTHING`,
		string(fp), l.clock.Now().Format(timeLayout), l.owner,
	)
	if err != nil {
		return crawler.StatusAlreadyClaimed, fmt.Errorf("%w: insert claim: %v", crawler.ErrLedgerUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return crawler.StatusAlreadyClaimed, fmt.Errorf("%w: rows affected: %v", crawler.ErrLedgerUnavailable, err)
	}
	if affected == 0 {
		return crawler.StatusAlreadyClaimed, nil
	}
	return crawler.StatusClaimed, nil
}

// Size counts the claimed fingerprints.
func (l *Ledger) Size(ctx context.Context) (int64, error) {
	var count int64
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM claims`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count claims: %v", crawler.ErrLedgerUnavailable, err)
	}
	return count, nil
}

// Clear deletes every claim.
func (l *Ledger) Clear(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM claims`); err != nil {
		return fmt.Errorf("%w: clear claims: %v", crawler.ErrLedgerUnavailable, err)
	}
	return nil
}

// Ping runs a trivial query to confirm the database file is usable.
func (l *Ledger) Ping(ctx context.Context) error {
	var one int
	if err := l.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("%w: ping sqlite ledger: %v", crawler.ErrLedgerUnavailable, err)
	}
	return nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	if err := l.db.Close(); err != nil {
		return fmt.Errorf("close sqlite ledger: %w", err)
	}
	return nil
}

// Record returns the stored claim record for fp, if present. Used by
// operational tooling and tests.
func (l *Ledger) Record(ctx context.Context, fp crawler.Fingerprint) (crawler.LedgerRecord, bool, error) {
	var claimedAt, owner string
	err := l.db.QueryRowContext(ctx,
		`SELECT claimed_at, owner FROM claims WHERE fingerprint = ?`, string(fp),
	).Scan(&claimedAt, &owner)
	if err == sql.ErrNoRows {
		return crawler.LedgerRecord{}, false, nil
	}
	if err != nil {
		return crawler.LedgerRecord{}, false, fmt.Errorf("%w: read claim: %v", crawler.ErrLedgerUnavailable, err)
	}
	rec := crawler.LedgerRecord{Fingerprint: fp, Owner: owner}
	if ts, parseErr := time.Parse(timeLayout, claimedAt); parseErr == nil {
		rec.ClaimedAt = ts
	}
	return rec, true, nil
}
