package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campussearch/crawler/internal/crawler"
	"github.com/campussearch/crawler/internal/ledger/memory"
	"github.com/campussearch/crawler/internal/worker"
)

// downLedger simulates an unreachable backend.
type downLedger struct{}

func (downLedger) TryClaim(context.Context, crawler.Fingerprint) (crawler.ClaimStatus, error) {
	return crawler.StatusAlreadyClaimed, crawler.ErrLedgerUnavailable
}
func (downLedger) Size(context.Context) (int64, error) { return 0, crawler.ErrLedgerUnavailable }
func (downLedger) Clear(context.Context) error         { return crawler.ErrLedgerUnavailable }
func (downLedger) Ping(context.Context) error          { return crawler.ErrLedgerUnavailable }
func (downLedger) Close() error                        { return nil }

type fixedStats struct {
	snap worker.Snapshot
}

func (f fixedStats) Snapshot() worker.Snapshot { return f.snap }

func newTestServer(t *testing.T, stats StatsSource) http.Handler {
	t.Helper()
	return New(0, memory.New(), stats, nil).Handler()
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, fixedStats{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzWithLiveLedger(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, fixedStats{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzWithUnreachableLedger(t *testing.T) {
	t.Parallel()

	h := New(0, downLedger{}, fixedStats{}, nil).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatusReportsCounters(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, fixedStats{snap: worker.Snapshot{
		Claimed:    7,
		Duplicates: 3,
		Completed:  6,
		Failed:     1,
		Frontier:   12,
	}})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Claimed    int64 `json:"claimed"`
		Duplicates int64 `json:"duplicates"`
		Completed  int64 `json:"completed"`
		Failed     int64 `json:"failed"`
		Frontier   int   `json:"frontier"`
		LedgerSize int64 `json:"ledger_size"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, int64(7), body.Claimed)
	require.Equal(t, int64(3), body.Duplicates)
	require.Equal(t, int64(6), body.Completed)
	require.Equal(t, int64(1), body.Failed)
	require.Equal(t, 12, body.Frontier)
	require.Equal(t, int64(0), body.LedgerSize)
}
