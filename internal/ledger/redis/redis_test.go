package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campussearch/crawler/internal/crawler"
)

// openTestLedger connects to the server named by CRAWLD_TEST_REDIS_URL and
// skips the test when the variable is unset, so the suite passes without a
// local Redis.
func openTestLedger(t *testing.T, ttl time.Duration) *Ledger {
	t.Helper()
	url := os.Getenv("CRAWLD_TEST_REDIS_URL")
	if url == "" {
		t.Skip("CRAWLD_TEST_REDIS_URL not set; skipping redis ledger tests")
	}

	l, err := Open(Config{
		URL:       url,
		KeyPrefix: fmt.Sprintf("crawld-test:%s:%d", t.Name(), time.Now().UnixNano()),
		TTL:       ttl,
		Owner:     "test-owner",
	})
	require.NoError(t, err)
	require.NoError(t, l.Ping(context.Background()))
	t.Cleanup(func() {
		_ = l.Clear(context.Background())
		_ = l.Close()
	})
	return l
}

func TestTryClaim_ClaimThenDuplicate(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t, 0)

	status, err := l.TryClaim(ctx, "fp-1")
	require.NoError(t, err)
	require.Equal(t, crawler.StatusClaimed, status)

	status, err = l.TryClaim(ctx, "fp-1")
	require.NoError(t, err)
	require.Equal(t, crawler.StatusAlreadyClaimed, status)
}

func TestTTLReleasesClaim(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t, time.Second)

	status, err := l.TryClaim(ctx, "expiring")
	require.NoError(t, err)
	require.Equal(t, crawler.StatusClaimed, status)

	// Unclaimable immediately after the first claim.
	status, err = l.TryClaim(ctx, "expiring")
	require.NoError(t, err)
	require.Equal(t, crawler.StatusAlreadyClaimed, status)

	// Claimable again once the expiry elapses.
	require.Eventually(t, func() bool {
		status, err := l.TryClaim(ctx, "expiring")
		return err == nil && status == crawler.StatusClaimed
	}, 5*time.Second, 100*time.Millisecond)
}

func TestSizeAndClear(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t, 0)

	for _, fp := range []crawler.Fingerprint{"a", "b", "c"} {
		_, err := l.TryClaim(ctx, fp)
		require.NoError(t, err)
	}

	size, err := l.Size(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), size)

	require.NoError(t, l.Clear(ctx))
	size, err = l.Size(ctx)
	require.NoError(t, err)
	require.Zero(t, size)
}

func TestUnreachableServerIsRetryableError(t *testing.T) {
	t.Parallel()
	l, err := Open(Config{URL: "redis://127.0.0.1:1/0"})
	require.NoError(t, err)
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = l.TryClaim(ctx, "unreachable")
	require.Error(t, err)
	require.ErrorIs(t, err, crawler.ErrLedgerUnavailable)
}

func TestOpenRejectsBadURL(t *testing.T) {
	t.Parallel()
	_, err := Open(Config{URL: "not-a-redis-url"})
	require.Error(t, err)
}
