package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campussearch/crawler/internal/crawler"
)

func TestTryClaim_ClaimThenDuplicate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, err := Open(filepath.Join(t.TempDir(), "seen.txt"))
	require.NoError(t, err)
	defer l.Close()

	status, err := l.TryClaim(ctx, "fp-1")
	require.NoError(t, err)
	require.Equal(t, crawler.StatusClaimed, status)

	status, err = l.TryClaim(ctx, "fp-1")
	require.NoError(t, err)
	require.Equal(t, crawler.StatusAlreadyClaimed, status)
}

func TestClaimsSurviveRestart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seen.txt")

	l, err := Open(path)
	require.NoError(t, err)
	for _, fp := range []crawler.Fingerprint{"a", "b"} {
		status, err := l.TryClaim(ctx, fp)
		require.NoError(t, err)
		require.Equal(t, crawler.StatusClaimed, status)
	}
	require.NoError(t, l.Close())

	// Replaying the same fingerprints against a fresh open yields only
	// duplicates: zero new fetches after a restart.
	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	for _, fp := range []crawler.Fingerprint{"a", "b"} {
		status, err := reopened.TryClaim(ctx, fp)
		require.NoError(t, err)
		require.Equal(t, crawler.StatusAlreadyClaimed, status)
	}

	status, err := reopened.TryClaim(ctx, "c")
	require.NoError(t, err)
	require.Equal(t, crawler.StatusClaimed, status)
}

func TestFileFormatIsNewlineDelimited(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seen.txt")

	l, err := Open(path)
	require.NoError(t, err)
	_, err = l.TryClaim(ctx, "first")
	require.NoError(t, err)
	_, err = l.TryClaim(ctx, "second")
	require.NoError(t, err)
	require.NoError(t, l.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, strings.Fields(string(raw)))
}

func TestSizeAndClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, err := Open(filepath.Join(t.TempDir(), "seen.txt"))
	require.NoError(t, err)
	defer l.Close()

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

	status, err := l.TryClaim(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, crawler.StatusClaimed, status)
}

func TestOpenCreatesParentDirs(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "dir", "seen.txt")

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Ping(context.Background()))
	require.NoError(t, l.Close())
}
