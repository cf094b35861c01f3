package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campussearch/crawler/internal/crawler"
)

func TestTryClaim_FirstWinsSecondLoses(t *testing.T) {
	t.Parallel()
	l := New()
	ctx := context.Background()

	status, err := l.TryClaim(ctx, "fp-1")
	require.NoError(t, err)
	require.Equal(t, crawler.StatusClaimed, status)

	status, err = l.TryClaim(ctx, "fp-1")
	require.NoError(t, err)
	require.Equal(t, crawler.StatusAlreadyClaimed, status)
}

func TestTryClaim_AtMostOneWinnerUnderContention(t *testing.T) {
	t.Parallel()
	l := New()
	ctx := context.Background()

	const callers = 64
	var wins atomic.Int64
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			status, err := l.TryClaim(ctx, "contended")
			require.NoError(t, err)
			if status == crawler.StatusClaimed {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Equal(t, int64(1), wins.Load())
}

func TestSizeAndClear(t *testing.T) {
	t.Parallel()
	l := New()
	ctx := context.Background()

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

func TestPing(t *testing.T) {
	t.Parallel()
	l := New()
	require.NoError(t, l.Ping(context.Background()))
	require.NoError(t, l.Close())
}
