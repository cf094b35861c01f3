package frontier

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campussearch/crawler/internal/crawler"
)

func entry(url string, depth int) crawler.FrontierEntry {
	return crawler.FrontierEntry{URL: url, Depth: depth}
}

func drain(t *testing.T, f *Frontier) []string {
	t.Helper()
	var urls []string
	for {
		e, ok := f.Pop()
		if !ok {
			return urls
		}
		urls = append(urls, e.URL)
	}
}

func TestBreadthFirstOrdering(t *testing.T) {
	t.Parallel()
	f := New(crawler.DisciplineBreadth, 0)

	// A depth-0 seed discovers two depth-1 pages and one depth-2 page;
	// both depth-1 entries must come out before the depth-2 entry, in
	// insertion order.
	require.True(t, f.Push(entry("seed", 0)))
	require.True(t, f.Push(entry("d1-first", 1)))
	require.True(t, f.Push(entry("d2", 2)))
	require.True(t, f.Push(entry("d1-second", 1)))

	require.Equal(t, []string{"seed", "d1-first", "d1-second", "d2"}, drain(t, f))
}

func TestBreadthFirstFIFOAmongEqualDepth(t *testing.T) {
	t.Parallel()
	f := New(crawler.DisciplineBreadth, 0)

	for _, u := range []string{"a", "b", "c", "d"} {
		require.True(t, f.Push(entry(u, 3)))
	}
	require.Equal(t, []string{"a", "b", "c", "d"}, drain(t, f))
}

func TestDepthFirstOrdering(t *testing.T) {
	t.Parallel()
	f := New(crawler.DisciplineDepth, 0)

	// Same admission sequence as the breadth test: the newest insertion is
	// always served next, so the crawl follows the newest branch first.
	require.True(t, f.Push(entry("seed", 0)))
	require.True(t, f.Push(entry("d1-first", 1)))
	require.True(t, f.Push(entry("d2", 2)))
	require.True(t, f.Push(entry("d1-second", 1)))

	require.Equal(t, []string{"d1-second", "d2", "d1-first", "seed"}, drain(t, f))
}

func TestDepthFirstRecursesIntoNewestBranch(t *testing.T) {
	t.Parallel()
	f := New(crawler.DisciplineDepth, 0)

	require.True(t, f.Push(entry("sibling-a", 1)))
	require.True(t, f.Push(entry("sibling-b", 1)))

	e, ok := f.Pop()
	require.True(t, ok)
	require.Equal(t, "sibling-b", e.URL)

	// Children discovered under sibling-b preempt sibling-a.
	require.True(t, f.Push(entry("b-child", 2)))
	require.Equal(t, []string{"b-child", "sibling-a"}, drain(t, f))
}

func TestMaxDepthAdmission(t *testing.T) {
	t.Parallel()
	f := New(crawler.DisciplineBreadth, 2)

	require.True(t, f.Push(entry("ok-0", 0)))
	require.True(t, f.Push(entry("ok-2", 2)))
	require.False(t, f.Push(entry("too-deep", 3)))
	require.Equal(t, 2, f.Len())
}

func TestUnboundedDepth(t *testing.T) {
	t.Parallel()
	f := New(crawler.DisciplineDepth, 0)

	require.True(t, f.Push(entry("deep", 10_000)))
	require.Equal(t, 1, f.Len())
}

func TestDuplicatesAreAdmitted(t *testing.T) {
	t.Parallel()
	f := New(crawler.DisciplineBreadth, 0)

	require.True(t, f.Push(entry("same", 1)))
	require.True(t, f.Push(entry("same", 1)))
	require.Equal(t, []string{"same", "same"}, drain(t, f))
}

func TestPopEmpty(t *testing.T) {
	t.Parallel()
	f := New(crawler.DisciplineBreadth, 0)

	_, ok := f.Pop()
	require.False(t, ok)
	require.Zero(t, f.Len())
}
