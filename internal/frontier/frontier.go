// Package frontier implements the per-process ordered queue of pending crawl
// requests. One frontier is exclusively owned by one crawl loop; it is never
// shared across processes.
package frontier

import (
	"container/heap"
	"sync"

	"github.com/campussearch/crawler/internal/crawler"
)

// Frontier holds pending entries in breadth-first or depth-first order. The
// discipline is fixed at construction. Push and Pop are safe for concurrent
// use within the owning process and never block.
//
// The frontier does not deduplicate: duplicate insertion is cheap and
// expected, and the shared ledger is the sole dedup gate at claim time.
type Frontier struct {
	mu         sync.Mutex
	entries    entryHeap
	discipline crawler.Discipline
	maxDepth   int
	seq        uint64
}

// New builds a Frontier with the given discipline and maximum admission
// depth (0 = unbounded).
func New(discipline crawler.Discipline, maxDepth int) *Frontier {
	f := &Frontier{
		discipline: discipline,
		maxDepth:   maxDepth,
	}
	f.entries.breadth = discipline == crawler.DisciplineBreadth
	return f
}

// Push admits the entry unless its depth exceeds the configured maximum.
// It reports whether the entry was admitted.
func (f *Frontier) Push(entry crawler.FrontierEntry) bool {
	if f.maxDepth > 0 && entry.Depth > f.maxDepth {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	heap.Push(&f.entries, queued{entry: entry, seq: f.seq})
	return true
}

// Pop removes and returns the next entry under the frontier's discipline.
// The second return is false when the frontier is empty.
func (f *Frontier) Pop() (crawler.FrontierEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries.items) == 0 {
		return crawler.FrontierEntry{}, false
	}
	q := heap.Pop(&f.entries).(queued)
	return q.entry, true
}

// Len reports the number of pending entries.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries.items)
}

// Discipline returns the traversal discipline fixed at construction.
func (f *Frontier) Discipline() crawler.Discipline {
	return f.discipline
}

type queued struct {
	entry crawler.FrontierEntry
	seq   uint64
}

// entryHeap orders entries by the active discipline: breadth-first serves
// shallower depths first with FIFO among equals; depth-first serves the most
// recently inserted entry first.
type entryHeap struct {
	items   []queued
	breadth bool
}

func (h *entryHeap) Len() int { return len(h.items) }

func (h *entryHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if h.breadth {
		if a.entry.Depth != b.entry.Depth {
			return a.entry.Depth < b.entry.Depth
		}
		return a.seq < b.seq
	}
	return a.seq > b.seq
}

func (h *entryHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *entryHeap) Push(x any) { h.items = append(h.items, x.(queued)) }

func (h *entryHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}
