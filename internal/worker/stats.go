package worker

import "sync/atomic"

type stats struct {
	claimed    atomic.Int64
	duplicates atomic.Int64
	completed  atomic.Int64
	failed     atomic.Int64
	invalid    atomic.Int64
	dropped    atomic.Int64
	done       atomic.Bool
}

// Snapshot is a point-in-time view of the loop's counters, safe to read
// from other goroutines while the crawl runs.
type Snapshot struct {
	Claimed    int64 `json:"claimed"`
	Duplicates int64 `json:"duplicates"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
	Invalid    int64 `json:"invalid"`
	Dropped    int64 `json:"dropped"`
	Frontier   int   `json:"frontier"`
	Done       bool  `json:"done"`
}

// Snapshot returns the current counters.
func (l *Loop) Snapshot() Snapshot {
	return Snapshot{
		Claimed:    l.stats.claimed.Load(),
		Duplicates: l.stats.duplicates.Load(),
		Completed:  l.stats.completed.Load(),
		Failed:     l.stats.failed.Load(),
		Invalid:    l.stats.invalid.Load(),
		Dropped:    l.stats.dropped.Load(),
		Frontier:   l.frontier.Len(),
		Done:       l.stats.done.Load(),
	}
}
