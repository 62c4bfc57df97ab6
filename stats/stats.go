// Package stats provides atomic counters for connection activity.
package stats

import "sync/atomic"

// Stats holds atomic counters for one connection and its chunks.
type Stats struct {
	Queries  atomic.Int64
	Executes atomic.Int64
	Rows     atomic.Int64
	Failed   atomic.Int64
}

// New returns a zero-valued Stats ready for use.
func New() *Stats {
	return &Stats{}
}

// Snapshot is a plain-struct copy of all counters at a point in time.
type Snapshot struct {
	Queries  int64
	Executes int64
	Rows     int64
	Failed   int64
}

// Snapshot reads all counters and returns a plain copy.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Queries:  s.Queries.Load(),
		Executes: s.Executes.Load(),
		Rows:     s.Rows.Load(),
		Failed:   s.Failed.Load(),
	}
}

// Record counts a finished query (or execute when query is false) and whether it failed.
func (s *Stats) Record(query bool, err error) {
	if query {
		s.Queries.Add(1)
	} else {
		s.Executes.Add(1)
	}

	if err != nil {
		s.Failed.Add(1)
	}
}
