package cache

import (
	"fmt"
	"sync/atomic"
)

// Stats summarizes cache performance for one build run. Safe for
// concurrent use by workers.
type Stats struct {
	hits   atomic.Uint64
	misses atomic.Uint64
}

// Hit records a reused or copied artifact.
func (s *Stats) Hit() { s.hits.Add(1) }

// Miss records a fresh encode.
func (s *Stats) Miss() { s.misses.Add(1) }

// Hits returns the number of cache hits so far.
func (s *Stats) Hits() uint64 { return s.hits.Load() }

// Misses returns the number of fresh encodes so far.
func (s *Stats) Misses() uint64 { return s.misses.Load() }

// Total returns hits plus misses.
func (s *Stats) Total() uint64 { return s.Hits() + s.Misses() }

// String renders the build summary, e.g. "12 cached, 3 encoded (15 total)".
// When nothing was cached it collapses to "3 encoded".
func (s *Stats) String() string {
	if s.Hits() > 0 {
		return fmt.Sprintf("%d cached, %d encoded (%d total)", s.Hits(), s.Misses(), s.Total())
	}
	return fmt.Sprintf("%d encoded", s.Misses())
}
