// Package ttable implements the transposition table used by the searchers: a memoization cache keyed
// by position hash, storing the best known score of a position, the depth at which it was computed and
// the alpha-beta window active at the time.
//
// A Table is owned by one agent and is not safe for concurrent use. It grows for the lifetime of the
// agent, with no eviction, and it is only cleared by Reset.
package ttable

import (
	"fmt"
)

// Entry cached for a position.
type Entry struct {
	// Score found for the position.
	Score float32

	// Depth (in plies left to search) at which Score was computed.
	Depth int

	// Alpha and Beta is the bound window active when Score was computed.
	Alpha, Beta float32
}

// Covers returns whether the entry can answer a query for the given depth and window: it must have been
// computed at least as deep, and with a window at least as wide.
func (e Entry) Covers(depth int, alpha, beta float32) bool {
	return e.Depth >= depth && e.Alpha <= alpha && e.Beta >= beta
}

// Stats are counters of the table usage, for benchmarking and debugging.
type Stats struct {
	Hits, Misses, Stores int
}

// String implements fmt.Stringer.
func (s Stats) String() string {
	total := s.Hits + s.Misses
	if total == 0 {
		return "no lookups"
	}
	return fmt.Sprintf("%d lookups, %.1f%% hits, %d stores", total, 100*float64(s.Hits)/float64(total), s.Stores)
}

// Table maps position hashes to the Entry last stored.
type Table struct {
	entries map[uint64]Entry
	stats   Stats
}

// New returns an empty Table.
func New() *Table {
	return &Table{entries: make(map[uint64]Entry)}
}

// Lookup returns the cached score for the position if it is usable for a search of the given depth and
// window [alpha, beta]: the cached depth must be >= depth and the cached window must cover [alpha, beta].
func (t *Table) Lookup(hash uint64, depth int, alpha, beta float32) (score float32, found bool) {
	entry, ok := t.entries[hash]
	if !ok || !entry.Covers(depth, alpha, beta) {
		t.stats.Misses++
		return 0, false
	}
	t.stats.Hits++
	return entry.Score, true
}

// LookupDepth returns the cached score for the position if it was computed with depth >= the given
// depth, regardless of the window. It is used by searchers that don't prune with alpha-beta windows.
func (t *Table) LookupDepth(hash uint64, depth int) (score float32, found bool) {
	entry, ok := t.entries[hash]
	if !ok || entry.Depth < depth {
		t.stats.Misses++
		return 0, false
	}
	t.stats.Hits++
	return entry.Score, true
}

// Store unconditionally overwrites the entry for the position (last write wins).
func (t *Table) Store(hash uint64, score float32, depth int, alpha, beta float32) {
	t.entries[hash] = Entry{Score: score, Depth: depth, Alpha: alpha, Beta: beta}
	t.stats.Stores++
}

// Get returns the raw entry for the position, without any usability check.
func (t *Table) Get(hash uint64) (Entry, bool) {
	entry, ok := t.entries[hash]
	return entry, ok
}

// Len returns the number of positions cached.
func (t *Table) Len() int {
	return len(t.entries)
}

// Stats returns the usage counters since the last Reset.
func (t *Table) Stats() Stats {
	return t.stats
}

// Reset clears all entries and counters.
func (t *Table) Reset() {
	clear(t.entries)
	t.stats = Stats{}
}
