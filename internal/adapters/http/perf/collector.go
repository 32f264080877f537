package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes what an entry timed.
type EntryKind uint8

const (
	KindRequest    EntryKind = iota // inbound HTTP request
	KindQuery                       // SQL statement
	KindWrite                       // fitness record append
	KindCompletion                  // outbound narrative call
)

// Entry is a single timing record stored in the ring buffer.
type Entry struct {
	Kind       EntryKind
	Path       string // HTTP path, SQL op, or backend name
	StatusCode int    // HTTP status (0 for non-request kinds)
	DurationMs float64
	Failed     bool
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer of timing entries with lifetime
// counters for writes and completions.
// Writes are non-blocking; when full, oldest entries are overwritten.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	size    int
	pos     int

	count              atomic.Int64
	writes             atomic.Int64
	writeFailures      atomic.Int64
	completions        atomic.Int64
	completionFailures atomic.Int64
}

// NewCollector creates a collector with the given ring buffer capacity.
// PRE: size > 0 (non-positive falls back to DefaultRingSize)
// POST: Returns a ready-to-use collector with pre-allocated storage
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{
		entries: make([]Entry, size),
		size:    size,
	}
}

// Record appends an entry to the ring buffer.
// PRE: e is a valid Entry
// POST: Entry stored; if buffer full, oldest entry overwritten; counters updated
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % c.size
	c.mu.Unlock()
	c.count.Add(1)

	switch e.Kind {
	case KindWrite:
		c.writes.Add(1)
		if e.Failed {
			c.writeFailures.Add(1)
		}
	case KindCompletion:
		c.completions.Add(1)
		if e.Failed {
			c.completionFailures.Add(1)
		}
	}
}

// TotalRecorded returns the total number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return c.count.Load()
}

// WriteFailures returns the lifetime count of failed record writes.
func (c *Collector) WriteFailures() int64 {
	return c.writeFailures.Load()
}

// Snapshot holds aggregated performance data computed on read.
type Snapshot struct {
	TotalRecorded      int64      `json:"total_recorded"`
	RequestP50Ms       float64    `json:"request_p50_ms"`
	RequestP95Ms       float64    `json:"request_p95_ms"`
	RequestP99Ms       float64    `json:"request_p99_ms"`
	SlowestPaths       []PathStat `json:"slowest_paths"`
	SlowestQueries     []PathStat `json:"slowest_queries"`
	Writes             int64      `json:"writes"`
	WriteFailures      int64      `json:"write_failures"`
	Completions        int64      `json:"completions"`
	CompletionFailures int64      `json:"completion_failures"`
	CompletionP95Ms    float64    `json:"completion_p95_ms"`
}

// PathStat aggregates timing for a single path or SQL op.
type PathStat struct {
	Path    string  `json:"path"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	Count   int     `json:"count"`
	TotalMs float64 `json:"total_ms"`
}

// Snapshot computes aggregated stats from the ring buffer.
// Sorting makes this expensive; call it from the ops endpoint only.
// PRE: none
// POST: Returns a Snapshot with percentiles, top-N lists and lifetime counters
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, c.size)
	copy(buf, c.entries)
	c.mu.Unlock()

	var requestDurations, completionDurations []float64
	requestStats := make(map[string]*PathStat)
	queryStats := make(map[string]*PathStat)

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		switch e.Kind {
		case KindRequest:
			requestDurations = append(requestDurations, e.DurationMs)
			accumulate(requestStats, e)
		case KindQuery:
			accumulate(queryStats, e)
		case KindCompletion:
			completionDurations = append(completionDurations, e.DurationMs)
		}
	}

	snap := Snapshot{
		TotalRecorded:      c.TotalRecorded(),
		SlowestPaths:       topByAvg(requestStats, topN),
		SlowestQueries:     topByAvg(queryStats, topN),
		Writes:             c.writes.Load(),
		WriteFailures:      c.writeFailures.Load(),
		Completions:        c.completions.Load(),
		CompletionFailures: c.completionFailures.Load(),
	}

	if len(requestDurations) > 0 {
		sort.Float64s(requestDurations)
		snap.RequestP50Ms = percentile(requestDurations, 50)
		snap.RequestP95Ms = percentile(requestDurations, 95)
		snap.RequestP99Ms = percentile(requestDurations, 99)
	}
	if len(completionDurations) > 0 {
		sort.Float64s(completionDurations)
		snap.CompletionP95Ms = percentile(completionDurations, 95)
	}

	return snap
}

func accumulate(stats map[string]*PathStat, e Entry) {
	s, ok := stats[e.Path]
	if !ok {
		s = &PathStat{Path: e.Path}
		stats[e.Path] = s
	}
	s.Count++
	s.TotalMs += e.DurationMs
	if e.DurationMs > s.MaxMs {
		s.MaxMs = e.DurationMs
	}
}

// percentile returns the p-th percentile from a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// topByAvg returns the top N stats sorted by average duration (descending).
func topByAvg(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].AvgMs > list[j].AvgMs
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
