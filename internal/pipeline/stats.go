package pipeline

import (
	"slices"
	"sync"
	"time"
)

// conversion is one finished job as seen by the stats window.
type conversion struct {
	at       time.Time
	duration time.Duration
	files    int
	failed   bool
}

// StatsSnapshot is a point-in-time aggregate of recent conversions.
// Latencies cover completed jobs only.
type StatsSnapshot struct {
	Count  int     `json:"count"`
	Failed int     `json:"failed"`
	Files  int     `json:"files"`
	MinMs  int64   `json:"min_ms"`
	MaxMs  int64   `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// ConversionStats keeps the conversions of a rolling window.
type ConversionStats struct {
	mu     sync.Mutex
	window []conversion
	maxAge time.Duration
}

func NewConversionStats(maxAge time.Duration) *ConversionStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &ConversionStats{
		window: make([]conversion, 0, 256),
		maxAge: maxAge,
	}
}

// Record adds a completed conversion of files sources.
func (s *ConversionStats) Record(d time.Duration, files int) {
	s.add(conversion{duration: max(d, 0), files: files})
}

// RecordFailure adds a failed conversion. It counts towards Failed but not
// towards the latency percentiles.
func (s *ConversionStats) RecordFailure(files int) {
	s.add(conversion{files: files, failed: true})
}

func (s *ConversionStats) add(c conversion) {
	c.at = time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(c.at)
	s.window = append(s.window, c)
}

func (s *ConversionStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(time.Now())

	var snap StatsSnapshot
	ms := make([]int64, 0, len(s.window))
	var sum int64
	for _, c := range s.window {
		snap.Files += c.files
		if c.failed {
			snap.Failed++
			continue
		}
		v := c.duration.Milliseconds()
		ms = append(ms, v)
		sum += v
	}
	if len(ms) == 0 {
		return snap
	}
	slices.Sort(ms)

	snap.Count = len(ms)
	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.AvgMs = float64(sum) / float64(len(ms))
	snap.P50Ms = percentile(ms, 50)
	snap.P95Ms = percentile(ms, 95)
	snap.P99Ms = percentile(ms, 99)
	return snap
}

// pruneLocked drops conversions older than maxAge. The window is in
// arrival order, so the survivors are a suffix.
func (s *ConversionStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	i := 0
	for i < len(s.window) && s.window[i].at.Before(cutoff) {
		i++
	}
	if i > 0 {
		s.window = append(s.window[:0], s.window[i:]...)
	}
}

// percentile interpolates linearly between the two closest ranks of
// sorted.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	rank := float64(len(sorted)-1) * pct / 100
	lower := int(rank)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*(rank-float64(lower))
}
