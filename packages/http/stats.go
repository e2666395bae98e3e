package http

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Stats collects request latencies in a histogram (1us to 60s, 3 significant digits)
type Stats struct {
	mu        sync.Mutex
	histogram *hdrhistogram.Histogram
	requests  int64
	failures  int64
}

// StatsSnapshot is a point-in-time summary of Stats
type StatsSnapshot struct {
	Requests int64
	Failures int64
	P50      time.Duration
	P95      time.Duration
	P99      time.Duration
	Max      time.Duration
}

func NewStats() *Stats {
	return &Stats{
		histogram: hdrhistogram.New(1, 60_000_000, 3),
	}
}

// Record adds one request; failed covers transport errors and non-2xx statuses
func (s *Stats) Record(duration time.Duration, failed bool) {
	latencyUs := duration.Microseconds()
	if latencyUs < 1 {
		latencyUs = 1
	}
	if latencyUs > 60_000_000 {
		latencyUs = 60_000_000
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	if failed {
		s.failures++
	}
	_ = s.histogram.RecordValue(latencyUs)
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsSnapshot{
		Requests: s.requests,
		Failures: s.failures,
		P50:      time.Duration(s.histogram.ValueAtQuantile(50)) * time.Microsecond,
		P95:      time.Duration(s.histogram.ValueAtQuantile(95)) * time.Microsecond,
		P99:      time.Duration(s.histogram.ValueAtQuantile(99)) * time.Microsecond,
		Max:      time.Duration(s.histogram.Max()) * time.Microsecond,
	}
}
