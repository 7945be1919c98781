package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Latencies are recorded in microseconds; resolutions against live pages
// span network fetches, so a second-scale upper bound is enough.
const (
	minLatencyUs = 1
	maxLatencyUs = int64(60 * time.Second / time.Microsecond)
	sigFigs      = 3
)

// Recorder aggregates resolution latencies across a run.
type Recorder struct {
	mu        sync.Mutex
	histogram *hdrhistogram.Histogram
}

// NewRecorder returns an empty latency recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, sigFigs),
	}
}

// Record adds one resolution latency. Values outside the trackable range
// are clamped by the histogram and never fail the run.
func (r *Recorder) Record(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	us := d.Microseconds()
	if us < minLatencyUs {
		us = minLatencyUs
	}
	if us > maxLatencyUs {
		us = maxLatencyUs
	}
	_ = r.histogram.RecordValue(us)
}

// Count returns the number of recorded resolutions.
func (r *Recorder) Count() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.histogram.TotalCount()
}

// Percentile returns the latency at the given quantile (e.g. 95.0).
func (r *Recorder) Percentile(q float64) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return time.Duration(r.histogram.ValueAtQuantile(q)) * time.Microsecond
}

// Summary is a point-in-time view of the recorded latencies.
type Summary struct {
	Count int64
	Mean  time.Duration
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
	Max   time.Duration
}

// Summarize snapshots the recorder.
func (r *Recorder) Summarize() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Summary{
		Count: r.histogram.TotalCount(),
		Mean:  time.Duration(r.histogram.Mean()) * time.Microsecond,
		P50:   time.Duration(r.histogram.ValueAtQuantile(50)) * time.Microsecond,
		P95:   time.Duration(r.histogram.ValueAtQuantile(95)) * time.Microsecond,
		P99:   time.Duration(r.histogram.ValueAtQuantile(99)) * time.Microsecond,
		Max:   time.Duration(r.histogram.Max()) * time.Microsecond,
	}
}
