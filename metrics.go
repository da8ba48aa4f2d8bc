package goLogin

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one engine counter or histogram.
type MetricID uint16

const (
	// MetricLoginSuccess counts logins that stored a session and responded.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts every failed login regardless of stage.
	MetricLoginFailure
	// MetricLoginValidationFailed counts logins rejected by credential validation.
	MetricLoginValidationFailed
	// MetricLoginUserNotFound counts logins for unknown emails.
	MetricLoginUserNotFound
	// MetricLoginUnverified counts logins rejected for unverified accounts.
	MetricLoginUnverified
	// MetricLoginInvalidPassword counts password mismatches.
	MetricLoginInvalidPassword
	// MetricLoginInternalError counts collaborator faults mapped to 500.
	MetricLoginInternalError
	// MetricSessionCreated counts cache entries written for new sessions.
	MetricSessionCreated
	// MetricSessionValidateSuccess counts accepted session tokens.
	MetricSessionValidateSuccess
	// MetricSessionValidateFailure counts rejected session tokens.
	MetricSessionValidateFailure
	// MetricLoginLatency is the end-to-end login latency histogram.
	MetricLoginLatency
	metricIDCount
)

// latencyBounds are the inclusive upper bounds of the first seven latency
// buckets; the eighth bucket catches everything slower.
var latencyBounds = [histBucketCount - 1]time.Duration{
	5 * time.Millisecond,
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
}

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// latencyHistogram keeps per-bucket counts and the running sum in
// nanoseconds, so exporters can report a mean.
type latencyHistogram struct {
	buckets [histBucketCount]uint64
	sumNS   uint64
}

// Metrics holds lock-free counters and the login latency histogram.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	latency       latencyHistogram
}

// MetricsSnapshot is a point-in-time copy of every counter and histogram.
// HistogramSums holds the total observed duration per histogram.
type MetricsSnapshot struct {
	Counters      map[MetricID]uint64
	Histograms    map[MetricID][]uint64
	HistogramSums map[MetricID]time.Duration
}

// NewMetrics returns a Metrics set. A disabled set ignores every write.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether Observe records anything.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc atomically increments counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricLoginLatency {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d into the latency histogram. Only MetricLoginLatency
// carries a histogram; other IDs are ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if !m.LatencyEnabled() || id != MetricLoginLatency {
		return
	}
	if d < 0 {
		d = 0
	}
	atomic.AddUint64(&m.latency.buckets[bucketIndex(d)], 1)
	atomic.AddUint64(&m.latency.sumNS, uint64(d))
}

// Value returns the current count of id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= MetricLoginLatency {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters, plus the latency buckets when enabled.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Counters:      map[MetricID]uint64{},
		Histograms:    map[MetricID][]uint64{},
		HistogramSums: map[MetricID]time.Duration{},
	}
	if !m.Enabled() {
		return s
	}

	for id := MetricID(0); id < MetricLoginLatency; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := range buckets {
			buckets[i] = atomic.LoadUint64(&m.latency.buckets[i])
		}
		s.Histograms[MetricLoginLatency] = buckets
		s.HistogramSums[MetricLoginLatency] = time.Duration(atomic.LoadUint64(&m.latency.sumNS))
	}

	return s
}

func bucketIndex(d time.Duration) int {
	for i, bound := range latencyBounds {
		if d <= bound {
			return i
		}
	}
	return histBucketCount - 1
}
