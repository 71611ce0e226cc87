package goAset

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one counter or histogram.
type MetricID uint16

const (
	// MetricLoginSuccess counts logins that reached StateAuthenticated.
	MetricLoginSuccess MetricID = iota
	// MetricLoginRejected counts logins the backend refused.
	MetricLoginRejected
	// MetricLoginFailure counts logins lost to transport, malformed answers or the store.
	MetricLoginFailure
	// MetricRefreshSuccess counts successful credential exchanges.
	MetricRefreshSuccess
	// MetricRefreshFailure counts failed credential exchanges.
	MetricRefreshFailure
	// MetricBootstrapAuthenticated counts bootstraps that ended authenticated.
	MetricBootstrapAuthenticated
	// MetricBootstrapUnauthenticated counts bootstraps that ended unauthenticated.
	MetricBootstrapUnauthenticated
	// MetricRoleResolved counts roles taken from the backend.
	MetricRoleResolved
	// MetricRoleDefaulted counts role resolutions that fell back to cache or default.
	MetricRoleDefaulted
	// MetricLogout counts logout calls.
	MetricLogout
	// MetricSessionCleared counts sessions destroyed for any reason.
	MetricSessionCleared
	// MetricStateTransition counts observable state changes.
	MetricStateTransition
	// MetricBackendLatency is the backend round-trip histogram.
	MetricBackendLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters and latency histograms. A nil or disabled
// Metrics ignores every update.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// NewMetrics returns a Metrics configured by cfg.
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

// LatencyEnabled reports whether histograms are recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d into the histogram for id.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricBackendLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter and histogram.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricBackendLatency].buckets[i])
		}
		s.Histograms[MetricBackendLatency] = buckets
	}

	return s
}

// HistogramBoundsMillis are the upper bounds of the first seven buckets;
// the eighth is unbounded.
var HistogramBoundsMillis = [histBucketCount - 1]int64{25, 50, 100, 250, 500, 1000, 2500}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()
	for i, bound := range HistogramBoundsMillis {
		if ms <= bound {
			return i
		}
	}
	return histBucketCount - 1
}
