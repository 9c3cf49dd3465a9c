package gobinder

import (
	"sync/atomic"
	"time"
)

// LatencyBuckets defines the transaction-latency histogram buckets in
// nanoseconds, covering 1us to 10s with logarithmic spacing.
var LatencyBuckets = []uint64{
	1_000,          // 1us
	10_000,         // 10us
	100_000,        // 100us
	1_000_000,      // 1ms
	10_000_000,     // 10ms
	100_000_000,    // 100ms
	1_000_000_000,  // 1s
	10_000_000_000, // 10s
}

const numLatencyBuckets = 8

// Metrics tracks transaction throughput, payload volume, and latency for a
// process's binder activity.
type Metrics struct {
	// Transaction counters, split by direction.
	TransactOps atomic.Uint64 // Outgoing synchronous Transact calls
	OneWayOps   atomic.Uint64 // Outgoing one-way Transact calls
	DispatchOps atomic.Uint64 // Inbound transactions handled by a native binding

	// Byte counters.
	SentBytes     atomic.Uint64 // Total request-parcel bytes sent
	ReceivedBytes atomic.Uint64 // Total reply-parcel bytes received plus dispatched request bytes

	// Error counters.
	TransactErrors atomic.Uint64 // Transact calls that returned an error
	DispatchErrors atomic.Uint64 // Dispatched calls whose handler returned an error

	// Thread-pool statistics.
	ThreadPoolDepthTotal atomic.Uint64 // Cumulative pooled-thread-count samples
	ThreadPoolDepthCount atomic.Uint64 // Number of samples taken
	MaxThreadPoolDepth   atomic.Uint32 // Maximum observed pooled-thread count

	// Performance tracking.
	TotalLatencyNs atomic.Uint64 // Cumulative Transact round-trip and Dispatch handler latency
	OpCount        atomic.Uint64 // Total timed operations (for average latency)

	// Latency histogram buckets (cumulative counts): bucket[i] holds the
	// count of operations with latency <= LatencyBuckets[i].
	LatencyBuckets [numLatencyBuckets]atomic.Uint64

	// Process lifecycle.
	StartTime atomic.Int64 // Process init timestamp (UnixNano)
	StopTime  atomic.Int64 // Process shutdown timestamp (UnixNano)
}

// NewMetrics creates a new metrics instance, timestamped at construction.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordTransact records an outgoing synchronous Transact call.
func (m *Metrics) RecordTransact(replyBytes uint64, latencyNs uint64, success bool) {
	m.TransactOps.Add(1)
	if success {
		m.ReceivedBytes.Add(replyBytes)
	} else {
		m.TransactErrors.Add(1)
	}
	m.recordLatency(latencyNs)
}

// RecordOneWay records an outgoing one-way Transact call.
func (m *Metrics) RecordOneWay(sentBytes uint64, success bool) {
	m.OneWayOps.Add(1)
	if success {
		m.SentBytes.Add(sentBytes)
	} else {
		m.TransactErrors.Add(1)
	}
}

// RecordDispatch records an inbound transaction handled by a native binding.
func (m *Metrics) RecordDispatch(dataBytes uint64, latencyNs uint64, success bool) {
	m.DispatchOps.Add(1)
	m.ReceivedBytes.Add(dataBytes)
	if !success {
		m.DispatchErrors.Add(1)
	}
	m.recordLatency(latencyNs)
}

// RecordThreadPoolDepth records the current pooled-thread count for statistics.
func (m *Metrics) RecordThreadPoolDepth(depth uint32) {
	m.ThreadPoolDepthTotal.Add(uint64(depth))
	m.ThreadPoolDepthCount.Add(1)

	for {
		current := m.MaxThreadPoolDepth.Load()
		if depth <= current {
			break
		}
		if m.MaxThreadPoolDepth.CompareAndSwap(current, depth) {
			break
		}
	}
}

// recordLatency records operation latency and updates the histogram.
func (m *Metrics) recordLatency(latencyNs uint64) {
	m.TotalLatencyNs.Add(latencyNs)
	m.OpCount.Add(1)

	for i, bucket := range LatencyBuckets {
		if latencyNs <= bucket {
			m.LatencyBuckets[i].Add(1)
		}
	}
}

// Stop marks the process's binder activity as stopped.
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time snapshot of Metrics, with derived rates
// and percentiles computed at snapshot time.
type MetricsSnapshot struct {
	TransactOps uint64
	OneWayOps   uint64
	DispatchOps uint64

	SentBytes     uint64
	ReceivedBytes uint64

	TransactErrors uint64
	DispatchErrors uint64

	AvgThreadPoolDepth float64
	MaxThreadPoolDepth uint32

	AvgLatencyNs uint64
	UptimeNs     uint64

	LatencyP50Ns  uint64
	LatencyP99Ns  uint64
	LatencyP999Ns uint64

	LatencyHistogram [numLatencyBuckets]uint64

	TransactIOPS float64
	Bandwidth    float64
	TotalOps     uint64
	TotalBytes   uint64
	ErrorRate    float64
}

// Snapshot creates a point-in-time snapshot of metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		TransactOps:        m.TransactOps.Load(),
		OneWayOps:          m.OneWayOps.Load(),
		DispatchOps:        m.DispatchOps.Load(),
		SentBytes:          m.SentBytes.Load(),
		ReceivedBytes:      m.ReceivedBytes.Load(),
		TransactErrors:     m.TransactErrors.Load(),
		DispatchErrors:     m.DispatchErrors.Load(),
		MaxThreadPoolDepth: m.MaxThreadPoolDepth.Load(),
	}

	snap.TotalOps = snap.TransactOps + snap.OneWayOps + snap.DispatchOps
	snap.TotalBytes = snap.SentBytes + snap.ReceivedBytes

	depthTotal := m.ThreadPoolDepthTotal.Load()
	depthCount := m.ThreadPoolDepthCount.Load()
	if depthCount > 0 {
		snap.AvgThreadPoolDepth = float64(depthTotal) / float64(depthCount)
	}

	totalLatencyNs := m.TotalLatencyNs.Load()
	opCount := m.OpCount.Load()
	if opCount > 0 {
		snap.AvgLatencyNs = totalLatencyNs / opCount
	}

	startTime := m.StartTime.Load()
	stopTime := m.StopTime.Load()
	if stopTime > 0 {
		snap.UptimeNs = uint64(stopTime - startTime)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - startTime)
	}

	if snap.UptimeNs > 0 {
		uptimeSeconds := float64(snap.UptimeNs) / 1e9
		snap.TransactIOPS = float64(snap.TransactOps) / uptimeSeconds
		snap.Bandwidth = float64(snap.TotalBytes) / uptimeSeconds
	}

	totalErrors := snap.TransactErrors + snap.DispatchErrors
	if snap.TotalOps > 0 {
		snap.ErrorRate = float64(totalErrors) / float64(snap.TotalOps) * 100.0
	}

	for i := 0; i < numLatencyBuckets; i++ {
		snap.LatencyHistogram[i] = m.LatencyBuckets[i].Load()
	}

	if opCount > 0 {
		snap.LatencyP50Ns = m.calculatePercentile(0.50)
		snap.LatencyP99Ns = m.calculatePercentile(0.99)
		snap.LatencyP999Ns = m.calculatePercentile(0.999)
	}

	return snap
}

// calculatePercentile estimates the latency at the given percentile (0.0-1.0)
// using linear interpolation between histogram buckets.
func (m *Metrics) calculatePercentile(percentile float64) uint64 {
	totalOps := m.OpCount.Load()
	if totalOps == 0 {
		return 0
	}

	targetCount := uint64(float64(totalOps) * percentile)

	prevBucket := uint64(0)
	for i, bucket := range LatencyBuckets {
		bucketCount := m.LatencyBuckets[i].Load()
		if bucketCount >= targetCount {
			prevCount := uint64(0)
			if i > 0 {
				prevCount = m.LatencyBuckets[i-1].Load()
			}
			if bucketCount == prevCount {
				return bucket
			}
			fraction := float64(targetCount-prevCount) / float64(bucketCount-prevCount)
			return prevBucket + uint64(fraction*float64(bucket-prevBucket))
		}
		prevBucket = bucket
	}

	return LatencyBuckets[numLatencyBuckets-1]
}

// Reset resets all metrics counters (useful for testing).
func (m *Metrics) Reset() {
	m.TransactOps.Store(0)
	m.OneWayOps.Store(0)
	m.DispatchOps.Store(0)
	m.SentBytes.Store(0)
	m.ReceivedBytes.Store(0)
	m.TransactErrors.Store(0)
	m.DispatchErrors.Store(0)
	m.ThreadPoolDepthTotal.Store(0)
	m.ThreadPoolDepthCount.Store(0)
	m.MaxThreadPoolDepth.Store(0)
	m.TotalLatencyNs.Store(0)
	m.OpCount.Store(0)
	for i := 0; i < numLatencyBuckets; i++ {
		m.LatencyBuckets[i].Store(0)
	}
	m.StartTime.Store(time.Now().UnixNano())
	m.StopTime.Store(0)
}

// Observer allows pluggable metrics collection for a process's binder activity.
type Observer interface {
	// ObserveTransact is called for each outgoing synchronous Transact call.
	ObserveTransact(replyBytes uint64, latencyNs uint64, success bool)

	// ObserveOneWay is called for each outgoing one-way Transact call.
	ObserveOneWay(sentBytes uint64, success bool)

	// ObserveDispatch is called for each inbound transaction a native
	// binding handled.
	ObserveDispatch(dataBytes uint64, latencyNs uint64, success bool)

	// ObserveThreadPoolDepth is called with the current pooled-thread count
	// each time that count changes.
	ObserveThreadPoolDepth(depth uint32)
}

// NoOpObserver is a no-op implementation of Observer.
type NoOpObserver struct{}

func (NoOpObserver) ObserveTransact(uint64, uint64, bool) {}
func (NoOpObserver) ObserveOneWay(uint64, bool)           {}
func (NoOpObserver) ObserveDispatch(uint64, uint64, bool) {}
func (NoOpObserver) ObserveThreadPoolDepth(uint32)        {}

// MetricsObserver implements Observer using the built-in Metrics.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates an observer that records to the given metrics.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveTransact(replyBytes uint64, latencyNs uint64, success bool) {
	o.metrics.RecordTransact(replyBytes, latencyNs, success)
}

func (o *MetricsObserver) ObserveOneWay(sentBytes uint64, success bool) {
	o.metrics.RecordOneWay(sentBytes, success)
}

func (o *MetricsObserver) ObserveDispatch(dataBytes uint64, latencyNs uint64, success bool) {
	o.metrics.RecordDispatch(dataBytes, latencyNs, success)
}

func (o *MetricsObserver) ObserveThreadPoolDepth(depth uint32) {
	o.metrics.RecordThreadPoolDepth(depth)
}

// Compile-time interface checks.
var _ Observer = (*MetricsObserver)(nil)
var _ Observer = (*NoOpObserver)(nil)
