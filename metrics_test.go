package gobinder

import (
	"testing"
	"time"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	snap := m.Snapshot()
	if snap.TotalOps != 0 {
		t.Errorf("Expected 0 initial ops, got %d", snap.TotalOps)
	}

	m.RecordTransact(1024, 1_000_000, true) // 1KB reply, 1ms latency, success
	m.RecordOneWay(2048, true)              // 2KB one-way send, success
	m.RecordTransact(512, 500_000, false)   // 512B reply, 0.5ms latency, error

	snap = m.Snapshot()

	if snap.TransactOps != 2 {
		t.Errorf("Expected 2 transact ops, got %d", snap.TransactOps)
	}
	if snap.OneWayOps != 1 {
		t.Errorf("Expected 1 one-way op, got %d", snap.OneWayOps)
	}

	if snap.ReceivedBytes != 1024 {
		t.Errorf("Expected 1024 received bytes, got %d", snap.ReceivedBytes)
	}
	if snap.SentBytes != 2048 {
		t.Errorf("Expected 2048 sent bytes, got %d", snap.SentBytes)
	}

	if snap.TransactErrors != 1 {
		t.Errorf("Expected 1 transact error, got %d", snap.TransactErrors)
	}

	expectedErrorRate := float64(1) / float64(3) * 100.0
	if snap.ErrorRate < expectedErrorRate-0.1 || snap.ErrorRate > expectedErrorRate+0.1 {
		t.Errorf("Expected error rate ~%.1f%%, got %.1f%%", expectedErrorRate, snap.ErrorRate)
	}
}

func TestMetricsThreadPoolDepth(t *testing.T) {
	m := NewMetrics()

	m.RecordThreadPoolDepth(10)
	m.RecordThreadPoolDepth(20)
	m.RecordThreadPoolDepth(15)

	snap := m.Snapshot()

	if snap.MaxThreadPoolDepth != 20 {
		t.Errorf("Expected max thread pool depth 20, got %d", snap.MaxThreadPoolDepth)
	}

	expectedAvg := float64(10+20+15) / 3.0
	if snap.AvgThreadPoolDepth < expectedAvg-0.1 || snap.AvgThreadPoolDepth > expectedAvg+0.1 {
		t.Errorf("Expected avg thread pool depth %.1f, got %.1f", expectedAvg, snap.AvgThreadPoolDepth)
	}
}

func TestMetricsLatency(t *testing.T) {
	m := NewMetrics()

	m.RecordTransact(1024, 1_000_000, true) // 1ms
	m.RecordDispatch(1024, 2_000_000, true) // 2ms

	snap := m.Snapshot()

	expectedAvgNs := uint64(1_500_000) // 1.5ms
	if snap.AvgLatencyNs != expectedAvgNs {
		t.Errorf("Expected avg latency %d ns, got %d ns", expectedAvgNs, snap.AvgLatencyNs)
	}
}

func TestMetricsUptime(t *testing.T) {
	m := NewMetrics()

	time.Sleep(10 * time.Millisecond)

	snap := m.Snapshot()
	if snap.UptimeNs < 10*1_000_000 {
		t.Errorf("Expected uptime >= 10ms, got %d ns", snap.UptimeNs)
	}

	m.Stop()
	time.Sleep(5 * time.Millisecond)

	snap2 := m.Snapshot()
	if snap2.UptimeNs > snap.UptimeNs+2*1_000_000 {
		t.Errorf("Uptime increased too much after stop: %d -> %d", snap.UptimeNs, snap2.UptimeNs)
	}
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()

	m.RecordTransact(1024, 1_000_000, true)
	m.RecordOneWay(2048, true)
	m.RecordThreadPoolDepth(10)

	snap := m.Snapshot()
	if snap.TotalOps == 0 {
		t.Error("Expected some operations before reset")
	}

	m.Reset()

	snap = m.Snapshot()
	if snap.TotalOps != 0 {
		t.Errorf("Expected 0 ops after reset, got %d", snap.TotalOps)
	}
	if snap.TotalBytes != 0 {
		t.Errorf("Expected 0 bytes after reset, got %d", snap.TotalBytes)
	}
	if snap.MaxThreadPoolDepth != 0 {
		t.Errorf("Expected 0 max thread pool depth after reset, got %d", snap.MaxThreadPoolDepth)
	}
}

func TestObserver(t *testing.T) {
	observer := &NoOpObserver{}
	observer.ObserveTransact(1024, 1_000_000, true)
	observer.ObserveOneWay(1024, true)
	observer.ObserveDispatch(1024, 1_000_000, true)
	observer.ObserveThreadPoolDepth(10)

	m := NewMetrics()
	metricsObserver := NewMetricsObserver(m)

	metricsObserver.ObserveTransact(1024, 1_000_000, true)
	metricsObserver.ObserveOneWay(2048, true)

	snap := m.Snapshot()
	if snap.TransactOps != 1 {
		t.Errorf("Expected 1 transact op from observer, got %d", snap.TransactOps)
	}
	if snap.OneWayOps != 1 {
		t.Errorf("Expected 1 one-way op from observer, got %d", snap.OneWayOps)
	}
	if snap.ReceivedBytes != 1024 {
		t.Errorf("Expected 1024 received bytes from observer, got %d", snap.ReceivedBytes)
	}
	if snap.SentBytes != 2048 {
		t.Errorf("Expected 2048 sent bytes from observer, got %d", snap.SentBytes)
	}
}

func TestMetricsRates(t *testing.T) {
	m := NewMetrics()

	startTime := time.Now()
	m.StartTime.Store(startTime.UnixNano())

	m.RecordTransact(1024, 1_000_000, true)
	m.RecordOneWay(2048, true)

	stopTime := startTime.Add(1 * time.Second)
	m.StopTime.Store(stopTime.UnixNano())

	snap := m.Snapshot()

	if snap.TransactIOPS < 0.9 || snap.TransactIOPS > 1.1 {
		t.Errorf("Expected TransactIOPS ~1.0, got %.2f", snap.TransactIOPS)
	}

	if snap.Bandwidth < 3000 || snap.Bandwidth > 3100 {
		t.Errorf("Expected Bandwidth ~3072, got %.2f", snap.Bandwidth)
	}
}

func TestMetricsHistogram(t *testing.T) {
	m := NewMetrics()

	for i := 0; i < 50; i++ {
		m.RecordTransact(1024, 500_000, true) // 500us
	}
	for i := 0; i < 49; i++ {
		m.RecordTransact(1024, 5_000_000, true) // 5ms
	}
	m.RecordTransact(1024, 50_000_000, true) // 50ms, the single slowest op (above the P99)

	snap := m.Snapshot()

	if snap.TotalOps != 100 {
		t.Errorf("Expected 100 total ops, got %d", snap.TotalOps)
	}

	if snap.LatencyP50Ns < 100_000 || snap.LatencyP50Ns > 1_000_000 {
		t.Errorf("Expected P50 in 100us-1ms range, got %d ns", snap.LatencyP50Ns)
	}

	if snap.LatencyP99Ns < 5_000_000 || snap.LatencyP99Ns > 100_000_000 {
		t.Errorf("Expected P99 in 5ms-100ms range, got %d ns", snap.LatencyP99Ns)
	}

	totalInBuckets := uint64(0)
	for i := 0; i < len(snap.LatencyHistogram); i++ {
		totalInBuckets += snap.LatencyHistogram[i]
	}
	if totalInBuckets == 0 {
		t.Error("Expected histogram buckets to be populated")
	}
}
