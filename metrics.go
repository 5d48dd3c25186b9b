package qhamming

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// trialsTotal counts finished trials. Labels: outcome (success, failure)
	trialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qhamming",
		Subsystem: "runner",
		Name:      "trials_total",
		Help:      "Total trials run, by outcome",
	}, []string{"outcome"})

	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "qhamming",
		Subsystem: "runner",
		Name:      "batch_duration_seconds",
		Help:      "Time to run one batch of trials",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
	})

	schedulingFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "qhamming",
		Subsystem: "pool",
		Name:      "scheduling_failures_total",
		Help:      "Batches that could not be handed to a worker in time",
	})
)

// Metrics aggregates what the pool has done since it started.
type Metrics struct {
	mu                 sync.RWMutex
	WorkerCount        int
	JobQueueSize       int
	BatchCount         int64
	TrialCount         int64
	Successes          int64
	Failures           int64
	TotalBatchTime     time.Duration
	AverageBatchTime   time.Duration
	SchedulingFailures int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) recordBatch(duration time.Duration, res BatchResult) {
	trialsTotal.WithLabelValues("success").Add(float64(res.Successes))
	trialsTotal.WithLabelValues("failure").Add(float64(res.Trials - res.Successes))
	batchDuration.Observe(duration.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	m.BatchCount++
	m.TrialCount += int64(res.Trials)
	m.Successes += int64(res.Successes)
	m.Failures += int64(res.Trials - res.Successes)
	m.TotalBatchTime += duration
	m.AverageBatchTime = m.TotalBatchTime / time.Duration(m.BatchCount)
}

func (m *Metrics) recordSchedulingFailure() {
	schedulingFailures.Inc()

	m.mu.Lock()
	m.SchedulingFailures++
	m.mu.Unlock()
}

// SuccessRate is the running average over every trial recorded so far.
func (m *Metrics) SuccessRate() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.TrialCount == 0 {
		return 0
	}
	return float64(m.Successes) / float64(m.TrialCount)
}

func (m *Metrics) ExportMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"worker_count":        m.WorkerCount,
		"queue_size":          m.JobQueueSize,
		"batches":             m.BatchCount,
		"trials":              m.TrialCount,
		"successes":           m.Successes,
		"failures":            m.Failures,
		"avg_batch_ms":        m.AverageBatchTime.Milliseconds(),
		"scheduling_failures": m.SchedulingFailures,
	}
}
