package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PersistenceMetrics records outcomes of storage reads and writes.
type PersistenceMetrics struct {
	duration *prometheus.HistogramVec
	writes   *prometheus.CounterVec
	failures *prometheus.CounterVec
	prunes   prometheus.Counter
}

// NewPersistenceMetrics registers the persistence metrics on the provided
// registerer. A nil registerer yields a no-op instance.
func NewPersistenceMetrics(reg prometheus.Registerer) *PersistenceMetrics {
	if reg == nil {
		return &PersistenceMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "persistence_write_duration_seconds",
		Help:    "Duration of storage writes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"record"})
	writes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "persistence_writes",
		Help: "Successful storage writes.",
	}, []string{"record"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "persistence_failures",
		Help: "Failed storage writes.",
	}, []string{"record"})
	prunes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "persistence_quota_prunes",
		Help: "Quota recoveries that pruned saved quotes and history.",
	})
	reg.MustRegister(duration, writes, failures, prunes)
	return &PersistenceMetrics{
		duration: duration,
		writes:   writes,
		failures: failures,
		prunes:   prunes,
	}
}

// ObserveWrite records the duration for a write to the named record.
func (p *PersistenceMetrics) ObserveWrite(record string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(record)).Observe(duration.Seconds())
}

// IncWrite increments the write counter for the named record.
func (p *PersistenceMetrics) IncWrite(record string) {
	if p == nil || p.writes == nil {
		return
	}
	p.writes.WithLabelValues(normalizeLabel(record)).Inc()
}

// IncFailure increments the failure counter for the named record.
func (p *PersistenceMetrics) IncFailure(record string) {
	if p == nil || p.failures == nil {
		return
	}
	p.failures.WithLabelValues(normalizeLabel(record)).Inc()
}

// IncPrune counts a quota recovery pass.
func (p *PersistenceMetrics) IncPrune() {
	if p == nil || p.prunes == nil {
		return
	}
	p.prunes.Inc()
}

func normalizeLabel(record string) string {
	if record == "" {
		return "unknown"
	}
	return record
}
