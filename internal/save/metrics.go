package save

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — метрики сохранения и загрузки сцены
type Metrics struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
	skipped  prometheus.Counter
}

// NewMetrics регистрирует метрики в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marble",
			Name:      "scene_persistence_total",
			Help:      "Number of scene save/load operations",
		}, []string{"op", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "marble",
			Name:      "scene_persistence_duration_seconds",
			Help:      "Scene save/load duration",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marble",
			Name:      "scene_records_skipped_total",
			Help:      "Saved records skipped on load because of an unknown tag",
		}),
	}
	reg.MustRegister(m.ops, m.duration, m.skipped)
	return m
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ops.WithLabelValues(op, result).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) skip(n int) {
	if m == nil || n == 0 {
		return
	}
	m.skipped.Add(float64(n))
}
