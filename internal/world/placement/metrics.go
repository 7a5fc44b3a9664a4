package placement

import "github.com/prometheus/client_golang/prometheus"

// Metrics считает решения движка размещения.
//
// Метрики:
// * marble_placement_snaps_total{result} — counter (snapped/missed)
// * marble_placement_facing_total — counter
type Metrics struct {
	snaps  *prometheus.CounterVec
	facers prometheus.Counter
}

// NewMetrics создаёт метрики и регистрирует их в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		snaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marble",
			Name:      "placement_snaps_total",
			Help:      "Попытки стыковки шарика с горкой.",
		}, []string{"result"}),
		facers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "marble",
			Name:      "placement_facing_total",
			Help:      "Домино, развёрнутые к соседнему домино.",
		}),
	}
	reg.MustRegister(m.snaps, m.facers)
	return m
}

func (m *Metrics) snapped() {
	if m != nil {
		m.snaps.WithLabelValues("snapped").Inc()
	}
}

func (m *Metrics) missed() {
	if m != nil {
		m.snaps.WithLabelValues("missed").Inc()
	}
}

func (m *Metrics) facing() {
	if m != nil {
		m.facers.Inc()
	}
}
