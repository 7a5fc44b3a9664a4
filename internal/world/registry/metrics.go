package registry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/marble/internal/world/object"
)

// Metrics публикует размер реестров в Prometheus.
//
// Метрики:
// * marble_registry_objects{category} — gauge
type Metrics struct {
	objects *prometheus.GaugeVec
}

// NewMetrics создаёт метрики и регистрирует их в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		objects: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "marble",
			Name:      "registry_objects",
			Help:      "Количество живых объектов в реестре категории.",
		}, []string{"category"}),
	}
	reg.MustRegister(m.objects)
	return m
}

func (m *Metrics) observe(category object.Category, size int) {
	m.objects.WithLabelValues(category.String()).Set(float64(size))
}
