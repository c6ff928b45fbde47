package oracle

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the extension's Prometheus instrumentation.
type Metrics struct {
	ObservationsTotal  *prometheus.CounterVec
	ManipulationsTotal prometheus.Counter
	ConsultsTotal      prometheus.Counter
}

var (
	metricsOnce     sync.Once
	metricsInstance *Metrics
)

// NewMetrics returns the process-wide extension metrics. Registration
// with the default registry happens once.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			ObservationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "lagoon",
				Subsystem: "oracle",
				Name:      "observations_total",
				Help:      "Observations processed, labeled accepted, rejected or skipped",
			}, []string{"status"}),
			ManipulationsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "lagoon",
				Subsystem: "oracle",
				Name:      "manipulations_total",
				Help:      "Price submissions flagged by the deviation checks",
			}),
			ConsultsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "lagoon",
				Subsystem: "oracle",
				Name:      "consults_total",
				Help:      "Successful historical price lookups",
			}),
		}
	})
	return metricsInstance
}
