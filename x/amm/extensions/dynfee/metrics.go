package dynfee

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the extension's Prometheus instrumentation.
type Metrics struct {
	FeeDerivationsTotal prometheus.Counter
	MarketScore         *prometheus.GaugeVec
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
			FeeDerivationsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "lagoon",
				Subsystem: "dynfee",
				Name:      "fee_derivations_total",
				Help:      "Number of dynamic fee recomputations pushed to the registry",
			}),
			MarketScore: promauto.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "lagoon",
				Subsystem: "dynfee",
				Name:      "market_score",
				Help:      "Latest market condition scores per pool and dimension",
			}, []string{"pool_id", "dimension"}),
		}
	})
	return metricsInstance
}
