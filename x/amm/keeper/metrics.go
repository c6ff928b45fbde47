package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AMMMetrics holds all Prometheus metrics for the AMM module
type AMMMetrics struct {
	// Operation metrics
	OperationsTotal *prometheus.CounterVec
	SwapVolume      *prometheus.CounterVec
	PoolsTotal      prometheus.Gauge

	// Checkpoint metrics
	CheckpointsTotal *prometheus.CounterVec

	// Fee-tier registry metrics
	EffectiveFee    *prometheus.GaugeVec
	FeeUpdatesTotal prometheus.Counter
}

var (
	ammMetricsOnce sync.Once
	ammMetrics     *AMMMetrics
)

// NewAMMMetrics creates and registers AMM metrics (singleton pattern)
func NewAMMMetrics() *AMMMetrics {
	ammMetricsOnce.Do(func() {
		ammMetrics = &AMMMetrics{
			OperationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "lagoon",
					Subsystem: "amm",
					Name:      "operations_total",
					Help:      "Pool operations by type and outcome",
				},
				[]string{"operation", "status"},
			),
			SwapVolume: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "lagoon",
					Subsystem: "amm",
					Name:      "swap_volume_total",
					Help:      "Total swap input volume in base units",
				},
				[]string{"pool_id", "denom"},
			),
			PoolsTotal: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "lagoon",
					Subsystem: "amm",
					Name:      "pools_total",
					Help:      "Total number of liquidity pools",
				},
			),
			CheckpointsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "lagoon",
					Subsystem: "amm",
					Name:      "checkpoints_total",
					Help:      "Checkpoint dispatches by kind and outcome",
				},
				[]string{"checkpoint", "extension", "status"},
			),
			EffectiveFee: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "lagoon",
					Subsystem: "amm",
					Name:      "effective_fee_ppm",
					Help:      "Effective fee per pool in parts-per-million",
				},
				[]string{"pool_id"},
			),
			FeeUpdatesTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "lagoon",
					Subsystem: "amm",
					Name:      "fee_updates_total",
					Help:      "Fee-tier registry updates",
				},
			),
		}
	})
	return ammMetrics
}
