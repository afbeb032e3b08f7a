package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BundleMetrics tracks policy bundle loading.
//
// Metrics:
//   - atlas_eligibility_bundles_loaded: Number of bundles currently registered
//   - atlas_eligibility_bundle_reloads_total: Reload attempts by outcome
type BundleMetrics struct {
	// Bundles currently registered
	bundlesLoaded prometheus.Gauge

	// Reload attempts by outcome ("success", "failure")
	reloadsTotal *prometheus.CounterVec
}

// NewBundleMetrics creates and registers bundle metrics with the provided
// registry.
func NewBundleMetrics(cfg *Config, registry *prometheus.Registry) *BundleMetrics {
	bm := &BundleMetrics{
		bundlesLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "bundles_loaded",
				Help:      "Number of policy bundles currently registered",
			},
		),

		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "bundle_reloads_total",
				Help:      "Total number of bundle reload attempts",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(
		bm.bundlesLoaded,
		bm.reloadsTotal,
	)

	return bm
}

// RecordReload records a reload attempt and the resulting bundle count.
// A failed reload keeps the previous bundle count.
func (bm *BundleMetrics) RecordReload(outcome string, bundleCount int) {
	bm.reloadsTotal.WithLabelValues(outcome).Inc()
	bm.bundlesLoaded.Set(float64(bundleCount))
}
