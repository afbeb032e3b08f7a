package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AuditMetrics tracks claim audits.
//
// Metrics:
//   - atlas_eligibility_claim_audits_total: Audits by outcome
//   - atlas_eligibility_claim_audit_score: Distribution of audit scores
type AuditMetrics struct {
	// Audits by outcome ("passed", "failed")
	auditsTotal *prometheus.CounterVec

	// Audit score distribution (0-100)
	auditScore prometheus.Histogram
}

// NewAuditMetrics creates and registers audit metrics with the provided
// registry.
func NewAuditMetrics(cfg *Config, registry *prometheus.Registry) *AuditMetrics {
	am := &AuditMetrics{
		auditsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "claim_audits_total",
				Help:      "Total number of claim audits",
			},
			[]string{"outcome"},
		),

		auditScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "claim_audit_score",
				Help:      "Distribution of claim audit scores",
				Buckets:   []float64{0, 20, 40, 60, 70, 80, 90, 100},
			},
		),
	}

	registry.MustRegister(
		am.auditsTotal,
		am.auditScore,
	)

	return am
}

// RecordAudit records a completed claim audit.
func (am *AuditMetrics) RecordAudit(passed bool, score int) {
	outcome := "failed"
	if passed {
		outcome = "passed"
	}
	am.auditsTotal.WithLabelValues(outcome).Inc()
	am.auditScore.Observe(float64(score))
}
