package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EvaluationMetrics tracks metrics related to eligibility evaluation.
//
// Metrics:
//   - atlas_eligibility_evaluations_total: Total evaluations by policy and outcome
//   - atlas_eligibility_evaluation_duration_seconds: Evaluation duration
//   - atlas_eligibility_criterion_results_total: Per-criterion results by kind and status
type EvaluationMetrics struct {
	// Total evaluations by policy and overall status
	evaluationsTotal *prometheus.CounterVec

	// Evaluation duration histogram
	evaluationDuration *prometheus.HistogramVec

	// Per-criterion verdicts by criterion kind and status
	criterionResultsTotal *prometheus.CounterVec
}

// NewEvaluationMetrics creates and registers evaluation metrics with the
// provided registry.
func NewEvaluationMetrics(cfg *Config, registry *prometheus.Registry) *EvaluationMetrics {
	em := &EvaluationMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluations_total",
				Help:      "Total number of eligibility evaluations",
			},
			[]string{"policy_id", "overall_status"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of eligibility evaluation in seconds",
				// Evaluations are in-memory and should be fast (< 10ms)
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
			[]string{"policy_id"},
		),

		criterionResultsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "criterion_results_total",
				Help:      "Total number of per-criterion verdicts",
			},
			[]string{"kind", "status"},
		),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.evaluationDuration,
		em.criterionResultsTotal,
	)

	return em
}

// RecordEvaluation records a completed eligibility evaluation.
func (em *EvaluationMetrics) RecordEvaluation(policyID, overallStatus string, duration time.Duration) {
	em.evaluationsTotal.WithLabelValues(policyID, overallStatus).Inc()
	em.evaluationDuration.WithLabelValues(policyID).Observe(duration.Seconds())
}

// RecordCriterion records a single criterion verdict.
func (em *EvaluationMetrics) RecordCriterion(kind, status string) {
	em.criterionResultsTotal.WithLabelValues(kind, status).Inc()
}
