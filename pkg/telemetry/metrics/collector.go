package metrics

import (
	"time"

	"backwork/atlas/pkg/eligibility"
	"backwork/atlas/pkg/schema"

	"github.com/prometheus/client_golang/prometheus"
)

// Config configures metrics collection.
type Config struct {
	// Enabled turns metric recording on. When false, record calls are
	// no-ops.
	Enabled bool

	// Namespace is the metric name prefix. Default: "atlas"
	Namespace string

	// Subsystem is the second metric name segment. Default: "eligibility"
	Subsystem string
}

// Collector is the main orchestrator for all Prometheus metrics in Atlas.
// It manages metric registration and provides a unified interface for
// recording metrics across all components.
//
// Collector implements eligibility.Observer so it can be wired directly
// into the evaluation engine.
type Collector struct {
	config   *Config
	registry *prometheus.Registry

	// Evaluation metrics
	evaluationMetrics *EvaluationMetrics

	// Bundle loading metrics
	bundleMetrics *BundleMetrics

	// Claim audit metrics
	auditMetrics *AuditMetrics
}

// Statically assert the engine observer contract.
var _ eligibility.Observer = (*Collector)(nil)

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// registry is created.
func NewCollector(cfg *Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "atlas"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "eligibility"
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.evaluationMetrics = NewEvaluationMetrics(cfg, registry)
	c.bundleMetrics = NewBundleMetrics(cfg, registry)
	c.auditMetrics = NewAuditMetrics(cfg, registry)

	return c
}

// ObserveEvaluation records metrics for a completed eligibility
// evaluation. It satisfies eligibility.Observer.
func (c *Collector) ObserveEvaluation(policyID string, status eligibility.OverallStatus, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.evaluationMetrics.RecordEvaluation(policyID, string(status), duration)
}

// ObserveCriterion records a single criterion verdict. It satisfies
// eligibility.Observer.
func (c *Collector) ObserveCriterion(kind schema.CriterionKind, status eligibility.CriterionStatus) {
	if !c.config.Enabled {
		return
	}

	c.evaluationMetrics.RecordCriterion(string(kind), string(status))
}

// RecordReload records a bundle reload attempt.
//
// Parameters:
//   - outcome: "success" or "failure"
//   - bundleCount: number of bundles registered after the attempt
func (c *Collector) RecordReload(outcome string, bundleCount int) {
	if !c.config.Enabled {
		return
	}

	c.bundleMetrics.RecordReload(outcome, bundleCount)
}

// RecordAudit records a completed claim audit.
func (c *Collector) RecordAudit(passed bool, score int) {
	if !c.config.Enabled {
		return
	}

	c.auditMetrics.RecordAudit(passed, score)
}

// Registry returns the Prometheus registry used by this collector.
// This can be used to create an HTTP handler for the /metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
