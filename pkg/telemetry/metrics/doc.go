// Package metrics provides Prometheus metrics collection for Atlas.
//
// # Overview
//
// The metrics package implements Prometheus metrics for monitoring
// eligibility evaluations, policy bundle loading, and claim audits.
//
// # Metrics Categories
//
//   - Evaluation Metrics: Evaluation count, duration, and per-criterion results
//   - Bundle Metrics: Loaded bundle count and reload outcomes
//   - Audit Metrics: Claim audit count and score distribution
//
// # Usage
//
//	// Create collector
//	collector := metrics.NewCollector(config, registry)
//
//	// Wire it into the evaluation engine
//	engine.WithObserver(collector)
//
//	// Record bundle reloads
//	collector.RecordReload("success", registry.Count())
//
// # Prometheus Endpoint
//
// All metrics are exposed on the /metrics endpoint in standard Prometheus format:
//
//	# HELP atlas_eligibility_evaluations_total Total number of eligibility evaluations
//	# TYPE atlas_eligibility_evaluations_total counter
//	atlas_eligibility_evaluations_total{policy_id="L33822",overall_status="qualified"} 1234
package metrics
