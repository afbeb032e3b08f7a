package metrics

import (
	"testing"
	"time"

	"backwork/atlas/pkg/eligibility"
	"backwork/atlas/pkg/schema"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() *Config {
	return &Config{
		Enabled:   true,
		Namespace: "test",
		Subsystem: "metrics",
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector == nil {
		t.Fatal("Expected non-nil collector")
	}
	if collector.registry != registry {
		t.Error("Collector registry not set correctly")
	}
}

func TestCollector_Defaults(t *testing.T) {
	cfg := &Config{Enabled: true}
	NewCollector(cfg, nil)

	if cfg.Namespace != "atlas" {
		t.Errorf("expected default namespace atlas, got %q", cfg.Namespace)
	}
	if cfg.Subsystem != "eligibility" {
		t.Errorf("expected default subsystem eligibility, got %q", cfg.Subsystem)
	}
}

func TestCollector_ObserveEvaluation(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollector(testConfig(), registry)

	collector.ObserveEvaluation("L33822", eligibility.StatusQualified, 2*time.Millisecond)
	collector.ObserveEvaluation("L33822", eligibility.StatusQualified, 1*time.Millisecond)
	collector.ObserveEvaluation("L33822", eligibility.StatusNotQualified, 3*time.Millisecond)

	qualified := testutil.ToFloat64(
		collector.evaluationMetrics.evaluationsTotal.WithLabelValues("L33822", "qualified"))
	if qualified != 2 {
		t.Errorf("expected 2 qualified evaluations, got %v", qualified)
	}

	notQualified := testutil.ToFloat64(
		collector.evaluationMetrics.evaluationsTotal.WithLabelValues("L33822", "not_qualified"))
	if notQualified != 1 {
		t.Errorf("expected 1 not_qualified evaluation, got %v", notQualified)
	}
}

func TestCollector_ObserveCriterion(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollector(testConfig(), registry)

	collector.ObserveCriterion(schema.KindPresence, eligibility.StatusMet)
	collector.ObserveCriterion(schema.KindPresence, eligibility.StatusMet)
	collector.ObserveCriterion(schema.KindDateWindow, eligibility.StatusNotMet)

	met := testutil.ToFloat64(
		collector.evaluationMetrics.criterionResultsTotal.WithLabelValues("presence", "met"))
	if met != 2 {
		t.Errorf("expected 2 met presence verdicts, got %v", met)
	}
}

func TestCollector_RecordReload(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollector(testConfig(), registry)

	collector.RecordReload("success", 3)
	collector.RecordReload("failure", 3)

	loaded := testutil.ToFloat64(collector.bundleMetrics.bundlesLoaded)
	if loaded != 3 {
		t.Errorf("expected 3 bundles loaded, got %v", loaded)
	}

	failures := testutil.ToFloat64(
		collector.bundleMetrics.reloadsTotal.WithLabelValues("failure"))
	if failures != 1 {
		t.Errorf("expected 1 failed reload, got %v", failures)
	}
}

func TestCollector_RecordAudit(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollector(testConfig(), registry)

	collector.RecordAudit(true, 100)
	collector.RecordAudit(false, 40)
	collector.RecordAudit(false, 20)

	passed := testutil.ToFloat64(
		collector.auditMetrics.auditsTotal.WithLabelValues("passed"))
	if passed != 1 {
		t.Errorf("expected 1 passed audit, got %v", passed)
	}

	failed := testutil.ToFloat64(
		collector.auditMetrics.auditsTotal.WithLabelValues("failed"))
	if failed != 2 {
		t.Errorf("expected 2 failed audits, got %v", failed)
	}
}

func TestCollector_DisabledIsNoop(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollector(&Config{Enabled: false, Namespace: "test", Subsystem: "metrics"}, registry)

	collector.ObserveEvaluation("L33822", eligibility.StatusQualified, time.Millisecond)
	collector.ObserveCriterion(schema.KindPresence, eligibility.StatusMet)
	collector.RecordReload("success", 5)
	collector.RecordAudit(true, 100)

	total := testutil.ToFloat64(
		collector.evaluationMetrics.evaluationsTotal.WithLabelValues("L33822", "qualified"))
	if total != 0 {
		t.Errorf("expected no recording when disabled, got %v", total)
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	if collector.Handler() == nil {
		t.Error("expected non-nil handler")
	}
}
