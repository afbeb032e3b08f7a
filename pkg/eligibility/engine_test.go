package eligibility

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"backwork/atlas/pkg/record"
	"backwork/atlas/pkg/schema"
)

// mapSource is a minimal in-memory bundle source for tests.
type mapSource map[string]*schema.PolicyBundle

func (m mapSource) Get(policyID string) (*schema.PolicyBundle, bool) {
	b, ok := m[policyID]
	return b, ok
}

// cgmBundle mirrors the L33822 CGM criteria: five standalone required
// criteria plus a two-member alternative group, six required slots in
// total.
func cgmBundle() *schema.PolicyBundle {
	return &schema.PolicyBundle{
		ID:      "L33822",
		Title:   "Glucose Monitors",
		Version: "2026-01",
		Criteria: []*schema.CriterionDefinition{
			{
				ID:       "diabetes-diagnosis",
				Name:     "diabetes mellitus diagnosis",
				Kind:     schema.KindCodeMembership,
				Required: true,
				Parameters: schema.Parameters{
					Fact:         record.FactDiagnoses,
					CodePrefixes: []string{"E10", "E11", "E13", "O24"},
				},
			},
			{
				ID:       "face-to-face",
				Name:     "face-to-face encounter",
				Kind:     schema.KindDateWindow,
				Required: true,
				Parameters: schema.Parameters{
					Fact:       record.FactEncounters,
					WindowDays: 180,
				},
			},
			{
				ID:               "insulin-therapy",
				Name:             "intensive insulin therapy",
				Kind:             schema.KindPresence,
				AlternativeGroup: "therapy-or-hypoglycemia",
				Parameters:       schema.Parameters{Fact: record.FactInsulinTherapy},
			},
			{
				ID:               "problematic-hypoglycemia",
				Name:             "problematic hypoglycemia",
				Kind:             schema.KindPresence,
				AlternativeGroup: "therapy-or-hypoglycemia",
				Parameters:       schema.Parameters{Fact: record.FactHypoglycemiaEvents},
			},
			{
				ID:         "written-order",
				Name:       "detailed written order",
				Kind:       schema.KindPresence,
				Required:   true,
				Parameters: schema.Parameters{Fact: record.FactWrittenOrder},
			},
			{
				ID:         "medical-necessity",
				Name:       "medical necessity statement",
				Kind:       schema.KindPresence,
				Required:   true,
				Parameters: schema.Parameters{Fact: record.FactNecessityStatement},
			},
			{
				ID:         "training",
				Name:       "training documented",
				Kind:       schema.KindFreeTextJudgment,
				Required:   true,
				Parameters: schema.Parameters{Fact: record.FactTraining},
			},
		},
	}
}

func testEngine(t *testing.T, bundles ...*schema.PolicyBundle) *Engine {
	t.Helper()

	source := mapSource{}
	for _, b := range bundles {
		source[b.ID] = b
	}

	config := DefaultConfig().WithClock(func() time.Time { return testAsOf })
	engine, err := NewEngine(source, config, nil)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func strongEvidence() record.Evidence {
	return record.Evidence{Confidence: 0.9}
}

// qualifyingRecord satisfies every criterion in cgmBundle via the
// insulin arm of the alternative group.
func qualifyingRecord() *record.ExtractedRecord {
	return record.NewExtractedRecord().
		AddFact(record.FactDiagnoses, record.CodesValue("E11.65"), strongEvidence()).
		AddFact(record.FactEncounters, record.DatesValue(testAsOf.AddDate(0, 0, -45)), strongEvidence()).
		AddFact(record.FactInsulinTherapy, record.BoolValue(true), strongEvidence()).
		AddFact(record.FactWrittenOrder, record.BoolValue(true), strongEvidence()).
		AddFact(record.FactNecessityStatement, record.TextValue("CGM required for glycemic management"), strongEvidence()).
		AddFact(record.FactTraining, record.JudgmentValue(record.JudgmentMet), strongEvidence())
}

func TestEvaluate_Qualified(t *testing.T) {
	engine := testEngine(t, cgmBundle())

	det, err := engine.Evaluate(context.Background(), "L33822", qualifyingRecord())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if det.OverallStatus != StatusQualified {
		t.Errorf("expected qualified, got %s: %s", det.OverallStatus, det.Summary)
	}
	if det.TotalCount != 6 {
		t.Errorf("expected 6 required slots, got %d", det.TotalCount)
	}
	if det.MetCount != 6 {
		t.Errorf("expected 6 met slots, got %d", det.MetCount)
	}
	if len(det.GapsIdentified) != 0 {
		t.Errorf("expected no gaps, got %v", det.GapsIdentified)
	}
	if !det.Qualified() {
		t.Error("Qualified() should report true")
	}
}

func TestEvaluate_HypoglycemiaArmAlsoQualifies(t *testing.T) {
	engine := testEngine(t, cgmBundle())

	rec := qualifyingRecord()
	delete(rec.Facts, record.FactInsulinTherapy)
	rec.AddFact(record.FactHypoglycemiaEvents, record.BoolValue(true), strongEvidence())

	det, err := engine.Evaluate(context.Background(), "L33822", rec)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if det.OverallStatus != StatusQualified {
		t.Errorf("expected qualified via hypoglycemia arm, got %s", det.OverallStatus)
	}
}

func TestEvaluate_NotQualifiedOutranksReview(t *testing.T) {
	engine := testEngine(t, cgmBundle())

	// Encounter outside the window (not_met) and written order absent
	// (insufficient). A demonstrable failure decides the overall status.
	rec := qualifyingRecord().
		AddFact(record.FactEncounters, record.DatesValue(testAsOf.AddDate(0, 0, -250)), strongEvidence())
	delete(rec.Facts, record.FactWrittenOrder)

	det, err := engine.Evaluate(context.Background(), "L33822", rec)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if det.OverallStatus != StatusNotQualified {
		t.Errorf("expected not_qualified, got %s", det.OverallStatus)
	}
	if len(det.GapsIdentified) != 2 {
		t.Errorf("expected 2 gaps, got %d: %v", len(det.GapsIdentified), det.GapsIdentified)
	}
}

func TestEvaluate_ReviewNeededOnMissingEvidence(t *testing.T) {
	engine := testEngine(t, cgmBundle())

	rec := qualifyingRecord()
	delete(rec.Facts, record.FactTraining)

	det, err := engine.Evaluate(context.Background(), "L33822", rec)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if det.OverallStatus != StatusReviewNeeded {
		t.Errorf("expected review_needed, got %s", det.OverallStatus)
	}
	if det.MetCount != 5 {
		t.Errorf("expected 5 met slots, got %d", det.MetCount)
	}
	if len(det.GapsIdentified) != 1 {
		t.Fatalf("expected 1 gap, got %v", det.GapsIdentified)
	}
}

func TestEvaluate_EmptyRecordIsReviewNotDenial(t *testing.T) {
	engine := testEngine(t, cgmBundle())

	det, err := engine.Evaluate(context.Background(), "L33822", record.NewExtractedRecord())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	// Absence of evidence is never a demonstrable failure.
	if det.OverallStatus != StatusReviewNeeded {
		t.Errorf("expected review_needed for empty record, got %s", det.OverallStatus)
	}
	if det.MetCount != 0 {
		t.Errorf("expected 0 met slots, got %d", det.MetCount)
	}
	if len(det.GapsIdentified) != det.TotalCount {
		t.Errorf("expected one gap per required slot, got %d of %d", len(det.GapsIdentified), det.TotalCount)
	}
}

func TestEvaluate_UnknownPolicy(t *testing.T) {
	engine := testEngine(t, cgmBundle())

	_, err := engine.Evaluate(context.Background(), "L99999", qualifyingRecord())
	if err == nil {
		t.Fatal("expected error for unknown policy")
	}
	if !IsUnknownPolicy(err) {
		t.Errorf("expected UnknownPolicyError, got %T: %v", err, err)
	}

	var upe *UnknownPolicyError
	if errors.As(err, &upe) && upe.PolicyID != "L99999" {
		t.Errorf("expected policy id in error, got %q", upe.PolicyID)
	}
}

func TestEvaluate_NilRecord(t *testing.T) {
	engine := testEngine(t, cgmBundle())

	_, err := engine.Evaluate(context.Background(), "L33822", nil)
	if !errors.Is(err, ErrNilRecord) {
		t.Errorf("expected ErrNilRecord, got %v", err)
	}
}

func TestEvaluate_ResultsFollowBundleOrder(t *testing.T) {
	engine := testEngine(t, cgmBundle())
	bundle := cgmBundle()

	det, err := engine.Evaluate(context.Background(), "L33822", qualifyingRecord())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if len(det.Results) != len(bundle.Criteria) {
		t.Fatalf("expected %d results, got %d", len(bundle.Criteria), len(det.Results))
	}
	for i, def := range bundle.Criteria {
		if det.Results[i].CriterionID != def.ID {
			t.Errorf("result %d: expected %s, got %s", i, def.ID, det.Results[i].CriterionID)
		}
	}
}

func TestEvaluateAt_Idempotent(t *testing.T) {
	engine := testEngine(t, cgmBundle())
	rec := qualifyingRecord()

	first, err := engine.EvaluateAt(context.Background(), "L33822", rec, testAsOf)
	if err != nil {
		t.Fatalf("first evaluation failed: %v", err)
	}
	second, err := engine.EvaluateAt(context.Background(), "L33822", rec, testAsOf)
	if err != nil {
		t.Fatalf("second evaluation failed: %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(a) != string(b) {
		t.Errorf("expected byte-identical determinations:\n%s\n%s", a, b)
	}
}

func TestEvaluate_NonRequiredCriterionDoesNotAffectStatus(t *testing.T) {
	bundle := cgmBundle()
	bundle.Criteria = append(bundle.Criteria, &schema.CriterionDefinition{
		ID:       "a1c-recent",
		Name:     "recent A1C",
		Kind:     schema.KindNumericThreshold,
		Required: false,
		Parameters: schema.Parameters{
			Fact:       record.FactA1C,
			Comparator: schema.ComparatorLessEqual,
			Threshold:  10.0,
		},
	})
	engine := testEngine(t, bundle)

	// The non-required criterion fails; the determination must not care.
	rec := qualifyingRecord().
		AddFact(record.FactA1C, record.NumberValue(12.5), strongEvidence())

	det, err := engine.Evaluate(context.Background(), "L33822", rec)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if det.OverallStatus != StatusQualified {
		t.Errorf("expected qualified despite optional failure, got %s", det.OverallStatus)
	}
	if det.TotalCount != 6 {
		t.Errorf("expected optional criterion excluded from denominator, got total %d", det.TotalCount)
	}

	// The optional result still appears in Results for reviewers.
	r := det.Result("a1c-recent")
	if r == nil {
		t.Fatal("expected optional criterion result to be tracked")
	}
	if r.Status != StatusNotMet {
		t.Errorf("expected optional criterion not_met, got %s", r.Status)
	}
}

func TestEvaluate_SummaryCapsGaps(t *testing.T) {
	engine := testEngine(t, cgmBundle())

	det, err := engine.Evaluate(context.Background(), "L33822", record.NewExtractedRecord())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if len(det.GapsIdentified) <= maxSummaryGaps {
		t.Fatalf("test needs more than %d gaps, got %d", maxSummaryGaps, len(det.GapsIdentified))
	}

	want := fmt.Sprintf("(+%d more)", len(det.GapsIdentified)-maxSummaryGaps)
	if !strings.Contains(det.Summary, want) {
		t.Errorf("expected summary to note %q, got: %s", want, det.Summary)
	}
}

func TestEvaluate_ConfidenceBoundedByEvidence(t *testing.T) {
	engine := testEngine(t, cgmBundle())

	rec := qualifyingRecord().
		AddFact(record.FactWrittenOrder, record.BoolValue(true), record.Evidence{Confidence: 0.61})

	det, err := engine.Evaluate(context.Background(), "L33822", rec)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	r := det.Result("written-order")
	if r == nil {
		t.Fatal("missing written-order result")
	}
	if r.Confidence > 0.61 {
		t.Errorf("result confidence %f exceeds its evidence confidence", r.Confidence)
	}
}

type stubAdapter struct {
	rec *record.ExtractedRecord
	err error
}

func (a *stubAdapter) Extract(ctx context.Context, doc record.SourceDocument) (*record.ExtractedRecord, error) {
	return a.rec, a.err
}

func TestEvaluateSource_ExtractionFailureSkipsEvaluation(t *testing.T) {
	engine := testEngine(t, cgmBundle())

	adapter := &stubAdapter{err: &record.ExtractionError{
		SourceID: "doc-1",
		Adapter:  "stub",
		Cause:    errors.New("unreadable scan"),
	}}

	det, err := engine.EvaluateSource(context.Background(), "L33822", adapter, record.SourceDocument{ID: "doc-1"})
	if det != nil {
		t.Error("expected no determination on extraction failure")
	}
	if !IsExtractionFailed(err) {
		t.Errorf("expected extraction failure, got %v", err)
	}
}

func TestEvaluateSource_WrapsPlainError(t *testing.T) {
	engine := testEngine(t, cgmBundle())

	adapter := &stubAdapter{err: errors.New("timeout")}

	_, err := engine.EvaluateSource(context.Background(), "L33822", adapter, record.SourceDocument{ID: "doc-2"})
	if !IsExtractionFailed(err) {
		t.Errorf("expected plain adapter error to surface as extraction failure, got %v", err)
	}
}

func TestEvaluateSource_Success(t *testing.T) {
	engine := testEngine(t, cgmBundle())

	adapter := &stubAdapter{rec: qualifyingRecord()}

	det, err := engine.EvaluateSource(context.Background(), "L33822", adapter, record.SourceDocument{ID: "doc-3"})
	if err != nil {
		t.Fatalf("EvaluateSource failed: %v", err)
	}
	if det.OverallStatus != StatusQualified {
		t.Errorf("expected qualified, got %s", det.OverallStatus)
	}
}

func TestEvaluateAt_CancelledContext(t *testing.T) {
	engine := testEngine(t, cgmBundle())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.EvaluateAt(ctx, "L33822", qualifyingRecord(), testAsOf)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

type countingObserver struct {
	evaluations int
	criteria    int
}

func (o *countingObserver) ObserveEvaluation(string, OverallStatus, time.Duration) {
	o.evaluations++
}

func (o *countingObserver) ObserveCriterion(schema.CriterionKind, CriterionStatus) {
	o.criteria++
}

func TestEngine_ObserverReceivesOutcomes(t *testing.T) {
	engine := testEngine(t, cgmBundle())
	obs := &countingObserver{}
	engine.WithObserver(obs)

	if _, err := engine.Evaluate(context.Background(), "L33822", qualifyingRecord()); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if obs.evaluations != 1 {
		t.Errorf("expected 1 evaluation observation, got %d", obs.evaluations)
	}
	if obs.criteria != len(cgmBundle().Criteria) {
		t.Errorf("expected %d criterion observations, got %d", len(cgmBundle().Criteria), obs.criteria)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"floor above one", func(c *Config) { c.ConfidenceFloor = 1.5 }, true},
		{"negative floor", func(c *Config) { c.ConfidenceFloor = -0.1 }, true},
		{"zero concurrency", func(c *Config) { c.MaxConcurrency = 0 }, true},
		{"nil clock", func(c *Config) { c.Clock = nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
