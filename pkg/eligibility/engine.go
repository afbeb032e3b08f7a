package eligibility

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"backwork/atlas/pkg/record"
	"backwork/atlas/pkg/schema"
)

// BundleSource provides validated policy bundles to the engine. It is
// satisfied by registry.BundleRegistry; the engine only needs lookup.
type BundleSource interface {
	// Get retrieves a bundle by policy id.
	Get(policyID string) (*schema.PolicyBundle, bool)
}

// Observer receives evaluation outcomes for instrumentation. The zero
// value of the engine uses a no-op observer; telemetry/metrics provides
// a Prometheus-backed implementation.
type Observer interface {
	// ObserveEvaluation records one completed evaluation.
	ObserveEvaluation(policyID string, status OverallStatus, duration time.Duration)

	// ObserveCriterion records one criterion verdict.
	ObserveCriterion(kind schema.CriterionKind, status CriterionStatus)
}

// Engine evaluates extracted records against registered policy bundles.
// It holds no mutable state across calls: the bundle source is read-only
// for the duration of an evaluation, and a fresh determination is built
// per request.
type Engine struct {
	source   BundleSource
	config   *Config
	logger   *slog.Logger
	observer Observer
}

// NewEngine creates a new eligibility engine.
func NewEngine(source BundleSource, config *Config, logger *slog.Logger) (*Engine, error) {
	if source == nil {
		return nil, fmt.Errorf("bundle source cannot be nil")
	}

	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		source:   source,
		config:   config,
		logger:   logger.With("component", "eligibility.engine"),
		observer: noopObserver{},
	}, nil
}

// WithObserver attaches an evaluation observer.
func (e *Engine) WithObserver(o Observer) *Engine {
	if o != nil {
		e.observer = o
	}
	return e
}

// Evaluate evaluates the record against the named policy using the
// configured clock as the evaluation reference date.
func (e *Engine) Evaluate(ctx context.Context, policyID string, rec *record.ExtractedRecord) (*Determination, error) {
	return e.EvaluateAt(ctx, policyID, rec, e.config.Clock())
}

// EvaluateAt evaluates the record against the named policy with an
// explicit as-of date for date-window checks. An unknown policy id
// returns *UnknownPolicyError; evidentiary gaps never produce an error.
func (e *Engine) EvaluateAt(ctx context.Context, policyID string, rec *record.ExtractedRecord, asOf time.Time) (*Determination, error) {
	if rec == nil {
		return nil, ErrNilRecord
	}

	bundle, ok := e.source.Get(policyID)
	if !ok {
		return nil, &UnknownPolicyError{PolicyID: policyID}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	results := e.evaluateCriteria(bundle, rec, asOf)

	byID := make(map[string]*CriterionResult, len(results))
	for _, r := range results {
		byID[r.CriterionID] = r
	}

	slots := buildSlots(bundle, byID)
	det := aggregate(bundle, results, slots, asOf)

	duration := time.Since(start)
	e.observer.ObserveEvaluation(bundle.ID, det.OverallStatus, duration)
	for i, r := range results {
		e.observer.ObserveCriterion(bundle.Criteria[i].Kind, r.Status)
	}

	e.logger.Debug("evaluation completed",
		"policy_id", bundle.ID,
		"overall_status", det.OverallStatus,
		"met_count", det.MetCount,
		"total_count", det.TotalCount,
		"duration_ms", duration.Milliseconds(),
	)

	return det, nil
}

// EvaluateSource runs the extraction adapter and, on success, evaluates
// the produced record. An adapter failure is returned as-is without
// invoking any criterion evaluation; it is never downgraded to "all
// criteria insufficient".
func (e *Engine) EvaluateSource(ctx context.Context, policyID string, adapter record.ExtractionAdapter, doc record.SourceDocument) (*Determination, error) {
	if adapter == nil {
		return nil, fmt.Errorf("extraction adapter cannot be nil")
	}

	rec, err := adapter.Extract(ctx, doc)
	if err != nil {
		e.logger.Warn("extraction failed, skipping evaluation",
			"policy_id", policyID,
			"source_id", doc.ID,
			"error", err,
		)
		var ee *record.ExtractionError
		if !errors.As(err, &ee) {
			err = &record.ExtractionError{SourceID: doc.ID, Cause: err}
		}
		return nil, err
	}

	return e.Evaluate(ctx, policyID, rec)
}

// evaluateCriteria evaluates every criterion, concurrently up to the
// configured bound. Evaluation is embarrassingly parallel; results are
// written by index so the returned slice follows the bundle's declared
// criterion order.
func (e *Engine) evaluateCriteria(bundle *schema.PolicyBundle, rec *record.ExtractedRecord, asOf time.Time) []*CriterionResult {
	results := make([]*CriterionResult, len(bundle.Criteria))

	sem := make(chan struct{}, e.config.MaxConcurrency)
	var wg sync.WaitGroup

	for i, def := range bundle.Criteria {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, def *schema.CriterionDefinition) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = evaluateCriterion(def, rec, asOf, e.config.ConfidenceFloor)
		}(i, def)
	}

	wg.Wait()
	return results
}

// noopObserver discards all observations.
type noopObserver struct{}

func (noopObserver) ObserveEvaluation(string, OverallStatus, time.Duration)  {}
func (noopObserver) ObserveCriterion(schema.CriterionKind, CriterionStatus) {}
