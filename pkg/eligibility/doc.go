// Package eligibility evaluates an extracted patient record against a
// coverage policy bundle and produces a per-criterion verdict plus an
// aggregate determination with supporting evidence, confidence, and a
// gap summary.
//
// # Architecture
//
// The engine uses a three-layer design:
//
//  1. Criterion Evaluator - pure per-kind matching rules (presence,
//     date window, numeric threshold, code membership, judgment
//     pass-through); missing data maps to insufficient evidence, never
//     to an error
//  2. Alternative-Group Resolver - collapses mutually substitutable
//     criteria into a single required slot while surfacing every
//     member's own result
//  3. Aggregator - a pure reduction over slot statuses producing counts,
//     gaps, overall status, and a template-generated summary
//
// # Evaluation Flow
//
//	ExtractedRecord + PolicyBundle
//	       ↓
//	Criterion Evaluator (once per criterion, order-independent)
//	       ↓
//	Alternative-Group Resolver (grouped criteria → one slot)
//	       ↓
//	Aggregator (single pass over slots)
//	       ↓
//	Determination
//
// # Basic Usage
//
//	eng, err := eligibility.NewEngine(registry, nil, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	det, err := eng.EvaluateAt(ctx, "L33822", rec, asOf)
//	if err != nil {
//	    // unknown policy or structural failure; evidentiary gaps are
//	    // never errors
//	}
//
//	if det.OverallStatus == eligibility.StatusReviewNeeded {
//	    for _, gap := range det.GapsIdentified {
//	        fmt.Println(gap)
//	    }
//	}
//
// # Determinism
//
// Evaluating the same (policy, record, as-of date) triple twice yields an
// identical Determination: explanations and summaries come from fixed
// templates over computed facts, and the engine holds no state between
// calls. Criteria are evaluated concurrently but results are reassembled
// in the bundle's declared order before returning.
//
// # Thread Safety
//
// The engine is safe for concurrent use. Evaluations of different
// records, or of the same record against different policies, share
// nothing but the read-only bundle registry.
package eligibility
