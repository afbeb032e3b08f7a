package eligibility

import (
	"fmt"
	"strings"
	"time"

	"backwork/atlas/pkg/record"
	"backwork/atlas/pkg/schema"
)

// evaluateCriterion applies the matching rule for the definition's kind
// to the record and returns the verdict. It is a pure function: missing
// or low-confidence data maps to insufficient evidence, never to an
// error. defaultFloor is the engine-wide confidence floor; a per-
// criterion override in the parameters takes precedence.
func evaluateCriterion(def *schema.CriterionDefinition, rec *record.ExtractedRecord, asOf time.Time, defaultFloor float64) *CriterionResult {
	floor := defaultFloor
	if def.Parameters.ConfidenceFloor > 0 {
		floor = def.Parameters.ConfidenceFloor
	}

	fact, ok := rec.Fact(def.Parameters.Fact)
	if !ok {
		return absentResult(def)
	}

	if fact.Evidence.Confidence < floor {
		return belowFloorResult(def, fact, floor)
	}

	switch def.Kind {
	case schema.KindPresence:
		return evaluatePresence(def, fact)
	case schema.KindDateWindow:
		return evaluateDateWindow(def, fact, asOf)
	case schema.KindNumericThreshold:
		return evaluateNumericThreshold(def, fact)
	case schema.KindCodeMembership:
		return evaluateCodeMembership(def, fact)
	case schema.KindFreeTextJudgment:
		return evaluateJudgment(def, fact)
	default:
		// Unreachable after bundle validation; treat as undecidable
		// rather than guessing.
		return &CriterionResult{
			CriterionID: def.ID,
			Name:        def.Name,
			Status:      StatusInsufficientEvidence,
			Explanation: fmt.Sprintf("Criterion kind %q has no matching rule.", def.Kind),
		}
	}
}

// absentResult is the verdict when the named fact was not extracted at
// all. Absence is distinct from an explicit negative finding.
func absentResult(def *schema.CriterionDefinition) *CriterionResult {
	return &CriterionResult{
		CriterionID:    def.ID,
		Name:           def.Name,
		Status:         StatusInsufficientEvidence,
		Confidence:     0,
		Explanation:    fmt.Sprintf("No %s information was extracted from the record.", factLabel(def)),
		Recommendation: fmt.Sprintf("Obtain and document %s.", def.Name),
	}
}

// belowFloorResult is the verdict when the fact exists but its
// extraction confidence cannot support a decision either way.
func belowFloorResult(def *schema.CriterionDefinition, fact *record.Fact, floor float64) *CriterionResult {
	r := resultFromFact(def, fact)
	r.Status = StatusInsufficientEvidence
	r.Explanation = fmt.Sprintf("Extraction confidence %.2f for %s is below the %.2f floor.", fact.Evidence.Confidence, factLabel(def), floor)
	r.Recommendation = fmt.Sprintf("Verify %s against the source document.", def.Name)
	return r
}

// evaluatePresence handles the presence kind: met if the fact is
// affirmative, not met on an explicit negative finding.
func evaluatePresence(def *schema.CriterionDefinition, fact *record.Fact) *CriterionResult {
	r := resultFromFact(def, fact)

	switch {
	case fact.Value.Negative:
		r.Status = StatusNotMet
		r.Explanation = fmt.Sprintf("Record documents an explicit negative finding for %s.", factLabel(def))
		r.Recommendation = fmt.Sprintf("Document %s if clinically applicable.", def.Name)
	case fact.Value.Affirmative():
		r.Status = StatusMet
		r.Explanation = fmt.Sprintf("%s documented with extraction confidence %.2f.", def.Name, fact.Evidence.Confidence)
	default:
		r.Status = StatusInsufficientEvidence
		r.Explanation = fmt.Sprintf("Extracted %s is empty or indeterminate.", factLabel(def))
		r.Recommendation = fmt.Sprintf("Obtain and document %s.", def.Name)
	}

	return r
}

// evaluateDateWindow handles the date_window kind: the most recent
// qualifying date must fall within the configured window of the as-of
// date.
func evaluateDateWindow(def *schema.CriterionDefinition, fact *record.Fact, asOf time.Time) *CriterionResult {
	r := resultFromFact(def, fact)
	window := def.Parameters.WindowDays

	latest, ok := fact.Value.MostRecentDate()
	if !ok {
		r.Status = StatusInsufficientEvidence
		r.Confidence = 0
		r.Explanation = fmt.Sprintf("No qualifying %s date found in the record.", factLabel(def))
		r.Recommendation = fmt.Sprintf("Document %s within %d days of the order.", def.Name, window)
		return r
	}

	daysAgo := int(asOf.Sub(latest).Hours() / 24)
	if daysAgo <= window {
		r.Status = StatusMet
		r.Explanation = fmt.Sprintf("Most recent %s was %d days before the as-of date; within the %d-day window.", factLabel(def), daysAgo, window)
	} else {
		r.Status = StatusNotMet
		r.Explanation = fmt.Sprintf("Most recent %s was %d days before the as-of date; exceeds the %d-day window.", factLabel(def), daysAgo, window)
		r.Recommendation = fmt.Sprintf("Complete a new %s within %d days of the order date.", def.Name, window)
	}

	return r
}

// evaluateNumericThreshold handles the numeric_threshold kind. A value
// flagged as an estimate yields partial: present, but not precise enough
// for a definitive verdict.
func evaluateNumericThreshold(def *schema.CriterionDefinition, fact *record.Fact) *CriterionResult {
	r := resultFromFact(def, fact)
	p := def.Parameters

	if fact.Value.Kind != record.ValueNumber {
		r.Status = StatusInsufficientEvidence
		r.Explanation = fmt.Sprintf("Extracted %s does not carry a numeric value.", factLabel(def))
		r.Recommendation = fmt.Sprintf("Document a measured value for %s.", def.Name)
		return r
	}

	value := fact.Value.Number

	if fact.Value.Estimated {
		r.Status = StatusPartial
		r.Explanation = fmt.Sprintf("%s value %.1f is recorded as an estimate; %s.", def.Name, value, thresholdLabel(p))
		r.Recommendation = fmt.Sprintf("Obtain a precise %s reading.", def.Name)
		return r
	}

	var met bool
	switch p.Comparator {
	case schema.ComparatorGreaterEqual:
		met = value >= p.Threshold
	case schema.ComparatorLessEqual:
		met = value <= p.Threshold
	case schema.ComparatorRange:
		met = value >= p.Min && value <= p.Max
	}

	if met {
		r.Status = StatusMet
		r.Explanation = fmt.Sprintf("%s value %.1f satisfies %s.", def.Name, value, thresholdLabel(p))
	} else {
		r.Status = StatusNotMet
		r.Explanation = fmt.Sprintf("%s value %.1f does not satisfy %s.", def.Name, value, thresholdLabel(p))
		r.Recommendation = fmt.Sprintf("Review whether %s supports the policy requirement.", def.Name)
	}

	return r
}

// evaluateCodeMembership handles the code_membership kind: any extracted
// code matching an accepted prefix satisfies the criterion.
func evaluateCodeMembership(def *schema.CriterionDefinition, fact *record.Fact) *CriterionResult {
	r := resultFromFact(def, fact)
	prefixes := def.Parameters.CodePrefixes

	codes := fact.Value.Codes
	if len(codes) == 0 {
		r.Status = StatusInsufficientEvidence
		r.Confidence = 0
		r.Explanation = fmt.Sprintf("No %s codes were extracted from the record.", factLabel(def))
		r.Recommendation = fmt.Sprintf("Document %s with the applicable codes.", def.Name)
		return r
	}

	for _, code := range codes {
		normalized := strings.ToUpper(strings.TrimSpace(code))
		for _, prefix := range prefixes {
			if strings.HasPrefix(normalized, strings.ToUpper(prefix)) {
				r.Status = StatusMet
				r.Explanation = fmt.Sprintf("Code %s matches accepted prefix %s.", normalized, strings.ToUpper(prefix))
				return r
			}
		}
	}

	r.Status = StatusNotMet
	r.Explanation = fmt.Sprintf("None of the extracted codes (%s) match the accepted prefixes (%s).",
		strings.Join(codes, ", "), strings.Join(prefixes, ", "))
	r.Recommendation = fmt.Sprintf("Confirm the documented codes for %s; accepted prefixes: %s.", def.Name, strings.Join(prefixes, ", "))
	return r
}

// evaluateJudgment handles the free_text_judgment kind: a pass-through
// of the caller-supplied judgment embedded in the record, subject to the
// confidence floor applied by the caller of this function.
func evaluateJudgment(def *schema.CriterionDefinition, fact *record.Fact) *CriterionResult {
	r := resultFromFact(def, fact)

	var status CriterionStatus
	switch fact.Value.Judgment {
	case record.JudgmentMet:
		status = StatusMet
	case record.JudgmentNotMet:
		status = StatusNotMet
	case record.JudgmentPartial:
		status = StatusPartial
	default:
		status = StatusInsufficientEvidence
	}

	r.Status = status
	r.Explanation = fmt.Sprintf("Documented judgment for %s: %s (confidence %.2f).", def.Name, judgmentLabel(fact.Value.Judgment), fact.Evidence.Confidence)
	if status != StatusMet {
		r.Recommendation = fmt.Sprintf("Strengthen documentation supporting %s.", def.Name)
	}

	return r
}

// resultFromFact seeds a result with the fact's evidence. The result
// confidence equals the extraction confidence of the single fact that
// determined the status; with one contributing fact this is also the
// minimum over contributing evidence, the conservative combination the
// engine documents.
func resultFromFact(def *schema.CriterionDefinition, fact *record.Fact) *CriterionResult {
	return &CriterionResult{
		CriterionID:    def.ID,
		Name:           def.Name,
		Confidence:     fact.Evidence.Confidence,
		EvidenceQuotes: fact.Evidence.Quotes,
		PageReferences: fact.Evidence.PageRefs,
	}
}

// factLabel renders the fact name for explanations ("insulin therapy"
// instead of "insulin_therapy").
func factLabel(def *schema.CriterionDefinition) string {
	return strings.ReplaceAll(def.Parameters.Fact, "_", " ")
}

// thresholdLabel renders the comparator for explanations.
func thresholdLabel(p schema.Parameters) string {
	switch p.Comparator {
	case schema.ComparatorGreaterEqual:
		return fmt.Sprintf("threshold >= %.1f", p.Threshold)
	case schema.ComparatorLessEqual:
		return fmt.Sprintf("threshold <= %.1f", p.Threshold)
	case schema.ComparatorRange:
		return fmt.Sprintf("range [%.1f, %.1f]", p.Min, p.Max)
	default:
		return "threshold"
	}
}

// judgmentLabel renders a judgment for explanations; an unset judgment
// reads as undetermined.
func judgmentLabel(j record.Judgment) string {
	if j == "" {
		return "undetermined"
	}
	return strings.ReplaceAll(string(j), "_", " ")
}
