package eligibility

import "time"

// CriterionStatus is the terminal status of a single criterion after
// evaluation. Each criterion transitions from unknown (pre-evaluation)
// to exactly one of these; there is no cross-criterion mutation or retry
// within an evaluation pass.
type CriterionStatus string

const (
	// StatusMet indicates the record satisfies the criterion.
	StatusMet CriterionStatus = "met"

	// StatusNotMet indicates the record demonstrably fails the criterion.
	StatusNotMet CriterionStatus = "not_met"

	// StatusInsufficientEvidence indicates the record does not contain
	// enough extracted information to decide either way.
	StatusInsufficientEvidence CriterionStatus = "insufficient_evidence"

	// StatusPartial indicates a value is present but flagged as an
	// estimate or uncertain range rather than a precise reading.
	StatusPartial CriterionStatus = "partial"
)

// OverallStatus is the aggregate eligibility determination.
type OverallStatus string

const (
	// StatusQualified indicates every required criterion/slot is met.
	StatusQualified OverallStatus = "qualified"

	// StatusNotQualified indicates at least one required criterion/slot
	// is demonstrably not met.
	StatusNotQualified OverallStatus = "not_qualified"

	// StatusReviewNeeded indicates no required criterion/slot is not met
	// but at least one has insufficient or partial evidence.
	StatusReviewNeeded OverallStatus = "review_needed"
)

// CriterionResult is the verdict for a single criterion.
type CriterionResult struct {
	// CriterionID identifies the criterion definition this result is for.
	CriterionID string `json:"criterion_id"`

	// Name is the human-readable criterion name.
	Name string `json:"name"`

	// Status is the terminal criterion status.
	Status CriterionStatus `json:"status"`

	// Confidence is the result confidence in [0, 1]. It equals the
	// minimum extraction confidence among the evidence items that
	// determined the status; a verdict is only as confident as its
	// weakest supporting fact.
	Confidence float64 `json:"confidence"`

	// EvidenceQuotes is the ordered source text backing the verdict.
	EvidenceQuotes []string `json:"evidence_quotes,omitempty"`

	// PageReferences lists the pages the evidence came from.
	PageReferences []int `json:"page_references,omitempty"`

	// Explanation is a deterministic, template-generated description of
	// the rule outcome.
	Explanation string `json:"explanation"`

	// Recommendation suggests how to close the gap. Populated whenever
	// Status is not met.
	Recommendation string `json:"recommendation,omitempty"`
}

// Determination is the engine's sole output artifact: the aggregate
// eligibility result for one (policy, record) evaluation. It is a flat,
// serializable structure with no engine internals leaking through;
// consumers read it read-only.
type Determination struct {
	// PolicyID is the evaluated policy bundle id (e.g. "L33822").
	PolicyID string `json:"policy_id"`

	// PolicyTitle is the bundle's human-readable title.
	PolicyTitle string `json:"policy_title"`

	// PolicyVersion is the bundle version the evaluation ran against.
	PolicyVersion string `json:"policy_version"`

	// OverallStatus is the aggregate eligibility determination.
	OverallStatus OverallStatus `json:"overall_status"`

	// Results holds one result per criterion definition, in the
	// bundle's declared order. Alternative-group members keep their own
	// entries even though they aggregate to a single slot.
	Results []*CriterionResult `json:"criterion_results"`

	// MetCount is the number of required criteria/slots with status met.
	MetCount int `json:"met_count"`

	// TotalCount is the number of required criteria/slots.
	TotalCount int `json:"total_count"`

	// GapsIdentified holds one human-readable entry per required
	// criterion/slot not in met status, in slot order.
	GapsIdentified []string `json:"gaps_identified,omitempty"`

	// Summary is a deterministic one-paragraph synthesis of counts,
	// overall status, and the top gaps (capped at three).
	Summary string `json:"summary"`

	// AsOf is the evaluation reference date used for date-window checks.
	AsOf time.Time `json:"as_of"`
}

// Result returns the result for the given criterion id, or nil.
func (d *Determination) Result(criterionID string) *CriterionResult {
	for _, r := range d.Results {
		if r.CriterionID == criterionID {
			return r
		}
	}
	return nil
}

// Qualified reports whether the determination is fully qualified.
func (d *Determination) Qualified() bool {
	return d.OverallStatus == StatusQualified
}
