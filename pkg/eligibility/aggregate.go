package eligibility

import (
	"fmt"
	"strings"
	"time"

	"backwork/atlas/pkg/schema"
)

// maxSummaryGaps caps how many gaps the one-paragraph summary names.
const maxSummaryGaps = 3

// aggregate reduces the resolved slots into the final determination.
// Non-required standalone criteria are tracked in Results but excluded
// from the denominator and from the overall status decision.
func aggregate(bundle *schema.PolicyBundle, results []*CriterionResult, slots []slot, asOf time.Time) *Determination {
	det := &Determination{
		PolicyID:      bundle.ID,
		PolicyTitle:   bundle.Title,
		PolicyVersion: bundle.Version,
		Results:       results,
		AsOf:          asOf,
	}

	anyNotMet := false
	anyOpen := false

	for _, s := range slots {
		if !s.required {
			continue
		}
		det.TotalCount++

		switch s.status {
		case StatusMet:
			det.MetCount++
		case StatusNotMet:
			anyNotMet = true
			det.GapsIdentified = append(det.GapsIdentified, s.gap())
		default: // insufficient_evidence, partial
			anyOpen = true
			det.GapsIdentified = append(det.GapsIdentified, s.gap())
		}
	}

	// Decision order: a demonstrable failure outranks open questions.
	switch {
	case anyNotMet:
		det.OverallStatus = StatusNotQualified
	case anyOpen:
		det.OverallStatus = StatusReviewNeeded
	default:
		det.OverallStatus = StatusQualified
	}

	det.Summary = summarize(det)
	return det
}

// summarize generates the deterministic one-paragraph summary from fixed
// templates over the computed counts and gaps.
func summarize(det *Determination) string {
	switch det.OverallStatus {
	case StatusQualified:
		return fmt.Sprintf("All %d required coverage criteria for %s (%s) are met. The record supports eligibility.",
			det.TotalCount, det.PolicyID, det.PolicyTitle)

	case StatusNotQualified:
		return fmt.Sprintf("%d of %d required coverage criteria for %s (%s) are met. Coverage requirements are not satisfied. %s",
			det.MetCount, det.TotalCount, det.PolicyID, det.PolicyTitle, topGaps(det.GapsIdentified))

	default: // review_needed
		return fmt.Sprintf("%d of %d required coverage criteria for %s (%s) are met; the rest need review before a determination. %s",
			det.MetCount, det.TotalCount, det.PolicyID, det.PolicyTitle, topGaps(det.GapsIdentified))
	}
}

// topGaps renders the leading gaps for the summary, capped at
// maxSummaryGaps.
func topGaps(gaps []string) string {
	if len(gaps) == 0 {
		return ""
	}
	shown := gaps
	suffix := ""
	if len(gaps) > maxSummaryGaps {
		shown = gaps[:maxSummaryGaps]
		suffix = fmt.Sprintf(" (+%d more)", len(gaps)-maxSummaryGaps)
	}
	return fmt.Sprintf("Top gaps: %s%s.", strings.Join(shown, "; "), suffix)
}
