// Atlas is an eligibility criteria evaluation engine for Medicare
// local coverage determinations.
//
// It evaluates extracted patient records against versioned policy
// bundles, producing per-criterion verdicts, alternative-group
// resolution, and an aggregate determination with evidence, confidence,
// and documentation gaps.
//
// Usage:
//
//	# Evaluate a record against a policy bundle
//	atlas evaluate --policies policies/ --policy L33822 --record chart.json
//
//	# Validate policy bundle files
//	atlas validate --dir policies/
//
//	# List registered policy bundles
//	atlas policies --dir policies/
//
//	# Audit a CGM claim for coding and documentation issues
//	atlas audit --claim claim.json
//
//	# Query stored determinations
//	atlas determinations query --policy-id L33822 --limit 10
//
//	# Show version information
//	atlas version
package main

func main() {
	Execute()
}
