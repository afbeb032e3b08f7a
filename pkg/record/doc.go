// Package record defines the structured input to the eligibility engine:
// the facts an extraction adapter was able to determine from a patient's
// chart, each backed by its own evidence (quotes, page references, and an
// extraction confidence).
//
// Absence is a first-class state. A fact missing from the record means
// "not extracted", which is distinct from a fact whose value carries an
// explicit negative finding. The evaluator maps the former to
// insufficient evidence and the latter to not met.
//
// The package also defines the extraction adapter contract. An adapter
// returns either a complete (possibly sparse) record or an explicit
// failure; a partial record never reaches the evaluator.
package record
