// Package validator performs load-time validation of policy bundles.
//
// Validation is fail-fast and wholesale: a bundle that fails any check is
// rejected before a single evaluation runs, so the evaluator never sees a
// malformed definition. Two passes run in sequence:
//
//  1. Structural - required fields, unique criterion ids, recognized kinds
//  2. Semantic - kind-specific parameter checks and alternative-group
//     invariants (group size, at most one individually required member)
//
// Errors accumulate in an ErrorList so a bundle author sees every problem
// in one pass rather than fixing them one at a time.
package validator
