// Package audit validates CGM claims against LCD L33822 coding and
// documentation rules before submission.
//
// An Auditor checks the HCPCS code, required modifiers, diagnosis
// coverage, documentation flags, and bundling rules, then produces a
// Report with per-issue severity, a 0-100 score, and a submission
// summary. The code table comes from the codes package.
package audit
