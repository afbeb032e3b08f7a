package schema

import "fmt"

// CriterionKind identifies the matching rule used to evaluate a criterion.
type CriterionKind string

const (
	// KindPresence checks that a named fact exists and is affirmative.
	KindPresence CriterionKind = "presence"

	// KindDateWindow checks that the most recent qualifying date falls
	// within a configured number of days of the evaluation reference date.
	KindDateWindow CriterionKind = "date_window"

	// KindNumericThreshold compares an extracted numeric value against a
	// configured comparator and threshold (or range).
	KindNumericThreshold CriterionKind = "numeric_threshold"

	// KindCodeMembership checks that at least one extracted code matches
	// one of the accepted code prefixes.
	KindCodeMembership CriterionKind = "code_membership"

	// KindFreeTextJudgment passes through a caller-supplied judgment
	// embedded in the record, subject to the confidence floor.
	KindFreeTextJudgment CriterionKind = "free_text_judgment"
)

// ValidKind returns true if the kind is one of the recognized criterion kinds.
func ValidKind(kind CriterionKind) bool {
	switch kind {
	case KindPresence, KindDateWindow, KindNumericThreshold, KindCodeMembership, KindFreeTextJudgment:
		return true
	default:
		return false
	}
}

// Comparator identifies the comparison applied by a numeric_threshold criterion.
type Comparator string

const (
	ComparatorGreaterEqual Comparator = "gte"
	ComparatorLessEqual    Comparator = "lte"
	ComparatorRange        Comparator = "range"
)

// ValidComparator returns true if the comparator is recognized.
func ValidComparator(c Comparator) bool {
	switch c {
	case ComparatorGreaterEqual, ComparatorLessEqual, ComparatorRange:
		return true
	default:
		return false
	}
}

// Parameters holds the kind-specific configuration for a criterion.
// Only the fields relevant to the criterion's kind are set; the
// validator rejects definitions whose parameters do not match the kind.
type Parameters struct {
	// Fact is the name of the extracted fact this criterion reads.
	// Required for every kind.
	Fact string

	// WindowDays is the window length for date_window criteria.
	WindowDays int

	// Comparator selects the comparison for numeric_threshold criteria.
	Comparator Comparator

	// Threshold is the comparison value for gte/lte comparators.
	Threshold float64

	// Min and Max bound the accepted interval for the range comparator.
	Min float64
	Max float64

	// CodePrefixes lists accepted code prefixes for code_membership
	// criteria (e.g. "E10", "E11"). Matching is case-insensitive.
	CodePrefixes []string

	// ConfidenceFloor overrides the engine-wide extraction confidence
	// floor for this criterion. Zero means use the engine default.
	ConfidenceFloor float64
}

// CriterionDefinition is one declaratively defined coverage criterion.
type CriterionDefinition struct {
	// ID uniquely identifies the criterion within its bundle.
	ID string

	// Name is the human-readable criterion name.
	Name string

	// Kind selects the evaluator matching rule.
	Kind CriterionKind

	// Required marks the criterion as counting toward the eligibility
	// denominator. Members of an alternative group are aggregated as a
	// single required slot regardless of this flag.
	Required bool

	// AlternativeGroup is the group id for mutually substitutable
	// criteria. Empty means the criterion stands alone.
	AlternativeGroup string

	// Parameters holds the kind-specific configuration.
	Parameters Parameters

	// Location is the source location of the definition (for errors).
	Location Location
}

// InGroup returns true if the criterion belongs to an alternative group.
func (c *CriterionDefinition) InGroup() bool {
	return c.AlternativeGroup != ""
}

// PolicyBundle is an immutable, versioned bundle of criterion
// definitions for one coverage policy (e.g. one LCD).
type PolicyBundle struct {
	// ID is the policy identifier (e.g. "L33822").
	ID string

	// Title is the human-readable policy title.
	Title string

	// Version is the bundle version (semver or policy revision).
	Version string

	// Jurisdiction is the MAC jurisdiction the policy applies to (optional).
	Jurisdiction string

	// Description is a human-readable summary of the policy.
	Description string

	// Criteria is the ordered list of criterion definitions. Result
	// order in a determination follows this order.
	Criteria []*CriterionDefinition

	// SourceFile is the path the bundle was loaded from.
	SourceFile string
}

// GetCriterion returns the criterion with the given id, or nil if not found.
func (b *PolicyBundle) GetCriterion(id string) *CriterionDefinition {
	for _, c := range b.Criteria {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// GroupMembers returns the criteria belonging to the given alternative
// group, in declaration order.
func (b *PolicyBundle) GroupMembers(group string) []*CriterionDefinition {
	var members []*CriterionDefinition
	for _, c := range b.Criteria {
		if c.AlternativeGroup == group {
			members = append(members, c)
		}
	}
	return members
}

// Groups returns the distinct alternative group ids in declaration order.
func (b *PolicyBundle) Groups() []string {
	var groups []string
	seen := make(map[string]bool)
	for _, c := range b.Criteria {
		if c.AlternativeGroup != "" && !seen[c.AlternativeGroup] {
			seen[c.AlternativeGroup] = true
			groups = append(groups, c.AlternativeGroup)
		}
	}
	return groups
}

// RequiredCriteria returns the standalone required criteria (criteria in
// alternative groups are excluded; groups aggregate to required slots).
func (b *PolicyBundle) RequiredCriteria() []*CriterionDefinition {
	var required []*CriterionDefinition
	for _, c := range b.Criteria {
		if c.Required && !c.InGroup() {
			required = append(required, c)
		}
	}
	return required
}

// CriterionCount returns the total number of criterion definitions.
func (b *PolicyBundle) CriterionCount() int {
	return len(b.Criteria)
}

// Location represents the source location of a definition in the original
// bundle file. It enables precise error reporting with file, line, and
// column information.
type Location struct {
	File   string // Path to the bundle file
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

// String returns a human-readable representation of the location.
// Format: "file:line:column"
func (l Location) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// IsValid returns true if the location has valid file and line information.
func (l Location) IsValid() bool {
	return l.File != "" && l.Line > 0
}
