package validator

import (
	"fmt"
	"strings"

	"backwork/atlas/pkg/schema"
	schemaErrors "backwork/atlas/pkg/schema/errors"
)

// SemanticValidator validates kind-specific parameters and alternative
// group invariants. It assumes structural validation has already passed,
// so ids are unique and kinds are recognized.
type SemanticValidator struct {
	errors *schemaErrors.ErrorList
}

// NewSemanticValidator creates a new semantic validator.
func NewSemanticValidator() *SemanticValidator {
	return &SemanticValidator{
		errors: schemaErrors.NewErrorList(),
	}
}

// Validate performs semantic validation on a bundle.
// It returns an ErrorList containing all semantic errors found.
func (v *SemanticValidator) Validate(bundle *schema.PolicyBundle) error {
	v.errors = schemaErrors.NewErrorList()

	for _, def := range bundle.Criteria {
		v.validateParameters(def)
	}
	v.validateGroups(bundle)

	return v.errors.ToError()
}

// validateParameters checks the kind-specific parameter requirements.
func (v *SemanticValidator) validateParameters(def *schema.CriterionDefinition) {
	p := def.Parameters

	if p.ConfidenceFloor < 0 || p.ConfidenceFloor > 1 {
		v.errors.AddError(
			schemaErrors.ErrorTypeSemantic,
			fmt.Sprintf("Criterion %q: confidence_floor %v must be in [0, 1]", def.ID, p.ConfidenceFloor),
			def.Location,
		)
	}

	switch def.Kind {
	case schema.KindDateWindow:
		if p.WindowDays <= 0 {
			v.errors.AddErrorWithSuggestion(
				schemaErrors.ErrorTypeSemantic,
				fmt.Sprintf("Criterion %q: date_window requires a positive 'window_days'", def.ID),
				def.Location,
				"Example: window_days: 180",
			)
		}

	case schema.KindNumericThreshold:
		if p.Comparator == "" {
			v.errors.AddErrorWithSuggestion(
				schemaErrors.ErrorTypeSemantic,
				fmt.Sprintf("Criterion %q: numeric_threshold requires a 'comparator'", def.ID),
				def.Location,
				"Valid comparators: gte, lte, range",
			)
		} else if !schema.ValidComparator(p.Comparator) {
			v.errors.AddErrorWithSuggestion(
				schemaErrors.ErrorTypeSemantic,
				fmt.Sprintf("Criterion %q: unknown comparator %q", def.ID, p.Comparator),
				def.Location,
				"Valid comparators: gte, lte, range",
			)
		} else if p.Comparator == schema.ComparatorRange && p.Min >= p.Max {
			v.errors.AddError(
				schemaErrors.ErrorTypeSemantic,
				fmt.Sprintf("Criterion %q: range comparator requires min < max (got min=%v, max=%v)", def.ID, p.Min, p.Max),
				def.Location,
			)
		}

	case schema.KindCodeMembership:
		if len(p.CodePrefixes) == 0 {
			v.errors.AddErrorWithSuggestion(
				schemaErrors.ErrorTypeSemantic,
				fmt.Sprintf("Criterion %q: code_membership requires at least one entry in 'code_prefixes'", def.ID),
				def.Location,
				`Example: code_prefixes: ["E10", "E11"]`,
			)
		}
		for _, prefix := range p.CodePrefixes {
			if strings.TrimSpace(prefix) == "" {
				v.errors.AddError(
					schemaErrors.ErrorTypeSemantic,
					fmt.Sprintf("Criterion %q: empty code prefix", def.ID),
					def.Location,
				)
			}
		}
	}
}

// validateGroups checks alternative group invariants: a group must have
// at least two members (a single-member group is almost certainly a
// typo'd group id), and at most one member may be individually marked
// required since required-ness applies at the group level.
func (v *SemanticValidator) validateGroups(bundle *schema.PolicyBundle) {
	for _, group := range bundle.Groups() {
		members := bundle.GroupMembers(group)

		if len(members) < 2 {
			v.errors.AddErrorWithSuggestion(
				schemaErrors.ErrorTypeSemantic,
				fmt.Sprintf("Alternative group %q has only one member (%q)", group, members[0].ID),
				members[0].Location,
				"Alternative groups need at least two substitutable criteria; check for a mistyped group id",
			)
			continue
		}

		requiredCount := 0
		for _, m := range members {
			if m.Required {
				requiredCount++
			}
		}
		if requiredCount > 1 {
			v.errors.AddError(
				schemaErrors.ErrorTypeSemantic,
				fmt.Sprintf("Alternative group %q marks %d members as individually required; at most one is allowed (the group is required as a whole)", group, requiredCount),
				members[0].Location,
			)
		}
	}
}
