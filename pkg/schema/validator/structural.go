package validator

import (
	"fmt"
	"regexp"

	"backwork/atlas/pkg/schema"
	schemaErrors "backwork/atlas/pkg/schema/errors"
)

var (
	// policyIDPattern validates policy identifiers (e.g., "L33822", "A52464")
	policyIDPattern = regexp.MustCompile(`^[A-Z][A-Z0-9-]*$`)

	// criterionIDPattern validates kebab-case criterion ids (e.g., "diabetes-diagnosis")
	criterionIDPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
)

// StructuralValidator validates the structural integrity of a policy bundle.
// It checks required fields, id uniqueness, naming conventions, and that
// every criterion carries a recognized kind.
type StructuralValidator struct {
	errors *schemaErrors.ErrorList
}

// NewStructuralValidator creates a new structural validator.
func NewStructuralValidator() *StructuralValidator {
	return &StructuralValidator{
		errors: schemaErrors.NewErrorList(),
	}
}

// Validate performs structural validation on a bundle.
// It returns an ErrorList containing all structural errors found.
func (v *StructuralValidator) Validate(bundle *schema.PolicyBundle) error {
	v.errors = schemaErrors.NewErrorList()

	v.validateMetadata(bundle)
	v.validateCriteria(bundle)

	return v.errors.ToError()
}

// validateMetadata validates bundle-level fields.
func (v *StructuralValidator) validateMetadata(bundle *schema.PolicyBundle) {
	loc := schema.Location{File: bundle.SourceFile, Line: 1}

	if bundle.ID == "" {
		v.errors.AddErrorWithSuggestion(
			schemaErrors.ErrorTypeStructural,
			"Missing required field 'policy_id'",
			loc,
			`Example: policy_id: "L33822"`,
		)
	} else if !policyIDPattern.MatchString(bundle.ID) {
		v.errors.AddErrorWithSuggestion(
			schemaErrors.ErrorTypeStructural,
			fmt.Sprintf("Policy id %q must be uppercase alphanumeric", bundle.ID),
			loc,
			"Example: 'L33822'",
		)
	}

	if bundle.Title == "" {
		v.errors.AddError(
			schemaErrors.ErrorTypeStructural,
			"Missing required field 'title'",
			loc,
		)
	}

	if bundle.Version == "" {
		v.errors.AddErrorWithSuggestion(
			schemaErrors.ErrorTypeStructural,
			"Missing required field 'version'",
			loc,
			`Example: version: "2024-01"`,
		)
	}

	if len(bundle.Criteria) == 0 {
		v.errors.AddError(
			schemaErrors.ErrorTypeStructural,
			"Bundle must define at least one criterion",
			loc,
		)
	}
}

// validateCriteria validates each criterion definition structurally.
func (v *StructuralValidator) validateCriteria(bundle *schema.PolicyBundle) {
	seen := make(map[string]bool)

	for _, def := range bundle.Criteria {
		if def.ID == "" {
			v.errors.AddErrorWithSuggestion(
				schemaErrors.ErrorTypeStructural,
				"Criterion missing required field 'id'",
				def.Location,
				`Example: id: "diabetes-diagnosis"`,
			)
		} else {
			if !criterionIDPattern.MatchString(def.ID) {
				v.errors.AddErrorWithSuggestion(
					schemaErrors.ErrorTypeStructural,
					fmt.Sprintf("Criterion id %q must be kebab-case (lowercase with hyphens)", def.ID),
					def.Location,
					"Example: 'face-to-face-encounter'",
				)
			}
			if seen[def.ID] {
				v.errors.AddError(
					schemaErrors.ErrorTypeStructural,
					fmt.Sprintf("Duplicate criterion id %q", def.ID),
					def.Location,
				)
			}
			seen[def.ID] = true
		}

		if def.Name == "" {
			v.errors.AddError(
				schemaErrors.ErrorTypeStructural,
				fmt.Sprintf("Criterion %q missing required field 'name'", def.ID),
				def.Location,
			)
		}

		if def.Kind == "" {
			v.errors.AddErrorWithSuggestion(
				schemaErrors.ErrorTypeStructural,
				fmt.Sprintf("Criterion %q missing required field 'kind'", def.ID),
				def.Location,
				"Valid kinds: presence, date_window, numeric_threshold, code_membership, free_text_judgment",
			)
		} else if !schema.ValidKind(def.Kind) {
			v.errors.AddErrorWithSuggestion(
				schemaErrors.ErrorTypeStructural,
				fmt.Sprintf("Criterion %q has unknown kind %q", def.ID, def.Kind),
				def.Location,
				"Valid kinds: presence, date_window, numeric_threshold, code_membership, free_text_judgment",
			)
		}

		if def.Parameters.Fact == "" {
			v.errors.AddErrorWithSuggestion(
				schemaErrors.ErrorTypeStructural,
				fmt.Sprintf("Criterion %q missing required parameter 'fact'", def.ID),
				def.Location,
				`Example: parameters: { fact: "encounters" }`,
			)
		}
	}
}
