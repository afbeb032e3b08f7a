package validator

import (
	"backwork/atlas/pkg/schema"
	schemaErrors "backwork/atlas/pkg/schema/errors"
)

// Validator is the main validator that orchestrates all validation passes.
// It runs structural and semantic validation in sequence.
type Validator struct {
	structural *StructuralValidator
	semantic   *SemanticValidator
}

// NewValidator creates a new validator with all validation passes.
func NewValidator() *Validator {
	return &Validator{
		structural: NewStructuralValidator(),
		semantic:   NewSemanticValidator(),
	}
}

// Validate runs all validation passes on a bundle.
// It accumulates errors from all passes and returns them together.
func (v *Validator) Validate(bundle *schema.PolicyBundle) error {
	errors := schemaErrors.NewErrorList()

	if err := v.structural.Validate(bundle); err != nil {
		if errList, ok := err.(*schemaErrors.ErrorList); ok {
			errors.Errors = append(errors.Errors, errList.Errors...)
		}
	}

	// Run semantic validation only if structural validation passed.
	// This prevents cascading errors.
	if !errors.HasErrorType(schemaErrors.ErrorTypeStructural) {
		if err := v.semantic.Validate(bundle); err != nil {
			if errList, ok := err.(*schemaErrors.ErrorList); ok {
				errors.Errors = append(errors.Errors, errList.Errors...)
			}
		}
	}

	return errors.ToError()
}

// ValidateStructural runs only structural validation.
func (v *Validator) ValidateStructural(bundle *schema.PolicyBundle) error {
	return v.structural.Validate(bundle)
}

// ValidateSemantic runs only semantic validation.
func (v *Validator) ValidateSemantic(bundle *schema.PolicyBundle) error {
	return v.semantic.Validate(bundle)
}
