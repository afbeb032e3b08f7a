package codes

// CodeEntry describes one billable HCPCS code and its coverage
// associations.
type CodeEntry struct {
	// Code is the HCPCS code (e.g. "A9276").
	Code string `json:"code"`

	// Short is the short description.
	Short string `json:"short"`

	// Long is the full HCPCS descriptor.
	Long string `json:"long"`

	// Category groups related codes (e.g. "cgm_supplies").
	Category string `json:"category"`

	// Pricing is the pricing model ("consumable", "purchase_or_rental",
	// "monthly_supply", "purchase").
	Pricing string `json:"pricing"`

	// Modifiers lists the modifiers applicable to the code.
	Modifiers []string `json:"modifiers,omitempty"`

	// RequiresKX marks codes that need the KX modifier to attest that
	// coverage criteria documentation is on file.
	RequiresKX bool `json:"requires_kx"`

	// ExclusiveWith lists codes that must not be billed together with
	// this one.
	ExclusiveWith []string `json:"exclusive_with,omitempty"`

	// LCD is the local coverage determination governing the code, if any.
	LCD string `json:"lcd,omitempty"`

	// Notes carries free-text billing guidance.
	Notes string `json:"notes,omitempty"`
}

// HasModifier reports whether the entry lists the given modifier.
func (e *CodeEntry) HasModifier(modifier string) bool {
	for _, m := range e.Modifiers {
		if m == modifier {
			return true
		}
	}
	return false
}

// ConflictsWith reports whether the entry must not be billed together
// with the given code.
func (e *CodeEntry) ConflictsWith(code string) bool {
	for _, c := range e.ExclusiveWith {
		if c == code {
			return true
		}
	}
	return false
}
