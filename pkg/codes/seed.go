package codes

import "strings"

// LCDGlucoseMonitors is the local coverage determination for CGM devices.
const LCDGlucoseMonitors = "L33822"

// DiabetesPrefixes lists the ICD-10 prefixes that establish a diabetes
// mellitus diagnosis for CGM coverage.
var DiabetesPrefixes = []string{"E10", "E11", "E13", "O24"}

// CGMCodes is the seed table of CGM billing codes.
var CGMCodes = []CodeEntry{
	{
		Code:          "A9276",
		Short:         "CGM sensor",
		Long:          "Sensor; invasive (e.g., subcutaneous), disposable, for use with interstitial continuous glucose monitoring system, one unit",
		Category:      "cgm_supplies",
		Pricing:       "consumable",
		Modifiers:     []string{"KX", "NU"},
		RequiresKX:    true,
		ExclusiveWith: []string{"K0553"},
		LCD:           LCDGlucoseMonitors,
		Notes:         "Typically replaced every 10-14 days.",
	},
	{
		Code:          "A9277",
		Short:         "CGM transmitter",
		Long:          "Transmitter; external, for use with interstitial continuous glucose monitoring system",
		Category:      "cgm_supplies",
		Pricing:       "consumable",
		Modifiers:     []string{"KX", "NU"},
		RequiresKX:    true,
		ExclusiveWith: []string{"K0553"},
		LCD:           LCDGlucoseMonitors,
		Notes:         "Replacement frequency varies by device (90 days to 1 year).",
	},
	{
		Code:          "A9278",
		Short:         "CGM receiver",
		Long:          "Receiver (monitor); external, for use with interstitial continuous glucose monitoring system",
		Category:      "cgm_equipment",
		Pricing:       "purchase_or_rental",
		Modifiers:     []string{"KX", "NU", "RR"},
		RequiresKX:    true,
		ExclusiveWith: []string{"K0553"},
		LCD:           LCDGlucoseMonitors,
		Notes:         "One per beneficiary unless replacement needed. Many patients use a smartphone app instead.",
	},
	{
		Code:          "K0553",
		Short:         "CGM monthly supply",
		Long:          "Supply allowance for therapeutic continuous glucose monitor (CGM), includes all supplies and accessories, 1 month supply",
		Category:      "cgm_monthly",
		Pricing:       "monthly_supply",
		Modifiers:     []string{"KX"},
		RequiresKX:    true,
		ExclusiveWith: []string{"A9276", "A9277", "A9278"},
		LCD:           LCDGlucoseMonitors,
		Notes:         "All-inclusive monthly code. Covers all CGM supplies for one month.",
	},
	{
		Code:       "K0554",
		Short:      "CGM receiver (K0553)",
		Long:       "Receiver (monitor); dedicated, for use with therapeutic glucose continuous monitor system",
		Category:   "cgm_equipment",
		Pricing:    "purchase",
		Modifiers:  []string{"KX", "NU"},
		RequiresKX: true,
		LCD:        LCDGlucoseMonitors,
		Notes:      "Receiver for K0553 monthly supply patients.",
	},
	{
		Code:      "E2102",
		Short:     "Adjunctive CGM receiver",
		Long:      "Adjunctive continuous glucose monitor or receiver",
		Category:  "cgm_adjunctive",
		Pricing:   "purchase_or_rental",
		Modifiers: []string{"NU", "RR"},
		Notes:     "For non-therapeutic/adjunctive use. Does not require medical necessity.",
	},
	{
		Code:       "E2103",
		Short:      "Non-adjunctive CGM receiver",
		Long:       "Non-adjunctive continuous glucose monitor or receiver",
		Category:   "cgm_equipment",
		Pricing:    "purchase_or_rental",
		Modifiers:  []string{"KX", "NU", "RR"},
		RequiresKX: true,
		LCD:        LCDGlucoseMonitors,
		Notes:      "Therapeutic CGM receiver. Requires medical necessity documentation.",
	},
}

// IsDiabetesCode reports whether the ICD-10 code falls under one of the
// diabetes prefixes.
func IsDiabetesCode(code string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	for _, prefix := range DiabetesPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return true
		}
	}
	return false
}
