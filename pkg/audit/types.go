package audit

import "time"

// Severity grades how strongly an issue affects claim submission.
type Severity string

const (
	// SeverityError marks issues that will cause a denial.
	SeverityError Severity = "error"

	// SeverityWarning marks issues a reviewer should resolve before
	// submission.
	SeverityWarning Severity = "warning"

	// SeverityInfo marks advisory notes that need no action.
	SeverityInfo Severity = "info"
)

// Category identifies which validation surfaced an issue.
type Category string

const (
	CategoryHCPCS         Category = "hcpcs"
	CategoryModifier      Category = "modifier"
	CategoryDiagnosis     Category = "diagnosis"
	CategoryDocumentation Category = "documentation"
	CategoryLCD           Category = "lcd"
	CategoryBundling      Category = "bundling"
)

// Insulin therapy regimens recognized by the LCD. Pump therapy and
// multiple daily injections both satisfy the intensive insulin
// requirement.
const (
	InsulinTherapyPump = "pump"
	InsulinTherapyMDI  = "mdi"
	InsulinTherapyNone = "none"
)

// Claim is a single CGM claim line with its supporting documentation
// flags.
type Claim struct {
	// HCPCSCode is the billed code (e.g. "K0553").
	HCPCSCode string `json:"hcpcs_code"`

	// Modifier is the modifier string as billed, if any.
	Modifier string `json:"modifier,omitempty"`

	// DiagnosisCodes are the ICD-10 codes on the claim.
	DiagnosisCodes []string `json:"diagnosis_codes"`

	// DeviceType names the CGM device, if known.
	DeviceType string `json:"device_type,omitempty"`

	// ServiceDate is the date of service, if known.
	ServiceDate *time.Time `json:"service_date,omitempty"`

	// HasFaceToFace indicates a qualifying face-to-face encounter is
	// documented.
	HasFaceToFace bool `json:"has_face_to_face"`

	// HasWrittenOrder indicates a detailed written order is on file.
	HasWrittenOrder bool `json:"has_written_order"`

	// HasMedicalNecessity indicates a medical necessity statement is
	// documented.
	HasMedicalNecessity bool `json:"has_medical_necessity"`

	// InsulinTherapy is the documented regimen ("pump", "mdi", or
	// "none").
	InsulinTherapy string `json:"insulin_therapy,omitempty"`

	// A1CDocumented indicates a recent HbA1c result is on file.
	A1CDocumented bool `json:"a1c_documented"`
}

// Issue is a single finding from a claim audit.
type Issue struct {
	Severity       Severity `json:"severity"`
	Category       Category `json:"category"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

// Report is the outcome of auditing one claim.
type Report struct {
	// Passed is true when the claim has no error-level issues.
	Passed bool `json:"passed"`

	// Score grades the claim from 0 (unsubmittable) to 100 (clean).
	Score int `json:"score"`

	// Issues lists every finding in validation order.
	Issues []Issue `json:"issues"`

	// LCDReference is the coverage determination the claim was audited
	// against.
	LCDReference string `json:"lcd_reference"`

	// Summary is a one-line submission readiness statement.
	Summary string `json:"summary"`
}

// ErrorCount returns the number of error-level issues.
func (r *Report) ErrorCount() int {
	return r.countSeverity(SeverityError)
}

// WarningCount returns the number of warning-level issues.
func (r *Report) WarningCount() int {
	return r.countSeverity(SeverityWarning)
}

func (r *Report) countSeverity(s Severity) int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			count++
		}
	}
	return count
}
