package audit

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"backwork/atlas/pkg/codes"
)

// Auditor validates CGM claims against the seeded code table and the
// LCD L33822 documentation rules.
type Auditor struct {
	entries map[string]*codes.CodeEntry
	logger  *slog.Logger
}

// NewAuditor creates an auditor over the given code entries. Pass
// codes.CGMCodes for the standard CGM table.
func NewAuditor(entries []codes.CodeEntry, logger *slog.Logger) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}

	byCode := make(map[string]*codes.CodeEntry, len(entries))
	for i := range entries {
		byCode[entries[i].Code] = &entries[i]
	}

	return &Auditor{
		entries: byCode,
		logger:  logger.With("component", "audit.auditor"),
	}
}

// Audit runs every validation against the claim and produces a scored
// report. Error-level issues fail the claim; warnings lower the score
// without failing it.
func (a *Auditor) Audit(claim *Claim) *Report {
	var issues []Issue

	issues = append(issues, a.validateHCPCS(claim.HCPCSCode)...)
	issues = append(issues, a.validateModifier(claim.HCPCSCode, claim.Modifier)...)
	issues = append(issues, a.validateDiagnosis(claim.DiagnosisCodes)...)
	issues = append(issues, a.validateDocumentation(claim)...)
	issues = append(issues, a.validateBundling(claim.HCPCSCode)...)

	report := &Report{
		Issues:       issues,
		LCDReference: codes.LCDGlucoseMonitors,
	}

	errorCount := report.ErrorCount()
	warningCount := report.WarningCount()

	report.Passed = errorCount == 0
	report.Score = scoreClaim(errorCount, warningCount)
	report.Summary = summarize(errorCount, warningCount)

	a.logger.Debug("claim audited",
		"hcpcs_code", claim.HCPCSCode,
		"passed", report.Passed,
		"score", report.Score,
		"issues", len(issues))

	return report
}

// QuickAudit audits with just a code, modifier, and one diagnosis,
// assuming the documentation requirements are met.
func (a *Auditor) QuickAudit(hcpcsCode, modifier, diagnosisCode string) *Report {
	return a.Audit(&Claim{
		HCPCSCode:           hcpcsCode,
		Modifier:            modifier,
		DiagnosisCodes:      []string{diagnosisCode},
		HasFaceToFace:       true,
		HasWrittenOrder:     true,
		HasMedicalNecessity: true,
		InsulinTherapy:      InsulinTherapyMDI,
	})
}

func (a *Auditor) lookup(code string) *codes.CodeEntry {
	return a.entries[normalizeCode(code)]
}

func (a *Auditor) validateHCPCS(code string) []Issue {
	if a.lookup(code) != nil {
		return nil
	}

	known := make([]string, 0, len(a.entries))
	for c := range a.entries {
		known = append(known, c)
	}
	sort.Strings(known)

	return []Issue{{
		Severity:       SeverityError,
		Category:       CategoryHCPCS,
		Message:        fmt.Sprintf("Code %s is not a recognized CGM HCPCS code", normalizeCode(code)),
		Recommendation: "Valid CGM codes: " + strings.Join(known, ", "),
	}}
}

func (a *Auditor) validateModifier(code, modifier string) []Issue {
	entry := a.lookup(code)
	if entry == nil {
		return nil
	}

	if entry.RequiresKX && !strings.Contains(strings.ToUpper(modifier), "KX") {
		return []Issue{{
			Severity:       SeverityError,
			Category:       CategoryModifier,
			Message:        fmt.Sprintf("Code %s requires KX modifier but it's missing", entry.Code),
			Recommendation: "Add KX modifier to indicate medical necessity documentation is on file (LCD L33822 criteria met)",
		}}
	}

	return nil
}

func (a *Auditor) validateDiagnosis(diagnosisCodes []string) []Issue {
	if len(diagnosisCodes) == 0 {
		return []Issue{{
			Severity:       SeverityError,
			Category:       CategoryDiagnosis,
			Message:        "No diagnosis codes provided",
			Recommendation: "Add ICD-10 diabetes diagnosis code (E10.x, E11.x, E13.x, or O24.x)",
		}}
	}

	for _, dx := range diagnosisCodes {
		if codes.IsDiabetesCode(dx) {
			return nil
		}
	}

	return []Issue{{
		Severity:       SeverityError,
		Category:       CategoryDiagnosis,
		Message:        fmt.Sprintf("No valid diabetes diagnosis found in %v", diagnosisCodes),
		Recommendation: "CGM requires diabetes diagnosis: E10.x (Type 1), E11.x (Type 2), E13.x (Other), or O24.x (Gestational)",
	}}
}

func (a *Auditor) validateDocumentation(claim *Claim) []Issue {
	var issues []Issue

	if !claim.HasFaceToFace {
		issues = append(issues, Issue{
			Severity:       SeverityError,
			Category:       CategoryDocumentation,
			Message:        "Face-to-face encounter not documented",
			Recommendation: "Document face-to-face encounter with treating physician within 6 months prior to CGM order",
		})
	}

	if !claim.HasWrittenOrder {
		issues = append(issues, Issue{
			Severity:       SeverityError,
			Category:       CategoryDocumentation,
			Message:        "Written order (DWO) not on file",
			Recommendation: "Obtain detailed written order from prescribing physician with diagnosis, device, and medical necessity",
		})
	}

	if !claim.HasMedicalNecessity {
		issues = append(issues, Issue{
			Severity:       SeverityWarning,
			Category:       CategoryDocumentation,
			Message:        "Medical necessity statement not documented",
			Recommendation: "Document why CGM is medically necessary for this patient (glycemic control, hypoglycemia risk, etc.)",
		})
	}

	if claim.InsulinTherapy != InsulinTherapyPump && claim.InsulinTherapy != InsulinTherapyMDI {
		issues = append(issues, Issue{
			Severity:       SeverityWarning,
			Category:       CategoryLCD,
			Message:        "Intensive insulin therapy not documented",
			Recommendation: "LCD L33822 requires intensive insulin regimen (3+ daily injections or pump) OR documented problematic hypoglycemia",
		})
	}

	return issues
}

func (a *Auditor) validateBundling(code string) []Issue {
	entry := a.lookup(code)
	if entry == nil {
		return nil
	}

	// The monthly allowance and its component codes exclude each other.
	if entry.Code == "K0553" {
		return []Issue{{
			Severity:       SeverityInfo,
			Category:       CategoryBundling,
			Message:        "K0553 is an all-inclusive monthly code",
			Recommendation: "Do NOT bill " + strings.Join(entry.ExclusiveWith, ", ") + " with K0553 - they are mutually exclusive",
		}}
	}

	if entry.ConflictsWith("K0553") {
		return []Issue{{
			Severity:       SeverityInfo,
			Category:       CategoryBundling,
			Message:        fmt.Sprintf("%s is a component code", entry.Code),
			Recommendation: "If using monthly supply model, use K0553 instead. Do not mix component codes with K0553.",
		}}
	}

	return nil
}

// scoreClaim grades a claim from its issue counts. A clean claim
// scores 100; warnings alone keep the score at 70 or above; any error
// caps it at 60 minus penalties.
func scoreClaim(errorCount, warningCount int) int {
	switch {
	case errorCount == 0 && warningCount == 0:
		return 100
	case errorCount == 0:
		return max(70, 100-warningCount*10)
	default:
		return max(0, 60-errorCount*20-warningCount*5)
	}
}

func summarize(errorCount, warningCount int) string {
	switch {
	case errorCount == 0 && warningCount == 0:
		return "Claim passes all LCD L33822 requirements. Ready for submission."
	case errorCount == 0:
		return fmt.Sprintf("Claim passes but has %d warning(s) to review before submission.", warningCount)
	default:
		return fmt.Sprintf("Claim has %d error(s) that must be fixed before submission.", errorCount)
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
