package logging

import (
	"fmt"
	"regexp"
	"strings"
)

// Redactor rewrites protected health information in log text.
type Redactor struct {
	patterns map[string]*redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Pattern is a custom redaction pattern.
type Pattern struct {
	Name        string
	Regex       string
	Replacement string
}

// Built-in pattern names.
const (
	PatternSSN   = "ssn"
	PatternMBI   = "mbi"
	PatternMRN   = "mrn"
	PatternEmail = "email"
	PatternPhone = "phone"
)

// NewRedactor creates a Redactor with the built-in patterns plus any
// custom ones. Custom patterns with invalid regexes are skipped.
func NewRedactor(custom []Pattern) *Redactor {
	r := &Redactor{
		patterns: make(map[string]*redactPattern),
	}
	r.addDefaultPatterns()

	for _, p := range custom {
		regex, err := regexp.Compile(p.Regex)
		if err != nil {
			continue
		}
		r.patterns[p.Name] = &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		}
	}

	return r
}

// addDefaultPatterns adds the built-in PHI redaction patterns.
func (r *Redactor) addDefaultPatterns() {
	patterns := map[string]struct {
		regex       string
		replacement string
	}{
		// Social Security Numbers
		PatternSSN: {
			regex:       `\b\d{3}[-\s]?\d{2}[-\s]?\d{4}\b`,
			replacement: "***-**-****",
		},

		// Medicare Beneficiary Identifiers (e.g. 1EG4-TE5-MK73)
		PatternMBI: {
			regex:       `\b[1-9][A-Z][A-Z0-9]\d-?[A-Z][A-Z0-9]\d-?[A-Z]{2}\d{2}\b`,
			replacement: "****-***-****",
		},

		// Medical record numbers tagged with an MRN prefix
		PatternMRN: {
			regex:       `\b(?i:mrn)[:#\s]?\s*\d{5,10}\b`,
			replacement: "MRN ***",
		},

		// Email addresses
		PatternEmail: {
			regex:       `\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`,
			replacement: "***@***",
		},

		// Phone numbers
		PatternPhone: {
			regex:       `\b(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]\d{3}[-.\s]?\d{4}\b`,
			replacement: "***-***-****",
		},
	}

	for name, p := range patterns {
		r.patterns[name] = &redactPattern{
			name:        name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		}
	}
}

// RedactString rewrites PHI in a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}

	redacted := value
	for _, pattern := range r.patterns {
		redacted = pattern.regex.ReplaceAllString(redacted, pattern.replacement)
	}

	return redacted
}

// sensitiveKeys are attribute key fragments whose values are always
// fully masked regardless of content.
var sensitiveKeys = []string{
	"ssn", "social_security",
	"mbi", "beneficiary_id",
	"mrn", "medical_record",
	"patient_name", "date_of_birth", "dob",
	"phone", "email", "address",
}

// IsSensitiveKey reports whether an attribute key names data that must
// be fully masked.
func (r *Redactor) IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

// MaskValue fully masks a sensitive value, keeping a short prefix of
// string values as a debugging hint.
func (r *Redactor) MaskValue(value any) string {
	s, ok := value.(string)
	if !ok {
		if stringer, isStringer := value.(fmt.Stringer); isStringer {
			s = stringer.String()
		} else {
			return "***"
		}
	}
	if len(s) <= 4 {
		return "***"
	}
	return s[:2] + "***"
}
