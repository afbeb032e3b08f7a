package logging

import "testing"

func TestRedactString(t *testing.T) {
	r := NewRedactor(nil)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "ssn",
			input: "beneficiary ssn 123-45-6789 on file",
			want:  "beneficiary ssn ***-**-**** on file",
		},
		{
			name:  "medicare beneficiary identifier",
			input: "mbi 1EG4-TE5-MK73",
			want:  "mbi ****-***-****",
		},
		{
			name:  "medical record number",
			input: "chart MRN: 1234567 reviewed",
			want:  "chart MRN *** reviewed",
		},
		{
			name:  "email",
			input: "contact jane.doe@example.com",
			want:  "contact ***@***",
		},
		{
			name:  "phone",
			input: "callback 555-123-4567",
			want:  "callback ***-***-****",
		},
		{
			name:  "clean text untouched",
			input: "policy L33822 evaluated with 6 criteria",
			want:  "policy L33822 evaluated with 6 criteria",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.RedactString(tt.input); got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRedactorCustomPattern(t *testing.T) {
	r := NewRedactor([]Pattern{
		{Name: "account", Regex: `ACCT-\d+`, Replacement: "ACCT-***"},
	})

	got := r.RedactString("billing ACCT-99182 flagged")
	want := "billing ACCT-*** flagged"
	if got != want {
		t.Errorf("RedactString() = %q, want %q", got, want)
	}
}

func TestRedactorInvalidCustomPatternSkipped(t *testing.T) {
	r := NewRedactor([]Pattern{
		{Name: "broken", Regex: `([`, Replacement: "***"},
	})

	// Built-in patterns still apply
	if got := r.RedactString("ssn 123-45-6789"); got != "ssn ***-**-****" {
		t.Errorf("built-in redaction lost: %q", got)
	}
}

func TestIsSensitiveKey(t *testing.T) {
	r := NewRedactor(nil)

	tests := []struct {
		key  string
		want bool
	}{
		{"ssn", true},
		{"patient_ssn", true},
		{"patient_name", true},
		{"date_of_birth", true},
		{"MRN", true},
		{"beneficiary_id", true},
		{"phone_number", true},
		{"policy_id", false},
		{"subject_id", false},
		{"hcpcs_code", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := r.IsSensitiveKey(tt.key); got != tt.want {
				t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestMaskValue(t *testing.T) {
	r := NewRedactor(nil)

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"long string keeps hint", "1EG4-TE5-MK73", "1E***"},
		{"short string fully masked", "abc", "***"},
		{"non-string fully masked", 42, "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.MaskValue(tt.value); got != tt.want {
				t.Errorf("MaskValue(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
