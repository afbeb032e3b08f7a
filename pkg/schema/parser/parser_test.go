package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"backwork/atlas/pkg/schema"
	schemaErrors "backwork/atlas/pkg/schema/errors"
)

const validBundleYAML = `policy_id: L33822
title: Glucose Monitors
version: "2026-01"
jurisdiction: DME MACs

criteria:
  - id: diabetes-diagnosis
    name: diabetes mellitus diagnosis
    kind: code_membership
    required: true
    parameters:
      fact: diagnoses
      code_prefixes: [E10, E11, E13, O24]

  - id: face-to-face
    name: face-to-face encounter
    kind: date_window
    required: true
    parameters:
      fact: encounters
      window_days: 180

  - id: a1c-recent
    name: recent hemoglobin A1c
    kind: numeric_threshold
    parameters:
      fact: a1c
      comparator: lte
      threshold: 10.0
`

func TestParseBytes(t *testing.T) {
	bundle, err := NewParser().ParseBytes([]byte(validBundleYAML), "bundle.yaml")
	if err != nil {
		t.Fatalf("ParseBytes() returned error: %v", err)
	}

	if bundle.ID != "L33822" {
		t.Errorf("ID = %q, want %q", bundle.ID, "L33822")
	}
	if bundle.Title != "Glucose Monitors" {
		t.Errorf("Title = %q, want %q", bundle.Title, "Glucose Monitors")
	}
	if bundle.Version != "2026-01" {
		t.Errorf("Version = %q, want %q", bundle.Version, "2026-01")
	}
	if len(bundle.Criteria) != 3 {
		t.Fatalf("got %d criteria, want 3", len(bundle.Criteria))
	}

	first := bundle.Criteria[0]
	if first.ID != "diabetes-diagnosis" {
		t.Errorf("first criterion id = %q, want %q", first.ID, "diabetes-diagnosis")
	}
	if first.Kind != schema.KindCodeMembership {
		t.Errorf("first criterion kind = %q, want %q", first.Kind, schema.KindCodeMembership)
	}
	if !first.Required {
		t.Error("first criterion should be required")
	}
	if len(first.Parameters.CodePrefixes) != 4 {
		t.Errorf("code prefixes = %v, want 4 entries", first.Parameters.CodePrefixes)
	}

	second := bundle.Criteria[1]
	if second.Parameters.WindowDays != 180 {
		t.Errorf("window_days = %d, want 180", second.Parameters.WindowDays)
	}

	third := bundle.Criteria[2]
	if third.Required {
		t.Error("a1c criterion should not be required")
	}
	if third.Parameters.Comparator != schema.ComparatorLessEqual {
		t.Errorf("comparator = %q, want %q", third.Parameters.Comparator, schema.ComparatorLessEqual)
	}
	if third.Parameters.Threshold != 10.0 {
		t.Errorf("threshold = %v, want 10.0", third.Parameters.Threshold)
	}
}

func TestParseBytesAttachesLocations(t *testing.T) {
	bundle, err := NewParser().ParseBytes([]byte(validBundleYAML), "bundle.yaml")
	if err != nil {
		t.Fatalf("ParseBytes() returned error: %v", err)
	}

	for _, def := range bundle.Criteria {
		if def.Location.File != "bundle.yaml" {
			t.Errorf("criterion %q location file = %q, want %q", def.ID, def.Location.File, "bundle.yaml")
		}
		if def.Location.Line == 0 {
			t.Errorf("criterion %q has no source line", def.ID)
		}
	}
}

func TestParseBytesSyntaxError(t *testing.T) {
	_, err := NewParser().ParseBytes([]byte("policy_id: [unclosed"), "broken.yaml")
	if err == nil {
		t.Fatal("ParseBytes() with malformed YAML should return error")
	}

	var parseErr *schemaErrors.Error
	if !errors.As(err, &parseErr) {
		t.Fatalf("error type = %T, want *schemaErrors.Error", err)
	}
	if parseErr.Type != schemaErrors.ErrorTypeSyntax {
		t.Errorf("error type = %q, want %q", parseErr.Type, schemaErrors.ErrorTypeSyntax)
	}
}

func TestParseBytesSizeLimit(t *testing.T) {
	_, err := NewParser().WithMaxFileSize(10).ParseBytes([]byte(validBundleYAML), "big.yaml")
	if err == nil {
		t.Fatal("ParseBytes() over size limit should return error")
	}

	var parseErr *schemaErrors.Error
	if !errors.As(err, &parseErr) {
		t.Fatalf("error type = %T, want *schemaErrors.Error", err)
	}
	if parseErr.Type != schemaErrors.ErrorTypeIO {
		t.Errorf("error type = %q, want %q", parseErr.Type, schemaErrors.ErrorTypeIO)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.yaml")
	if err := os.WriteFile(path, []byte(validBundleYAML), 0644); err != nil {
		t.Fatal(err)
	}

	bundle, err := NewParser().Parse(path)
	if err != nil {
		t.Fatalf("Parse() returned error: %v", err)
	}
	if bundle.SourceFile != path {
		t.Errorf("SourceFile = %q, want %q", bundle.SourceFile, path)
	}
}

func TestParseMissingFile(t *testing.T) {
	_, err := NewParser().Parse(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Parse() with missing file should return error")
	}

	var parseErr *schemaErrors.Error
	if !errors.As(err, &parseErr) {
		t.Fatalf("error type = %T, want *schemaErrors.Error", err)
	}
	if parseErr.Type != schemaErrors.ErrorTypeIO {
		t.Errorf("error type = %q, want %q", parseErr.Type, schemaErrors.ErrorTypeIO)
	}
}
