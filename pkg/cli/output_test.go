package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestTextFormatter(t *testing.T) {
	formatter := &TextFormatter{}

	output, err := formatter.Format("determination stored")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	expected := "determination stored\n"
	if string(output) != expected {
		t.Errorf("Format() = %q, want %q", string(output), expected)
	}
}

func TestJSONFormatter(t *testing.T) {
	tests := []struct {
		name   string
		data   interface{}
		indent bool
	}{
		{
			name:   "simple string",
			data:   "qualified",
			indent: false,
		},
		{
			name: "map with indent",
			data: map[string]string{
				"policy_id": "L33822",
			},
			indent: true,
		},
		{
			name: "struct",
			data: struct {
				Status string `json:"status"`
				Met    int    `json:"met"`
			}{
				Status: "qualified",
				Met:    6,
			},
			indent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &JSONFormatter{Indent: tt.indent}
			output, err := formatter.Format(tt.data)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}

			var result interface{}
			if err := json.Unmarshal(output, &result); err != nil {
				t.Errorf("Format() produced invalid JSON: %v", err)
			}
		})
	}
}

func TestJSONFormatterWriter(t *testing.T) {
	formatter := &JSONFormatter{Indent: true}
	data := map[string]string{"policy_id": "L33822"}
	buf := &bytes.Buffer{}

	if err := formatter.FormatTo(buf, data); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var result map[string]string
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Errorf("FormatTo() produced invalid JSON: %v", err)
	}
	if result["policy_id"] != "L33822" {
		t.Errorf("FormatTo() = %v, want %v", result, data)
	}
}

func TestCSVFormatter(t *testing.T) {
	formatter := &CSVFormatter{
		Headers: []string{"subject", "policy", "status"},
	}

	rows := [][]string{
		{"patient-17", "L33822", "qualified"},
		{"patient-23", "L33822", "not_qualified"},
	}

	output, err := formatter.Format(rows)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), string(output))
	}
	if lines[0] != "subject,policy,status" {
		t.Errorf("header = %q, want %q", lines[0], "subject,policy,status")
	}
	if lines[1] != "patient-17,L33822,qualified" {
		t.Errorf("row = %q, want %q", lines[1], "patient-17,L33822,qualified")
	}
}

func TestCSVFormatterRejectsNonRows(t *testing.T) {
	formatter := &CSVFormatter{}

	if _, err := formatter.Format("not rows"); err == nil {
		t.Error("Format() with non-row data should return error")
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name   string
		format OutputFormat
		want   string
	}{
		{
			name:   "text formatter",
			format: FormatText,
			want:   "*cli.TextFormatter",
		},
		{
			name:   "json formatter",
			format: FormatJSON,
			want:   "*cli.JSONFormatter",
		},
		{
			name:   "csv formatter",
			format: FormatCSV,
			want:   "*cli.CSVFormatter",
		},
		{
			name:   "default to text",
			format: "unknown",
			want:   "*cli.TextFormatter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := NewFormatter(tt.format)
			got := fmt.Sprintf("%T", formatter)
			if got != tt.want {
				t.Errorf("NewFormatter(%q) type = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}
