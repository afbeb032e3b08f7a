package parser

import (
	"fmt"
	"os"

	"backwork/atlas/pkg/schema"
	schemaErrors "backwork/atlas/pkg/schema/errors"
)

// Parser parses policy bundle files into schema.PolicyBundle values.
// It handles YAML parsing and transformation into schema types; bundle
// invariants are checked by schema/validator after parsing.
type Parser struct {
	maxFileSize int64 // Maximum file size in bytes (default: 5MB)
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: 5 * 1024 * 1024, // 5MB
	}
}

// WithMaxFileSize sets the maximum file size limit.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// Parse parses a bundle file at the given path.
// It returns an error if the file cannot be read or has invalid YAML syntax.
func (p *Parser) Parse(path string) (*schema.PolicyBundle, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, &schemaErrors.Error{
			Type:     schemaErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Failed to access file: %v", err),
			Location: schema.Location{File: path},
		}
	}

	if fileInfo.Size() > p.maxFileSize {
		return nil, &schemaErrors.Error{
			Type:     schemaErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("File size %d exceeds maximum %d bytes", fileInfo.Size(), p.maxFileSize),
			Location: schema.Location{File: path},
		}
	}

	yb, err := parseYAMLFile(path)
	if err != nil {
		return nil, &schemaErrors.Error{
			Type:       schemaErrors.ErrorTypeSyntax,
			Message:    fmt.Sprintf("YAML parsing failed: %v", err),
			Location:   schema.Location{File: path, Line: 1},
			Suggestion: "Check YAML syntax (indentation, colons, quotes)",
		}
	}

	bundle := buildBundle(yb, path)
	bundle.SourceFile = path
	return bundle, nil
}

// ParseBytes parses bundle YAML from a byte slice.
// This is useful for testing or parsing bundles from memory.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*schema.PolicyBundle, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, &schemaErrors.Error{
			Type:     schemaErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Data size %d exceeds maximum %d bytes", len(data), p.maxFileSize),
			Location: schema.Location{File: sourcePath},
		}
	}

	yb, err := parseYAMLBytes(data)
	if err != nil {
		return nil, &schemaErrors.Error{
			Type:       schemaErrors.ErrorTypeSyntax,
			Message:    fmt.Sprintf("YAML parsing failed: %v", err),
			Location:   schema.Location{File: sourcePath, Line: 1},
			Suggestion: "Check YAML syntax (indentation, colons, quotes)",
		}
	}

	bundle := buildBundle(yb, sourcePath)
	bundle.SourceFile = sourcePath
	return bundle, nil
}

// buildBundle transforms the intermediate YAML structure into schema types.
// Locations are attached per criterion so validation errors can point at
// the definition in the source file.
func buildBundle(yb *yamlBundle, sourcePath string) *schema.PolicyBundle {
	bundle := &schema.PolicyBundle{
		ID:           yb.PolicyID,
		Title:        yb.Title,
		Version:      yb.Version,
		Jurisdiction: yb.Jurisdiction,
		Description:  yb.Description,
	}

	nodes := yb.criterionNodes()

	for i, yc := range yb.Criteria {
		def := &schema.CriterionDefinition{
			ID:               yc.ID,
			Name:             yc.Name,
			Kind:             schema.CriterionKind(yc.Kind),
			Required:         yc.Required,
			AlternativeGroup: yc.AlternativeGroup,
			Parameters: schema.Parameters{
				Fact:            yc.Parameters.Fact,
				WindowDays:      yc.Parameters.WindowDays,
				Comparator:      schema.Comparator(yc.Parameters.Comparator),
				Threshold:       yc.Parameters.Threshold,
				Min:             yc.Parameters.Min,
				Max:             yc.Parameters.Max,
				CodePrefixes:    yc.Parameters.CodePrefixes,
				ConfidenceFloor: yc.Parameters.ConfidenceFloor,
			},
			Location: schema.Location{File: sourcePath},
		}

		if i < len(nodes) && nodes[i] != nil {
			def.Location.Line = nodes[i].Line
			def.Location.Column = nodes[i].Column
		}

		bundle.Criteria = append(bundle.Criteria, def)
	}

	return bundle
}
