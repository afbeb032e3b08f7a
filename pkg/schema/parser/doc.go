// Package parser parses YAML policy bundle files into schema.PolicyBundle
// values. It preserves YAML line numbers so that validation errors can
// point at the offending definition in the source file.
//
// Parsing is purely structural transformation; invariant checking lives
// in schema/validator and runs before a bundle is registered.
package parser
