// Package schema defines the declarative representation of a coverage
// policy: a versioned bundle of criterion definitions loaded from YAML.
//
// A PolicyBundle is policy-as-data. Each criterion carries a kind tag
// (presence, date_window, numeric_threshold, code_membership,
// free_text_judgment) and kind-specific parameters, so new policies are
// added by writing a bundle file rather than by touching evaluator code.
// Criteria that are mutually substitutable share an alternative group id;
// satisfying any one member satisfies the group.
//
// Bundles are immutable once loaded. Parsing lives in schema/parser and
// load-time validation in schema/validator.
package schema
