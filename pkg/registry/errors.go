package registry

import "fmt"

// RegistryError represents an error from a registry operation.
type RegistryError struct {
	// PolicyID is the id of the bundle involved (if applicable).
	PolicyID string

	// Operation is the registry operation that failed.
	Operation string

	// Message describes the error.
	Message string
}

// Error implements the error interface.
func (e *RegistryError) Error() string {
	if e.PolicyID != "" {
		return fmt.Sprintf("registry %s failed for policy %q: %s", e.Operation, e.PolicyID, e.Message)
	}
	return fmt.Sprintf("registry %s failed: %s", e.Operation, e.Message)
}

// LoadError represents an error that occurred while loading a bundle
// file. This covers file system failures as well as parse and
// validation rejections.
type LoadError struct {
	// FilePath is the path to the file that failed to load.
	FilePath string

	// Message describes the error.
	Message string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load bundle file %q: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load bundle file %q: %s", e.FilePath, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}
