package record

import (
	"context"
	"fmt"
)

// SourceDocument identifies the raw material an adapter extracts from.
// The engine never reads document content; it is opaque payload for the
// adapter.
type SourceDocument struct {
	// ID identifies the document (upload id, file path, chart number).
	ID string

	// ContentType is the document MIME type (e.g. "application/pdf").
	ContentType string

	// Data is the raw document content.
	Data []byte
}

// ExtractionAdapter produces an ExtractedRecord from a source document.
// Implementations may be backed by a vision model, OCR, or manual entry.
//
// The contract is all-or-nothing: an adapter returns either a complete
// (possibly sparse) record or an error. It must never return a partially
// valid record alongside a nil error.
type ExtractionAdapter interface {
	Extract(ctx context.Context, doc SourceDocument) (*ExtractedRecord, error)
}

// ExtractionError reports that an adapter could not produce a record at
// all. Callers surface this as a distinct terminal state; it is never
// treated as "all criteria insufficient".
type ExtractionError struct {
	// SourceID identifies the document extraction failed on.
	SourceID string

	// Adapter names the adapter that failed.
	Adapter string

	// Cause is the underlying failure.
	Cause error
}

// Error returns the error message.
func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed for source %q (adapter %s): %v", e.SourceID, e.Adapter, e.Cause)
	}
	return fmt.Sprintf("extraction failed for source %q (adapter %s)", e.SourceID, e.Adapter)
}

// Unwrap returns the underlying cause.
func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
