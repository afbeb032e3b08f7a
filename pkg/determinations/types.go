package determinations

import (
	"context"
	"time"

	"backwork/atlas/pkg/eligibility"
)

// StoredDetermination wraps an engine determination with storage
// identity. The identity fields live here rather than on the
// determination itself so that identical evaluations stay
// byte-identical while every stored record remains unique.
type StoredDetermination struct {
	// ID is a UUID v4 assigned at record time.
	ID string `json:"id"`

	// SubjectID identifies the patient or claim the determination is
	// about. Opaque to this package.
	SubjectID string `json:"subject_id"`

	// RecordedAt is when the determination was persisted.
	RecordedAt time.Time `json:"recorded_at"`

	// Determination is the engine output, stored as produced.
	Determination *eligibility.Determination `json:"determination"`
}

// Query defines filter parameters for querying stored determinations.
type Query struct {
	// Time range over RecordedAt.
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive start time
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive end time

	// Filters
	SubjectID     string `json:"subject_id,omitempty"`     // Filter by subject
	PolicyID      string `json:"policy_id,omitempty"`      // Filter by policy
	OverallStatus string `json:"overall_status,omitempty"` // Filter by overall status

	// Pagination
	Limit  int `json:"limit,omitempty"`  // Max records to return
	Offset int `json:"offset,omitempty"` // Skip N records

	// Sorting
	SortOrder string `json:"sort_order,omitempty"` // "asc" or "desc" over recorded_at
}

// Storage defines the interface for determination storage backends.
// Implementations must be thread-safe and support concurrent access.
type Storage interface {
	// Store persists a stored determination.
	Store(ctx context.Context, record *StoredDetermination) error

	// Get retrieves a single determination by id.
	// Returns nil and no error if the id is unknown.
	Get(ctx context.Context, id string) (*StoredDetermination, error)

	// Query retrieves determinations matching the query filters.
	// Returns an empty slice if no records match.
	Query(ctx context.Context, query *Query) ([]*StoredDetermination, error)

	// Count returns the number of determinations matching the query filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes determinations matching the query filters.
	// Returns the number of records deleted.
	// Used for retention policy enforcement.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases any resources held by the storage backend.
	Close() error
}
