package eligibility

import (
	"errors"
	"fmt"

	"backwork/atlas/pkg/record"
)

// Common sentinel errors
var (
	// ErrInvalidConfig indicates invalid engine configuration.
	ErrInvalidConfig = errors.New("invalid engine configuration")

	// ErrNilRecord indicates a nil extracted record was passed to the engine.
	ErrNilRecord = errors.New("extracted record cannot be nil")
)

// UnknownPolicyError indicates an evaluation referenced a policy id the
// registry does not hold. The engine never falls back to default
// criteria on a lookup miss.
type UnknownPolicyError struct {
	PolicyID string
}

// Error returns the error message.
func (e *UnknownPolicyError) Error() string {
	return fmt.Sprintf("unknown policy: %q", e.PolicyID)
}

// IsUnknownPolicy reports whether the error is a policy lookup miss.
func IsUnknownPolicy(err error) bool {
	var upe *UnknownPolicyError
	return errors.As(err, &upe)
}

// IsExtractionFailed reports whether the error is an adapter extraction
// failure, the distinct terminal state returned before any criterion
// evaluation runs.
func IsExtractionFailed(err error) bool {
	var ee *record.ExtractionError
	return errors.As(err, &ee)
}
