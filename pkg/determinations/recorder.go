package determinations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"backwork/atlas/pkg/eligibility"
)

// RecorderConfig contains configuration for the recorder.
type RecorderConfig struct {
	// Clock supplies the recorded-at timestamp. Overridable for tests.
	// Default: time.Now.
	Clock func() time.Time
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		Clock: time.Now,
	}
}

// Recorder assigns identity to determinations and persists them. The
// stored payload is the determination exactly as the engine produced
// it.
type Recorder struct {
	storage Storage
	config  *RecorderConfig
	logger  *slog.Logger
}

// NewRecorder creates a new determination recorder.
func NewRecorder(storage Storage, config *RecorderConfig) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}

	return &Recorder{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "determinations.recorder"),
	}
}

// Record persists a determination for the given subject and returns the
// stored record with its assigned id.
func (r *Recorder) Record(ctx context.Context, subjectID string, det *eligibility.Determination) (*StoredDetermination, error) {
	if det == nil {
		return nil, &RecorderError{Cause: fmt.Errorf("determination cannot be nil")}
	}

	stored := &StoredDetermination{
		ID:            uuid.New().String(),
		SubjectID:     subjectID,
		RecordedAt:    r.config.Clock(),
		Determination: det,
	}

	if err := r.storage.Store(ctx, stored); err != nil {
		return nil, &RecorderError{RecordID: stored.ID, Cause: err}
	}

	r.logger.Debug("determination recorded",
		"record_id", stored.ID,
		"subject_id", subjectID,
		"policy_id", det.PolicyID,
		"overall_status", det.OverallStatus,
	)

	return stored, nil
}
