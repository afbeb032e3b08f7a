package determinations

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"backwork/atlas/pkg/eligibility"
)

// stubStorage captures stored records for recorder tests.
type stubStorage struct {
	mu      sync.Mutex
	records []*StoredDetermination
	err     error
}

func (s *stubStorage) Store(ctx context.Context, record *StoredDetermination) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *stubStorage) Get(ctx context.Context, id string) (*StoredDetermination, error) {
	return nil, nil
}

func (s *stubStorage) Query(ctx context.Context, query *Query) ([]*StoredDetermination, error) {
	return nil, nil
}

func (s *stubStorage) Count(ctx context.Context, query *Query) (int64, error) {
	return 0, nil
}

func (s *stubStorage) Delete(ctx context.Context, query *Query) (int64, error) {
	return 0, nil
}

func (s *stubStorage) Close() error { return nil }

func sampleDetermination() *eligibility.Determination {
	return &eligibility.Determination{
		PolicyID:      "L33822",
		PolicyTitle:   "Glucose Monitors",
		PolicyVersion: "2026-01",
		OverallStatus: eligibility.StatusQualified,
		MetCount:      6,
		TotalCount:    6,
		Summary:       "All 6 required coverage criteria for L33822 (Glucose Monitors) are met.",
		AsOf:          time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestRecorder_AssignsIdentity(t *testing.T) {
	storage := &stubStorage{}
	recordedAt := time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)
	recorder := NewRecorder(storage, &RecorderConfig{
		Clock: func() time.Time { return recordedAt },
	})

	stored, err := recorder.Record(context.Background(), "patient-123", sampleDetermination())
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if stored.ID == "" {
		t.Error("expected an assigned id")
	}
	if stored.SubjectID != "patient-123" {
		t.Errorf("expected subject id to be set, got %q", stored.SubjectID)
	}
	if !stored.RecordedAt.Equal(recordedAt) {
		t.Errorf("expected recorded-at from clock, got %v", stored.RecordedAt)
	}
	if stored.Determination.PolicyID != "L33822" {
		t.Error("expected determination payload to be stored as produced")
	}
	if len(storage.records) != 1 {
		t.Errorf("expected 1 stored record, got %d", len(storage.records))
	}
}

func TestRecorder_UniqueIDs(t *testing.T) {
	storage := &stubStorage{}
	recorder := NewRecorder(storage, nil)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		stored, err := recorder.Record(context.Background(), "patient-123", sampleDetermination())
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		if seen[stored.ID] {
			t.Fatalf("duplicate id %s", stored.ID)
		}
		seen[stored.ID] = true
	}
}

func TestRecorder_NilDetermination(t *testing.T) {
	recorder := NewRecorder(&stubStorage{}, nil)

	_, err := recorder.Record(context.Background(), "patient-123", nil)
	if err == nil {
		t.Fatal("expected error for nil determination")
	}

	var re *RecorderError
	if !errors.As(err, &re) {
		t.Errorf("expected RecorderError, got %T", err)
	}
}

func TestRecorder_StorageFailure(t *testing.T) {
	storage := &stubStorage{err: errors.New("disk full")}
	recorder := NewRecorder(storage, nil)

	_, err := recorder.Record(context.Background(), "patient-123", sampleDetermination())
	if err == nil {
		t.Fatal("expected storage error to propagate")
	}

	var re *RecorderError
	if !errors.As(err, &re) {
		t.Fatalf("expected RecorderError, got %T", err)
	}
	if re.RecordID == "" {
		t.Error("expected record id in error")
	}
}
