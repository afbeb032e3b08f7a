package storage

import (
	"context"
	"sort"
	"sync"

	"backwork/atlas/pkg/determinations"
)

// MemoryStorage implements the Storage interface using an in-memory map.
// This implementation is intended for testing only.
type MemoryStorage struct {
	records map[string]*determinations.StoredDetermination
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*determinations.StoredDetermination),
	}
}

// Store persists a determination record to memory.
func (s *MemoryStorage) Store(ctx context.Context, record *determinations.StoredDetermination) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *record
	s.records[record.ID] = &recordCopy

	return nil
}

// Get retrieves a single determination by id.
func (s *MemoryStorage) Get(ctx context.Context, id string) (*determinations.StoredDetermination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, nil
	}

	recordCopy := *record
	return &recordCopy, nil
}

// Query retrieves determinations matching the query filters, sorted by
// recorded time.
func (s *MemoryStorage) Query(ctx context.Context, query *determinations.Query) ([]*determinations.StoredDetermination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []*determinations.StoredDetermination{}
	for _, record := range s.records {
		if s.matchesQuery(record, query) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}

	asc := query.SortOrder == "asc"
	sort.Slice(results, func(i, j int) bool {
		if asc {
			return results[i].RecordedAt.Before(results[j].RecordedAt)
		}
		return results[i].RecordedAt.After(results[j].RecordedAt)
	})

	start := query.Offset
	if start > len(results) {
		return []*determinations.StoredDetermination{}, nil
	}

	if query.Limit > 0 {
		end := start + query.Limit
		if end > len(results) {
			end = len(results)
		}
		results = results[start:end]
	} else if start > 0 {
		results = results[start:]
	}

	return results, nil
}

// Count returns the number of determinations matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *determinations.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if s.matchesQuery(record, query) {
			count++
		}
	}

	return count, nil
}

// Delete removes determinations matching the query filters.
func (s *MemoryStorage) Delete(ctx context.Context, query *determinations.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64

	toDelete := []string{}
	for id, record := range s.records {
		if s.matchesQuery(record, query) {
			toDelete = append(toDelete, id)
		}
	}

	for _, id := range toDelete {
		delete(s.records, id)
		deleted++
	}

	return deleted, nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*determinations.StoredDetermination)
	return nil
}

// matchesQuery checks if a record matches the query filters.
func (s *MemoryStorage) matchesQuery(record *determinations.StoredDetermination, query *determinations.Query) bool {
	if query.StartTime != nil && record.RecordedAt.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.RecordedAt.After(*query.EndTime) {
		return false
	}

	if query.SubjectID != "" && record.SubjectID != query.SubjectID {
		return false
	}

	if query.PolicyID != "" && record.Determination.PolicyID != query.PolicyID {
		return false
	}

	if query.OverallStatus != "" && string(record.Determination.OverallStatus) != query.OverallStatus {
		return false
	}

	return true
}

// Size returns the number of records in storage (for testing).
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}
