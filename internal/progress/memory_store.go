package progress

import (
	"context"
	"sync"
	"time"

	"github.com/at-ishikawa/wordcoach/internal/srs"
)

type recordKey struct {
	userID int64
	wordID int64
}

// MemoryStore keeps progress in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[recordKey]srs.Record
	attempts []Attempt
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[recordKey]srs.Record)}
}

func (s *MemoryStore) Get(_ context.Context, userID, wordID int64) (*srs.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[recordKey{userID, wordID}]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (s *MemoryStore) Put(_ context.Context, record srs.Record) (srs.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey{record.UserID, record.WordID}
	stored, exists := s.records[key]
	switch {
	case record.Version == 0 && exists:
		return srs.Record{}, ErrConflict
	case record.Version != 0 && (!exists || stored.Version != record.Version):
		return srs.Record{}, ErrConflict
	}

	record.Version++
	s.records[key] = record
	return record, nil
}

func (s *MemoryStore) ListDue(_ context.Context, userID int64, now time.Time, limit int) ([]srs.Record, error) {
	s.mu.RLock()
	var records []srs.Record
	for key, r := range s.records {
		if key.userID == userID {
			records = append(records, r)
		}
	}
	s.mu.RUnlock()

	due := srs.DueRecords(records, now)
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *MemoryStore) CountDueByUser(_ context.Context, now time.Time) (map[int64]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int64]int)
	for key, r := range s.records {
		if srs.IsDue(r, now) {
			counts[key.userID]++
		}
	}
	return counts, nil
}

func (s *MemoryStore) RecordAttempt(_ context.Context, attempt Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, attempt)
	return nil
}

// Attempts returns the recorded attempts of a user on a word, oldest first.
func (s *MemoryStore) Attempts(userID, wordID int64) []Attempt {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Attempt
	for _, a := range s.attempts {
		if a.UserID == userID && a.WordID == wordID {
			result = append(result, a)
		}
	}
	return result
}
