// Package progress persists learner progress and applies practice outcomes to it.
package progress

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/at-ishikawa/wordcoach/internal/srs"
)

//go:generate mockgen -source=store.go -destination=../mocks/progress/mock_store.go -package=mock_progress

var (
	// ErrConflict is returned by Store.Put when the stored record changed since it was read.
	ErrConflict = errors.New("progress record was modified concurrently")
	// ErrInvalidID is returned for non-positive user or word IDs.
	ErrInvalidID = errors.New("user and word IDs must be positive")
)

// Store loads and saves progress records.
type Store interface {
	// Get returns nil, nil when the user has no record for the word.
	Get(ctx context.Context, userID, wordID int64) (*srs.Record, error)
	// Put inserts a record with Version 0, or replaces the stored record with the
	// same Version. The saved record is returned with its new Version.
	Put(ctx context.Context, record srs.Record) (srs.Record, error)
}

// DueLister finds records that are due for review.
type DueLister interface {
	ListDue(ctx context.Context, userID int64, now time.Time, limit int) ([]srs.Record, error)
	CountDueByUser(ctx context.Context, now time.Time) (map[int64]int, error)
}

// AttemptRecorder keeps the history of practice attempts.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, attempt Attempt) error
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Attempt is one answer given by a learner.
type Attempt struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	WordID    int64     `db:"word_id" json:"word_id"`
	IsCorrect bool      `db:"is_correct" json:"is_correct"`
	// Score is nil when the outcome was reported without a spoken evaluation.
	Score       *int      `db:"score" json:"score,omitempty"`
	Spoken      string    `db:"spoken" json:"spoken"`
	AttemptedAt time.Time `db:"attempted_at" json:"attempted_at"`
}

func validateIDs(userID, wordID int64) error {
	if userID <= 0 || wordID <= 0 {
		return ErrInvalidID
	}
	return nil
}
