// Package srs schedules vocabulary reviews with a simplified two-tier SM-2.
package srs

import "time"

const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	easePenalty       = 0.2

	// LearnedThreshold is the number of correct answers that marks a word as learned.
	LearnedThreshold = 5
)

// Status is the learning stage of a word for one learner.
type Status string

const (
	StatusNew      Status = "new"
	StatusLearning Status = "learning"
	StatusLearned  Status = "learned"
)

// Record is the progress of one user on one word.
type Record struct {
	UserID         int64      `db:"user_id" yaml:"user_id" json:"user_id"`
	WordID         int64      `db:"word_id" yaml:"word_id" json:"word_id"`
	TimesSeen      int        `db:"times_seen" yaml:"times_seen" json:"times_seen"`
	TimesCorrect   int        `db:"times_correct" yaml:"times_correct" json:"times_correct"`
	TimesIncorrect int        `db:"times_incorrect" yaml:"times_incorrect" json:"times_incorrect"`
	Status         Status     `db:"status" yaml:"status" json:"status"`
	MasteryLevel   int        `db:"mastery_level" yaml:"mastery_level" json:"mastery_level"`
	EaseFactor     float64    `db:"ease_factor" yaml:"ease_factor" json:"ease_factor"`
	IntervalDays   int        `db:"interval_days" yaml:"interval_days" json:"interval_days"`
	Repetitions    int        `db:"repetitions" yaml:"repetitions" json:"repetitions"`
	NextReviewAt   time.Time  `db:"next_review_at" yaml:"next_review_at" json:"next_review_at"`
	LastReviewedAt *time.Time `db:"last_reviewed_at" yaml:"last_reviewed_at,omitempty" json:"last_reviewed_at,omitempty"`

	// Version is owned by the store for optimistic locking. Update never changes it.
	Version int64 `db:"version" yaml:"version" json:"version"`
}

// NewRecord returns the progress of a word that has just entered a learner's list.
// It is due immediately.
func NewRecord(userID, wordID int64, now time.Time) Record {
	return Record{
		UserID:       userID,
		WordID:       wordID,
		Status:       StatusNew,
		EaseFactor:   DefaultEaseFactor,
		IntervalDays: 1,
		NextReviewAt: now,
	}
}

// Reset discards all progress on the word, keeping its identity and store version.
// It is the only way a learned word goes back to new.
func Reset(record Record, now time.Time) Record {
	fresh := NewRecord(record.UserID, record.WordID, now)
	fresh.Version = record.Version
	return fresh
}

// IsDue reports whether the word should be reviewed at now.
func IsDue(record Record, now time.Time) bool {
	return !record.NextReviewAt.After(now)
}
