package srs

import (
	"math"
	"time"
)

// Update applies one practice outcome and returns the next state of the record.
// The given record is not modified.
func Update(record Record, isCorrect bool, now time.Time) Record {
	next := record
	if next.EaseFactor == 0 {
		next.EaseFactor = DefaultEaseFactor
	}

	next.TimesSeen++
	if isCorrect {
		next.TimesCorrect++
	} else {
		next.TimesIncorrect++
	}

	next.Status = nextStatus(next)
	next.MasteryLevel = masteryLevel(next.TimesCorrect, next.TimesSeen)

	if isCorrect {
		next.Repetitions++
		next.IntervalDays = CalculateNextInterval(next.IntervalDays, next.EaseFactor, next.Repetitions)
	} else {
		next.Repetitions = 0
		next.IntervalDays = 1
		next.EaseFactor = math.Max(MinEaseFactor, next.EaseFactor-easePenalty)
	}

	next.NextReviewAt = now.AddDate(0, 0, next.IntervalDays)
	reviewedAt := now
	next.LastReviewedAt = &reviewedAt
	return next
}

// CalculateNextInterval returns the interval after a correct answer:
// 1 day for the first one in a row, 6 for the second, then lastInterval * ease.
func CalculateNextInterval(lastInterval int, ease float64, repetitions int) int {
	switch repetitions {
	case 1:
		return 1
	case 2:
		return 6
	}
	interval := int(math.Round(float64(lastInterval) * ease))
	return max(interval, 1)
}

// nextStatus promotes but never demotes.
func nextStatus(r Record) Status {
	switch {
	case r.Status == StatusLearned || r.TimesCorrect >= LearnedThreshold:
		return StatusLearned
	case r.TimesSeen >= 1:
		return StatusLearning
	default:
		return StatusNew
	}
}

func masteryLevel(correct, seen int) int {
	level := 100 * correct / max(1, seen)
	return min(max(level, 0), 100)
}
