package srs

import (
	"sort"
	"time"
)

// DueRecords returns the records that are due at now, in review order.
func DueRecords(records []Record, now time.Time) []Record {
	var due []Record
	for _, r := range records {
		if IsDue(r, now) {
			due = append(due, r)
		}
	}
	SortForReview(due)
	return due
}

// SortForReview orders records so that never-reviewed words come first, then
// the hardest words (lowest ease), then the most overdue ones.
func SortForReview(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]

		aNew, bNew := a.TimesSeen == 0, b.TimesSeen == 0
		if aNew != bNew {
			return aNew
		}
		if a.EaseFactor != b.EaseFactor {
			return a.EaseFactor < b.EaseFactor
		}
		if !a.NextReviewAt.Equal(b.NextReviewAt) {
			return a.NextReviewAt.Before(b.NextReviewAt)
		}
		return a.WordID < b.WordID
	})
}
