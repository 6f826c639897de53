package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func applyOutcomes(r Record, outcomes ...bool) Record {
	now := testNow
	for _, correct := range outcomes {
		r = Update(r, correct, now)
		now = now.Add(24 * time.Hour)
	}
	return r
}

func TestNewRecord(t *testing.T) {
	r := NewRecord(1, 2, testNow)

	assert.Equal(t, int64(1), r.UserID)
	assert.Equal(t, int64(2), r.WordID)
	assert.Equal(t, StatusNew, r.Status)
	assert.Equal(t, DefaultEaseFactor, r.EaseFactor)
	assert.Equal(t, 1, r.IntervalDays)
	assert.Zero(t, r.TimesSeen)
	assert.Zero(t, r.Repetitions)
	assert.Nil(t, r.LastReviewedAt)
	assert.True(t, IsDue(r, testNow))
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name      string
		record    Record
		isCorrect bool
		want      Record
	}{
		{
			name:      "first correct answer",
			record:    NewRecord(1, 1, testNow),
			isCorrect: true,
			want: Record{
				TimesSeen: 1, TimesCorrect: 1,
				Status: StatusLearning, MasteryLevel: 100,
				EaseFactor: 2.5, IntervalDays: 1, Repetitions: 1,
				NextReviewAt: testNow.AddDate(0, 0, 1),
			},
		},
		{
			name:      "first incorrect answer",
			record:    NewRecord(1, 1, testNow),
			isCorrect: false,
			want: Record{
				TimesSeen: 1, TimesIncorrect: 1,
				Status: StatusLearning, MasteryLevel: 0,
				EaseFactor: 2.3, IntervalDays: 1, Repetitions: 0,
				NextReviewAt: testNow.AddDate(0, 0, 1),
			},
		},
		{
			name: "third correct answer in a row grows by ease",
			record: Record{
				TimesSeen: 2, TimesCorrect: 2, Status: StatusLearning, MasteryLevel: 100,
				EaseFactor: 2.5, IntervalDays: 6, Repetitions: 2,
			},
			isCorrect: true,
			want: Record{
				TimesSeen: 3, TimesCorrect: 3,
				Status: StatusLearning, MasteryLevel: 100,
				EaseFactor: 2.5, IntervalDays: 15, Repetitions: 3,
				NextReviewAt: testNow.AddDate(0, 0, 15),
			},
		},
		{
			name: "miss after a streak resets repetitions and interval",
			record: Record{
				TimesSeen: 4, TimesCorrect: 4, Status: StatusLearning, MasteryLevel: 100,
				EaseFactor: 2.5, IntervalDays: 38, Repetitions: 4,
			},
			isCorrect: false,
			want: Record{
				TimesSeen: 5, TimesCorrect: 4, TimesIncorrect: 1,
				Status: StatusLearning, MasteryLevel: 80,
				EaseFactor: 2.3, IntervalDays: 1, Repetitions: 0,
				NextReviewAt: testNow.AddDate(0, 0, 1),
			},
		},
		{
			name: "ease never drops below the floor",
			record: Record{
				TimesSeen: 3, TimesIncorrect: 3, Status: StatusLearning,
				EaseFactor: 1.4, IntervalDays: 1,
			},
			isCorrect: false,
			want: Record{
				TimesSeen: 4, TimesIncorrect: 4,
				Status: StatusLearning, MasteryLevel: 0,
				EaseFactor: MinEaseFactor, IntervalDays: 1,
				NextReviewAt: testNow.AddDate(0, 0, 1),
			},
		},
		{
			name: "fifth correct answer marks learned",
			record: Record{
				TimesSeen: 7, TimesCorrect: 4, TimesIncorrect: 3, Status: StatusLearning,
				EaseFactor: 1.9, IntervalDays: 6, Repetitions: 2,
			},
			isCorrect: true,
			want: Record{
				TimesSeen: 8, TimesCorrect: 5, TimesIncorrect: 3,
				Status: StatusLearned, MasteryLevel: 62,
				EaseFactor: 1.9, IntervalDays: 11, Repetitions: 3,
				NextReviewAt: testNow.AddDate(0, 0, 11),
			},
		},
		{
			name: "learned word is not demoted by a miss",
			record: Record{
				TimesSeen: 5, TimesCorrect: 5, Status: StatusLearned, MasteryLevel: 100,
				EaseFactor: 2.5, IntervalDays: 94, Repetitions: 5,
			},
			isCorrect: false,
			want: Record{
				TimesSeen: 6, TimesCorrect: 5, TimesIncorrect: 1,
				Status: StatusLearned, MasteryLevel: 83,
				EaseFactor: 2.3, IntervalDays: 1, Repetitions: 0,
				NextReviewAt: testNow.AddDate(0, 0, 1),
			},
		},
		{
			name: "zero ease from legacy data falls back to the default",
			record: Record{
				TimesSeen: 2, TimesCorrect: 2, Status: StatusLearning,
				IntervalDays: 6, Repetitions: 2,
			},
			isCorrect: true,
			want: Record{
				TimesSeen: 3, TimesCorrect: 3,
				Status: StatusLearning, MasteryLevel: 100,
				EaseFactor: 2.5, IntervalDays: 15, Repetitions: 3,
				NextReviewAt: testNow.AddDate(0, 0, 15),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Update(tt.record, tt.isCorrect, testNow)

			require.NotNil(t, got.LastReviewedAt)
			assert.Equal(t, testNow, *got.LastReviewedAt)
			got.LastReviewedAt = nil

			got.UserID, got.WordID = 0, 0
			assert.InDelta(t, tt.want.EaseFactor, got.EaseFactor, 1e-9)
			got.EaseFactor = tt.want.EaseFactor
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpdate_DoesNotModifyInput(t *testing.T) {
	original := NewRecord(1, 1, testNow)
	original.Version = 7

	got := Update(original, true, testNow)

	assert.Equal(t, 0, original.TimesSeen)
	assert.Nil(t, original.LastReviewedAt)
	assert.Equal(t, int64(7), got.Version)
}

func TestUpdate_ConsecutiveCorrectIntervals(t *testing.T) {
	r := NewRecord(1, 1, testNow)
	var intervals []int
	for i := 0; i < 3; i++ {
		r = Update(r, true, testNow)
		intervals = append(intervals, r.IntervalDays)
		assert.Equal(t, i+1, r.Repetitions)
		assert.Equal(t, DefaultEaseFactor, r.EaseFactor)
	}

	assert.Equal(t, []int{1, 6, 15}, intervals)
	for i := 1; i < len(intervals); i++ {
		assert.GreaterOrEqual(t, intervals[i], intervals[i-1])
	}
}

func TestUpdate_ResetAfterStreak(t *testing.T) {
	r := applyOutcomes(NewRecord(1, 1, testNow), true, true, true)
	before := r.EaseFactor

	r = Update(r, false, testNow)

	assert.Equal(t, 0, r.Repetitions)
	assert.Equal(t, 1, r.IntervalDays)
	assert.InDelta(t, before-0.2, r.EaseFactor, 1e-9)
}

func TestUpdate_LearnedExactlyAtFifthCorrect(t *testing.T) {
	r := NewRecord(1, 1, testNow)
	outcomes := []bool{false, true, false, true, true, false, true, false, true}

	correct := 0
	for _, o := range outcomes {
		r = Update(r, o, testNow)
		if o {
			correct++
		}
		if correct >= LearnedThreshold {
			assert.Equal(t, StatusLearned, r.Status)
		} else {
			assert.Equal(t, StatusLearning, r.Status)
		}
	}
	assert.Equal(t, 5, r.TimesCorrect)
}

func TestUpdate_KeepsBounds(t *testing.T) {
	sequences := [][]bool{
		{true},
		{false},
		{false, false, false, false, false, false, false, false},
		{true, true, true, true, true, true, true},
		{true, false, true, false, true, true, false, true, true, true},
	}

	for _, seq := range sequences {
		r := NewRecord(1, 1, testNow)
		for _, o := range seq {
			r = Update(r, o, testNow)

			assert.Equal(t, r.TimesSeen, r.TimesCorrect+r.TimesIncorrect)
			assert.GreaterOrEqual(t, r.MasteryLevel, 0)
			assert.LessOrEqual(t, r.MasteryLevel, 100)
			assert.GreaterOrEqual(t, r.EaseFactor, MinEaseFactor)
			assert.GreaterOrEqual(t, r.IntervalDays, 1)
			assert.GreaterOrEqual(t, r.Repetitions, 0)
			assert.Equal(t, testNow.AddDate(0, 0, r.IntervalDays), r.NextReviewAt)
		}
	}
}

func TestCalculateNextInterval(t *testing.T) {
	tests := []struct {
		name         string
		lastInterval int
		ease         float64
		repetitions  int
		want         int
	}{
		{name: "first", lastInterval: 1, ease: 2.5, repetitions: 1, want: 1},
		{name: "second", lastInterval: 1, ease: 2.5, repetitions: 2, want: 6},
		{name: "third", lastInterval: 6, ease: 2.5, repetitions: 3, want: 15},
		{name: "rounds half up", lastInterval: 5, ease: 1.3, repetitions: 3, want: 7},
		{name: "rounds to nearest", lastInterval: 6, ease: 1.3, repetitions: 4, want: 8},
		{name: "never below one day", lastInterval: 0, ease: 2.5, repetitions: 3, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateNextInterval(tt.lastInterval, tt.ease, tt.repetitions))
		})
	}
}

func TestReset(t *testing.T) {
	r := applyOutcomes(NewRecord(3, 4, testNow), true, true, true, true, true)
	r.Version = 9
	require.Equal(t, StatusLearned, r.Status)

	later := testNow.Add(48 * time.Hour)
	got := Reset(r, later)

	assert.Equal(t, NewRecord(3, 4, later).Status, got.Status)
	assert.Equal(t, 0, got.TimesSeen)
	assert.Equal(t, later, got.NextReviewAt)
	assert.Equal(t, int64(9), got.Version)
}
