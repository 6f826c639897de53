package pronunciation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name         string
		spoken       string
		target       string
		wantScore    int
		wantGrade    Grade
		wantExact    int
		wantPhonetic int
	}{
		{
			name:         "perfect attempt",
			spoken:       "cat",
			target:       "cat",
			wantScore:    100,
			wantGrade:    GradeExcellent,
			wantExact:    100,
			wantPhonetic: 100,
		},
		{
			name:         "phonetic confusion is mostly forgiven",
			spoken:       "fing",
			target:       "thing",
			wantScore:    88,
			wantGrade:    GradeGood,
			wantExact:    60,
			wantPhonetic: 100,
		},
		{
			name:         "one wrong letter",
			spoken:       "kat",
			target:       "cat",
			wantScore:    67,
			wantGrade:    GradeNeedsWork,
			wantExact:    67,
			wantPhonetic: 67,
		},
		{
			name:         "empty spoken",
			spoken:       "",
			target:       "cat",
			wantScore:    0,
			wantGrade:    GradeTryAgain,
			wantExact:    0,
			wantPhonetic: 0,
		},
		{
			name:         "whitespace target",
			spoken:       "cat",
			target:       "  ",
			wantScore:    0,
			wantGrade:    GradeTryAgain,
			wantExact:    0,
			wantPhonetic: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.spoken, tt.target)

			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantGrade, got.Grade)
			assert.Equal(t, tt.wantExact, got.ExactSimilarity)
			assert.Equal(t, tt.wantPhonetic, got.PhoneticSimilarity)
			assert.Equal(t, tt.spoken, got.Spoken)
			assert.Equal(t, tt.target, got.Target)
			assert.NotEmpty(t, got.Feedback)
			assert.NotEmpty(t, got.Emoji)
		})
	}
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		score int
		want  Grade
	}{
		{100, GradeExcellent},
		{95, GradeExcellent},
		{94, GradeGood},
		{85, GradeGood},
		{84, GradeFair},
		{70, GradeFair},
		{69, GradeNeedsWork},
		{50, GradeNeedsWork},
		{49, GradeTryAgain},
		{0, GradeTryAgain},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeFor(tt.score), "score %d", tt.score)
	}
}

func TestResult_Passed(t *testing.T) {
	r := Result{Score: 70}
	assert.True(t, r.Passed(70))
	assert.False(t, r.Passed(71))
}

func TestEvaluate_SoundsAlike(t *testing.T) {
	assert.True(t, Evaluate("smyth", "smith").SoundsAlike)
	assert.False(t, Evaluate("", "smith").SoundsAlike)
}
