package pronunciation

import "math"

const (
	exactWeight    = 0.3
	phoneticWeight = 0.7
)

// Grade is the discrete band a pronunciation score falls into.
type Grade string

const (
	GradeExcellent Grade = "excellent"
	GradeGood      Grade = "good"
	GradeFair      Grade = "fair"
	GradeNeedsWork Grade = "needs-work"
	GradeTryAgain  Grade = "try-again"
)

type gradeBand struct {
	minScore int
	grade    Grade
	feedback string
	emoji    string
}

// gradeBands is evaluated top-down; the first band whose minScore is reached wins.
var gradeBands = []gradeBand{
	{95, GradeExcellent, "Excellent pronunciation!", "star"},
	{85, GradeGood, "Good job, that was close.", "thumbs_up"},
	{70, GradeFair, "Not bad. Listen once more and repeat.", "ok_hand"},
	{50, GradeNeedsWork, "Needs some work. Try to say it more slowly.", "muscle"},
	{0, GradeTryAgain, "Let's try that again.", "repeat"},
}

// GradeFor maps a 0-100 score to its grade band.
func GradeFor(score int) Grade {
	return bandFor(score).grade
}

func bandFor(score int) gradeBand {
	for _, b := range gradeBands {
		if score >= b.minScore {
			return b
		}
	}
	return gradeBands[len(gradeBands)-1]
}

// Result is the outcome of evaluating one spoken attempt.
type Result struct {
	Score              int    `json:"score"`
	Grade              Grade  `json:"grade"`
	Feedback           string `json:"feedback"`
	Emoji              string `json:"emoji"`
	Spoken             string `json:"spoken"`
	Target             string `json:"target"`
	ExactSimilarity    int    `json:"exact_similarity"`
	PhoneticSimilarity int    `json:"phonetic_similarity"`
	SoundsAlike        bool   `json:"sounds_alike"`
}

// Passed reports whether the attempt reached passScore.
func (r Result) Passed(passScore int) bool {
	return r.Score >= passScore
}

// Evaluate blends the exact and phonetic similarity of spoken against target,
// weighting the phonetic score at 70%. Blank input yields a zero score.
func Evaluate(spoken, target string) Result {
	exact := Similarity(spoken, target)
	phonetic := PhoneticSimilarity(spoken, target)
	score := int(math.Round(exactWeight*float64(exact) + phoneticWeight*float64(phonetic)))

	band := bandFor(score)
	return Result{
		Score:              score,
		Grade:              band.grade,
		Feedback:           band.feedback,
		Emoji:              band.emoji,
		Spoken:             spoken,
		Target:             target,
		ExactSimilarity:    exact,
		PhoneticSimilarity: phonetic,
		SoundsAlike:        soundsAlike(spoken, target),
	}
}
