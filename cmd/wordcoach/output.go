package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/at-ishikawa/wordcoach/internal/pronunciation"
	"github.com/at-ishikawa/wordcoach/internal/srs"
)

type printer struct {
	out    io.Writer
	good   *color.Color
	fair   *color.Color
	bad    *color.Color
	bold   *color.Color
	italic *color.Color
}

func newPrinter(out io.Writer) *printer {
	return &printer{
		out:    out,
		good:   color.New(color.FgGreen),
		fair:   color.New(color.FgYellow),
		bad:    color.New(color.FgRed),
		bold:   color.New(color.Bold),
		italic: color.New(color.Italic),
	}
}

func (p *printer) gradeColor(grade pronunciation.Grade) *color.Color {
	switch grade {
	case pronunciation.GradeExcellent, pronunciation.GradeGood:
		return p.good
	case pronunciation.GradeFair:
		return p.fair
	default:
		return p.bad
	}
}

func (p *printer) printResult(result pronunciation.Result) {
	_, _ = p.gradeColor(result.Grade).Fprintf(p.out, "%d/100 %s", result.Score, result.Grade)
	_, _ = fmt.Fprintf(p.out, "  %s\n", result.Feedback)
	soundsAlike := "no"
	if result.SoundsAlike {
		soundsAlike = "yes"
	}
	_, _ = p.italic.Fprintf(p.out, "  spoken %q, target %q: exact %d, phonetic %d, sounds alike: %s\n",
		result.Spoken, result.Target, result.ExactSimilarity, result.PhoneticSimilarity, soundsAlike)
}

func (p *printer) printOutcome(isCorrect bool) {
	if isCorrect {
		_, _ = p.good.Fprintln(p.out, "Correct!")
		return
	}
	_, _ = p.bad.Fprintln(p.out, "Incorrect.")
}

func (p *printer) printRecord(record srs.Record) {
	_, _ = p.bold.Fprintf(p.out, "word %d", record.WordID)
	_, _ = fmt.Fprintf(p.out, " (user %d): %s, mastery %d%%, seen %d (%d correct, %d incorrect)\n",
		record.UserID, record.Status, record.MasteryLevel,
		record.TimesSeen, record.TimesCorrect, record.TimesIncorrect)
	_, _ = fmt.Fprintf(p.out, "  next review %s (interval %dd, ease %.2f)\n",
		record.NextReviewAt.Format(time.DateTime), record.IntervalDays, record.EaseFactor)
}
