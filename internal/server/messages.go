package server

import (
	"github.com/at-ishikawa/wordcoach/internal/pronunciation"
	"github.com/at-ishikawa/wordcoach/internal/srs"
)

type EvaluatePronunciationRequest struct {
	Spoken string `json:"spoken"`
	Target string `json:"target"`
}

type EvaluatePronunciationResponse struct {
	Result pronunciation.Result `json:"result"`
}

type ApplyPracticeOutcomeRequest struct {
	UserID    int64 `json:"user_id" validate:"gt=0"`
	WordID    int64 `json:"word_id" validate:"gt=0"`
	IsCorrect bool  `json:"is_correct"`
}

type ApplyPracticeOutcomeResponse struct {
	Progress srs.Record `json:"progress"`
}

type SubmitSpokenAttemptRequest struct {
	UserID int64  `json:"user_id" validate:"gt=0"`
	WordID int64  `json:"word_id" validate:"gt=0"`
	Spoken string `json:"spoken"`
	Target string `json:"target"`
}

type SubmitSpokenAttemptResponse struct {
	Result   pronunciation.Result `json:"result"`
	Passed   bool                 `json:"passed"`
	Progress srs.Record           `json:"progress"`
}

type EnrollWordRequest struct {
	UserID int64 `json:"user_id" validate:"gt=0"`
	WordID int64 `json:"word_id" validate:"gt=0"`
}

type EnrollWordResponse struct {
	Progress srs.Record `json:"progress"`
}

type ResetWordRequest struct {
	UserID int64 `json:"user_id" validate:"gt=0"`
	WordID int64 `json:"word_id" validate:"gt=0"`
}

type ResetWordResponse struct {
	Progress srs.Record `json:"progress"`
}

type ListDueWordsRequest struct {
	UserID int64 `json:"user_id" validate:"gt=0"`
	// Limit of 0 returns every due word.
	Limit int `json:"limit" validate:"min=0,max=500"`
}

type ListDueWordsResponse struct {
	Words []srs.Record `json:"words"`
}
