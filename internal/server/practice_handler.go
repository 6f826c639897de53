// Package server provides Connect RPC handlers for the practice service.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/at-ishikawa/wordcoach/internal/progress"
	"github.com/at-ishikawa/wordcoach/internal/pronunciation"
	"github.com/at-ishikawa/wordcoach/internal/srs"
)

// PracticeService is the progress logic the handler exposes.
type PracticeService interface {
	EvaluatePronunciation(ctx context.Context, spoken, target string) pronunciation.Result
	ApplyPracticeOutcome(ctx context.Context, userID, wordID int64, isCorrect bool) (srs.Record, error)
	SubmitSpokenAttempt(ctx context.Context, userID, wordID int64, spoken, target string) (pronunciation.Result, srs.Record, error)
	EnrollWord(ctx context.Context, userID, wordID int64) (srs.Record, error)
	ResetWord(ctx context.Context, userID, wordID int64) (srs.Record, error)
	DueWords(ctx context.Context, userID int64, limit int) ([]srs.Record, error)
	PassScore() int
}

// PracticeHandler serves the wordcoach.v1.PracticeService procedures.
type PracticeHandler struct {
	service   PracticeService
	validator *requestValidator
}

func NewPracticeHandler(service PracticeService) (*PracticeHandler, error) {
	v, err := newRequestValidator()
	if err != nil {
		return nil, fmt.Errorf("newRequestValidator() > %w", err)
	}
	return &PracticeHandler{service: service, validator: v}, nil
}

func (h *PracticeHandler) EvaluatePronunciation(
	ctx context.Context,
	req *connect.Request[EvaluatePronunciationRequest],
) (*connect.Response[EvaluatePronunciationResponse], error) {
	if err := h.validator.validate(req.Msg); err != nil {
		return nil, err
	}

	result := h.service.EvaluatePronunciation(ctx, req.Msg.Spoken, req.Msg.Target)
	return connect.NewResponse(&EvaluatePronunciationResponse{Result: result}), nil
}

func (h *PracticeHandler) ApplyPracticeOutcome(
	ctx context.Context,
	req *connect.Request[ApplyPracticeOutcomeRequest],
) (*connect.Response[ApplyPracticeOutcomeResponse], error) {
	if err := h.validator.validate(req.Msg); err != nil {
		return nil, err
	}

	record, err := h.service.ApplyPracticeOutcome(ctx, req.Msg.UserID, req.Msg.WordID, req.Msg.IsCorrect)
	if err != nil {
		return nil, toConnectError("apply practice outcome", err)
	}
	return connect.NewResponse(&ApplyPracticeOutcomeResponse{Progress: record}), nil
}

func (h *PracticeHandler) SubmitSpokenAttempt(
	ctx context.Context,
	req *connect.Request[SubmitSpokenAttemptRequest],
) (*connect.Response[SubmitSpokenAttemptResponse], error) {
	if err := h.validator.validate(req.Msg); err != nil {
		return nil, err
	}

	result, record, err := h.service.SubmitSpokenAttempt(ctx, req.Msg.UserID, req.Msg.WordID, req.Msg.Spoken, req.Msg.Target)
	if err != nil {
		return nil, toConnectError("submit spoken attempt", err)
	}
	return connect.NewResponse(&SubmitSpokenAttemptResponse{
		Result:   result,
		Passed:   result.Passed(h.service.PassScore()),
		Progress: record,
	}), nil
}

func (h *PracticeHandler) EnrollWord(
	ctx context.Context,
	req *connect.Request[EnrollWordRequest],
) (*connect.Response[EnrollWordResponse], error) {
	if err := h.validator.validate(req.Msg); err != nil {
		return nil, err
	}

	record, err := h.service.EnrollWord(ctx, req.Msg.UserID, req.Msg.WordID)
	if err != nil {
		return nil, toConnectError("enroll word", err)
	}
	return connect.NewResponse(&EnrollWordResponse{Progress: record}), nil
}

func (h *PracticeHandler) ResetWord(
	ctx context.Context,
	req *connect.Request[ResetWordRequest],
) (*connect.Response[ResetWordResponse], error) {
	if err := h.validator.validate(req.Msg); err != nil {
		return nil, err
	}

	record, err := h.service.ResetWord(ctx, req.Msg.UserID, req.Msg.WordID)
	if err != nil {
		return nil, toConnectError("reset word", err)
	}
	return connect.NewResponse(&ResetWordResponse{Progress: record}), nil
}

func (h *PracticeHandler) ListDueWords(
	ctx context.Context,
	req *connect.Request[ListDueWordsRequest],
) (*connect.Response[ListDueWordsResponse], error) {
	if err := h.validator.validate(req.Msg); err != nil {
		return nil, err
	}

	records, err := h.service.DueWords(ctx, req.Msg.UserID, req.Msg.Limit)
	if err != nil {
		return nil, toConnectError("list due words", err)
	}
	if records == nil {
		records = []srs.Record{}
	}
	return connect.NewResponse(&ListDueWordsResponse{Words: records}), nil
}

func toConnectError(operation string, err error) *connect.Error {
	wrapped := fmt.Errorf("%s: %w", operation, err)
	switch {
	case errors.Is(err, progress.ErrInvalidID):
		return connect.NewError(connect.CodeInvalidArgument, wrapped)
	case errors.Is(err, progress.ErrConflict):
		return connect.NewError(connect.CodeAborted, wrapped)
	case errors.Is(err, progress.ErrDueListingUnsupported):
		return connect.NewError(connect.CodeUnimplemented, wrapped)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, wrapped)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, wrapped)
	default:
		slog.Error("practice request failed", "operation", operation, "error", err)
		return connect.NewError(connect.CodeInternal, wrapped)
	}
}
