package server

import (
	"net/http"

	"connectrpc.com/connect"
)

const PracticeServiceName = "wordcoach.v1.PracticeService"

const (
	EvaluatePronunciationProcedure = "/" + PracticeServiceName + "/EvaluatePronunciation"
	ApplyPracticeOutcomeProcedure  = "/" + PracticeServiceName + "/ApplyPracticeOutcome"
	SubmitSpokenAttemptProcedure   = "/" + PracticeServiceName + "/SubmitSpokenAttempt"
	EnrollWordProcedure            = "/" + PracticeServiceName + "/EnrollWord"
	ResetWordProcedure             = "/" + PracticeServiceName + "/ResetWord"
	ListDueWordsProcedure          = "/" + PracticeServiceName + "/ListDueWords"
)

// NewPracticeServiceHandler returns the path prefix and handler serving every
// practice procedure with the JSON codec.
func NewPracticeServiceHandler(h *PracticeHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(EvaluatePronunciationProcedure, connect.NewUnaryHandler(EvaluatePronunciationProcedure, h.EvaluatePronunciation, opts...))
	mux.Handle(ApplyPracticeOutcomeProcedure, connect.NewUnaryHandler(ApplyPracticeOutcomeProcedure, h.ApplyPracticeOutcome, opts...))
	mux.Handle(SubmitSpokenAttemptProcedure, connect.NewUnaryHandler(SubmitSpokenAttemptProcedure, h.SubmitSpokenAttempt, opts...))
	mux.Handle(EnrollWordProcedure, connect.NewUnaryHandler(EnrollWordProcedure, h.EnrollWord, opts...))
	mux.Handle(ResetWordProcedure, connect.NewUnaryHandler(ResetWordProcedure, h.ResetWord, opts...))
	mux.Handle(ListDueWordsProcedure, connect.NewUnaryHandler(ListDueWordsProcedure, h.ListDueWords, opts...))
	return "/" + PracticeServiceName + "/", mux
}

// PracticeServiceClient calls the practice procedures over Connect.
type PracticeServiceClient struct {
	evaluatePronunciation *connect.Client[EvaluatePronunciationRequest, EvaluatePronunciationResponse]
	applyPracticeOutcome  *connect.Client[ApplyPracticeOutcomeRequest, ApplyPracticeOutcomeResponse]
	submitSpokenAttempt   *connect.Client[SubmitSpokenAttemptRequest, SubmitSpokenAttemptResponse]
	enrollWord            *connect.Client[EnrollWordRequest, EnrollWordResponse]
	resetWord             *connect.Client[ResetWordRequest, ResetWordResponse]
	listDueWords          *connect.Client[ListDueWordsRequest, ListDueWordsResponse]
}

func NewPracticeServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *PracticeServiceClient {
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &PracticeServiceClient{
		evaluatePronunciation: connect.NewClient[EvaluatePronunciationRequest, EvaluatePronunciationResponse](httpClient, baseURL+EvaluatePronunciationProcedure, opts...),
		applyPracticeOutcome:  connect.NewClient[ApplyPracticeOutcomeRequest, ApplyPracticeOutcomeResponse](httpClient, baseURL+ApplyPracticeOutcomeProcedure, opts...),
		submitSpokenAttempt:   connect.NewClient[SubmitSpokenAttemptRequest, SubmitSpokenAttemptResponse](httpClient, baseURL+SubmitSpokenAttemptProcedure, opts...),
		enrollWord:            connect.NewClient[EnrollWordRequest, EnrollWordResponse](httpClient, baseURL+EnrollWordProcedure, opts...),
		resetWord:             connect.NewClient[ResetWordRequest, ResetWordResponse](httpClient, baseURL+ResetWordProcedure, opts...),
		listDueWords:          connect.NewClient[ListDueWordsRequest, ListDueWordsResponse](httpClient, baseURL+ListDueWordsProcedure, opts...),
	}
}
