package server

import (
	"context"

	"connectrpc.com/connect"
)

func (c *PracticeServiceClient) EvaluatePronunciation(ctx context.Context, req *connect.Request[EvaluatePronunciationRequest]) (*connect.Response[EvaluatePronunciationResponse], error) {
	return c.evaluatePronunciation.CallUnary(ctx, req)
}

func (c *PracticeServiceClient) ApplyPracticeOutcome(ctx context.Context, req *connect.Request[ApplyPracticeOutcomeRequest]) (*connect.Response[ApplyPracticeOutcomeResponse], error) {
	return c.applyPracticeOutcome.CallUnary(ctx, req)
}

func (c *PracticeServiceClient) SubmitSpokenAttempt(ctx context.Context, req *connect.Request[SubmitSpokenAttemptRequest]) (*connect.Response[SubmitSpokenAttemptResponse], error) {
	return c.submitSpokenAttempt.CallUnary(ctx, req)
}

func (c *PracticeServiceClient) EnrollWord(ctx context.Context, req *connect.Request[EnrollWordRequest]) (*connect.Response[EnrollWordResponse], error) {
	return c.enrollWord.CallUnary(ctx, req)
}

func (c *PracticeServiceClient) ResetWord(ctx context.Context, req *connect.Request[ResetWordRequest]) (*connect.Response[ResetWordResponse], error) {
	return c.resetWord.CallUnary(ctx, req)
}

func (c *PracticeServiceClient) ListDueWords(ctx context.Context, req *connect.Request[ListDueWordsRequest]) (*connect.Response[ListDueWordsResponse], error) {
	return c.listDueWords.CallUnary(ctx, req)
}
