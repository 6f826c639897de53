package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"
	"github.com/google/uuid"

	"github.com/at-ishikawa/wordcoach/internal/observe"
	"github.com/at-ishikawa/wordcoach/internal/pronunciation"
	"github.com/at-ishikawa/wordcoach/internal/srs"
)

const (
	DefaultPassScore         = 70
	DefaultMaxUpdateAttempts = 3
	defaultRetryDelay        = 20 * time.Millisecond
	maxRetryDelay            = 500 * time.Millisecond
)

// ErrDueListingUnsupported is returned by DueWords when no DueLister is configured.
var ErrDueListingUnsupported = errors.New("progress store cannot list due words")

// Service applies practice outcomes to stored progress.
type Service struct {
	store       Store
	dueLister   DueLister
	attempts    AttemptRecorder
	clock       Clock
	metrics     *observe.Metrics
	passScore   int
	maxAttempts uint
	retryDelay  time.Duration
}

type Option func(*Service)

// WithAttemptRecorder records every applied outcome to r.
func WithAttemptRecorder(r AttemptRecorder) Option {
	return func(s *Service) { s.attempts = r }
}

func WithDueLister(l DueLister) Option {
	return func(s *Service) { s.dueLister = l }
}

func WithMetrics(m *observe.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithPassScore sets the lowest pronunciation score counted as a correct answer.
func WithPassScore(score int) Option {
	return func(s *Service) { s.passScore = score }
}

// WithMaxUpdateAttempts bounds how many times a conflicting save is retried.
func WithMaxUpdateAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = uint(n)
		}
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(s *Service) { s.retryDelay = d }
}

// NewService creates a Service. When store also implements DueLister or
// AttemptRecorder, it is used for those too unless an option overrides it.
func NewService(store Store, clock Clock, opts ...Option) *Service {
	s := &Service{
		store:       store,
		clock:       clock,
		passScore:   DefaultPassScore,
		maxAttempts: DefaultMaxUpdateAttempts,
		retryDelay:  defaultRetryDelay,
	}
	if l, ok := store.(DueLister); ok {
		s.dueLister = l
	}
	if r, ok := store.(AttemptRecorder); ok {
		s.attempts = r
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// PassScore returns the lowest score that counts as a correct spoken answer.
func (s *Service) PassScore() int {
	return s.passScore
}

// EvaluatePronunciation scores a spoken transcript against the target word.
func (s *Service) EvaluatePronunciation(ctx context.Context, spoken, target string) pronunciation.Result {
	result := pronunciation.Evaluate(spoken, target)
	s.metrics.RecordEvaluation(ctx, string(result.Grade), result.Score)
	return result
}

// ApplyPracticeOutcome loads the user's progress on the word, creating it when
// missing, applies one outcome and saves it.
func (s *Service) ApplyPracticeOutcome(ctx context.Context, userID, wordID int64, isCorrect bool) (srs.Record, error) {
	if err := validateIDs(userID, wordID); err != nil {
		return srs.Record{}, err
	}

	record, err := s.update(ctx, userID, wordID, func(r srs.Record, now time.Time) srs.Record {
		return srs.Update(r, isCorrect, now)
	})
	if err != nil {
		return srs.Record{}, err
	}
	s.metrics.RecordOutcome(ctx, isCorrect, string(record.Status))
	s.recordAttempt(ctx, Attempt{
		UserID:      userID,
		WordID:      wordID,
		IsCorrect:   isCorrect,
		AttemptedAt: s.reviewedAt(record),
	})
	return record, nil
}

// SubmitSpokenAttempt evaluates the transcript and applies it as a correct
// answer when the score reaches the pass score.
func (s *Service) SubmitSpokenAttempt(ctx context.Context, userID, wordID int64, spoken, target string) (pronunciation.Result, srs.Record, error) {
	if err := validateIDs(userID, wordID); err != nil {
		return pronunciation.Result{}, srs.Record{}, err
	}

	result := s.EvaluatePronunciation(ctx, spoken, target)
	isCorrect := result.Passed(s.passScore)

	record, err := s.update(ctx, userID, wordID, func(r srs.Record, now time.Time) srs.Record {
		return srs.Update(r, isCorrect, now)
	})
	if err != nil {
		return result, srs.Record{}, err
	}
	s.metrics.RecordOutcome(ctx, isCorrect, string(record.Status))

	score := result.Score
	s.recordAttempt(ctx, Attempt{
		UserID:      userID,
		WordID:      wordID,
		IsCorrect:   isCorrect,
		Score:       &score,
		Spoken:      spoken,
		AttemptedAt: s.reviewedAt(record),
	})
	return result, record, nil
}

// EnrollWord adds the word to the user's list. An existing record is returned unchanged.
func (s *Service) EnrollWord(ctx context.Context, userID, wordID int64) (srs.Record, error) {
	if err := validateIDs(userID, wordID); err != nil {
		return srs.Record{}, err
	}

	existing, err := s.store.Get(ctx, userID, wordID)
	if err != nil {
		return srs.Record{}, fmt.Errorf("store.Get() > %w", err)
	}
	if existing != nil {
		return *existing, nil
	}

	record, err := s.store.Put(ctx, srs.NewRecord(userID, wordID, s.clock.Now()))
	if errors.Is(err, ErrConflict) {
		// Enrolled by a concurrent request.
		existing, err = s.store.Get(ctx, userID, wordID)
		if err != nil {
			return srs.Record{}, fmt.Errorf("store.Get() > %w", err)
		}
		if existing == nil {
			return srs.Record{}, ErrConflict
		}
		return *existing, nil
	}
	if err != nil {
		return srs.Record{}, fmt.Errorf("store.Put() > %w", err)
	}
	return record, nil
}

// ResetWord discards the user's progress on the word.
func (s *Service) ResetWord(ctx context.Context, userID, wordID int64) (srs.Record, error) {
	if err := validateIDs(userID, wordID); err != nil {
		return srs.Record{}, err
	}
	return s.update(ctx, userID, wordID, srs.Reset)
}

// DueWords returns up to limit records of the user due now, in review order.
// A non-positive limit returns every due record.
func (s *Service) DueWords(ctx context.Context, userID int64, limit int) ([]srs.Record, error) {
	if userID <= 0 {
		return nil, ErrInvalidID
	}
	if s.dueLister == nil {
		return nil, ErrDueListingUnsupported
	}

	records, err := s.dueLister.ListDue(ctx, userID, s.clock.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("dueLister.ListDue() > %w", err)
	}
	return records, nil
}

// update reads the current record, applies mutate and saves it, retrying the
// whole cycle when another writer saved the record first.
func (s *Service) update(ctx context.Context, userID, wordID int64, mutate func(srs.Record, time.Time) srs.Record) (srs.Record, error) {
	var saved srs.Record
	err := retry.Do(
		func() error {
			now := s.clock.Now()
			current, err := s.store.Get(ctx, userID, wordID)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("store.Get() > %w", err))
			}

			record := srs.NewRecord(userID, wordID, now)
			if current != nil {
				record = *current
			}

			saved, err = s.store.Put(ctx, mutate(record, now))
			if errors.Is(err, ErrConflict) {
				s.metrics.RecordConflict(ctx)
				slog.Warn("progress update conflicted", "user_id", userID, "word_id", wordID, "version", record.Version)
				return err
			}
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("store.Put() > %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(s.maxAttempts),
		retry.Delay(s.retryDelay),
		retry.MaxDelay(maxRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return srs.Record{}, fmt.Errorf("save progress after %d attempts: %w", s.maxAttempts, err)
		}
		return srs.Record{}, err
	}
	return saved, nil
}

func (s *Service) reviewedAt(record srs.Record) time.Time {
	if record.LastReviewedAt != nil {
		return *record.LastReviewedAt
	}
	return s.clock.Now()
}

func (s *Service) recordAttempt(ctx context.Context, attempt Attempt) {
	if s.attempts == nil {
		return
	}
	attempt.ID = uuid.New()
	if err := s.attempts.RecordAttempt(ctx, attempt); err != nil {
		slog.Warn("failed to record practice attempt",
			"user_id", attempt.UserID,
			"word_id", attempt.WordID,
			"error", err,
		)
	}
}
