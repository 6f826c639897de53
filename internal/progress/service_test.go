package progress_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/mock/gomock"

	mock_progress "github.com/at-ishikawa/wordcoach/internal/mocks/progress"
	"github.com/at-ishikawa/wordcoach/internal/observe"
	"github.com/at-ishikawa/wordcoach/internal/progress"
	"github.com/at-ishikawa/wordcoach/internal/pronunciation"
	"github.com/at-ishikawa/wordcoach/internal/srs"
)

var now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestMetrics(t *testing.T) *observe.Metrics {
	t.Helper()
	m, err := observe.NewMetrics(noop.NewMeterProvider())
	require.NoError(t, err)
	return m
}

func newService(t *testing.T, store progress.Store, opts ...progress.Option) *progress.Service {
	t.Helper()
	opts = append([]progress.Option{
		progress.WithMetrics(newTestMetrics(t)),
		progress.WithRetryDelay(time.Millisecond),
	}, opts...)
	return progress.NewService(store, fixedClock{now}, opts...)
}

func withVersion(r srs.Record, v int64) srs.Record {
	r.Version = v
	return r
}

func TestService_ApplyPracticeOutcome(t *testing.T) {
	existing := withVersion(srs.Update(srs.NewRecord(1, 10, now), true, now.AddDate(0, 0, -1)), 3)

	tests := []struct {
		name        string
		userID      int64
		wordID      int64
		isCorrect   bool
		setupMock   func(store *mock_progress.MockStore)
		want        srs.Record
		wantErr     error
		wantErrText string
	}{
		{
			name:      "missing record is created from scratch",
			userID:    1,
			wordID:    10,
			isCorrect: true,
			setupMock: func(store *mock_progress.MockStore) {
				store.EXPECT().Get(gomock.Any(), int64(1), int64(10)).Return(nil, nil)
				store.EXPECT().Put(gomock.Any(), srs.Update(srs.NewRecord(1, 10, now), true, now)).
					Return(withVersion(srs.Update(srs.NewRecord(1, 10, now), true, now), 1), nil)
			},
			want: withVersion(srs.Update(srs.NewRecord(1, 10, now), true, now), 1),
		},
		{
			name:      "existing record is updated with its version",
			userID:    1,
			wordID:    10,
			isCorrect: false,
			setupMock: func(store *mock_progress.MockStore) {
				store.EXPECT().Get(gomock.Any(), int64(1), int64(10)).Return(&existing, nil)
				store.EXPECT().Put(gomock.Any(), srs.Update(existing, false, now)).
					Return(withVersion(srs.Update(existing, false, now), 4), nil)
			},
			want: withVersion(srs.Update(existing, false, now), 4),
		},
		{
			name:      "conflict is retried with a fresh read",
			userID:    1,
			wordID:    10,
			isCorrect: true,
			setupMock: func(store *mock_progress.MockStore) {
				newer := withVersion(existing, 4)
				gomock.InOrder(
					store.EXPECT().Get(gomock.Any(), int64(1), int64(10)).Return(&existing, nil),
					store.EXPECT().Put(gomock.Any(), srs.Update(existing, true, now)).Return(srs.Record{}, progress.ErrConflict),
					store.EXPECT().Get(gomock.Any(), int64(1), int64(10)).Return(&newer, nil),
					store.EXPECT().Put(gomock.Any(), srs.Update(newer, true, now)).Return(withVersion(srs.Update(newer, true, now), 5), nil),
				)
			},
			want: withVersion(srs.Update(withVersion(existing, 4), true, now), 5),
		},
		{
			name:      "conflicts exhaust the attempts",
			userID:    1,
			wordID:    10,
			isCorrect: true,
			setupMock: func(store *mock_progress.MockStore) {
				store.EXPECT().Get(gomock.Any(), int64(1), int64(10)).Return(&existing, nil).Times(3)
				store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(srs.Record{}, progress.ErrConflict).Times(3)
			},
			wantErr: progress.ErrConflict,
		},
		{
			name:      "store read error is not retried",
			userID:    1,
			wordID:    10,
			isCorrect: true,
			setupMock: func(store *mock_progress.MockStore) {
				store.EXPECT().Get(gomock.Any(), int64(1), int64(10)).Return(nil, fmt.Errorf("connection refused"))
			},
			wantErrText: "store.Get() > connection refused",
		},
		{
			name:      "store write error is not retried",
			userID:    1,
			wordID:    10,
			isCorrect: true,
			setupMock: func(store *mock_progress.MockStore) {
				store.EXPECT().Get(gomock.Any(), int64(1), int64(10)).Return(nil, nil)
				store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(srs.Record{}, fmt.Errorf("disk full"))
			},
			wantErrText: "store.Put() > disk full",
		},
		{
			name:      "non-positive user ID",
			userID:    0,
			wordID:    10,
			setupMock: func(store *mock_progress.MockStore) {},
			wantErr:   progress.ErrInvalidID,
		},
		{
			name:      "negative word ID",
			userID:    1,
			wordID:    -2,
			setupMock: func(store *mock_progress.MockStore) {},
			wantErr:   progress.ErrInvalidID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := mock_progress.NewMockStore(ctrl)
			tt.setupMock(store)

			service := newService(t, store)
			got, err := service.ApplyPracticeOutcome(context.Background(), tt.userID, tt.wordID, tt.isCorrect)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			if tt.wantErrText != "" {
				assert.EqualError(t, err, tt.wantErrText)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_ApplyPracticeOutcome_RecordsAttempt(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_progress.NewMockStore(ctrl)
	attempts := mock_progress.NewMockAttemptRecorder(ctrl)

	saved := withVersion(srs.Update(srs.NewRecord(1, 10, now), false, now), 1)
	store.EXPECT().Get(gomock.Any(), int64(1), int64(10)).Return(nil, nil)
	store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(saved, nil)

	var got progress.Attempt
	attempts.EXPECT().RecordAttempt(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a progress.Attempt) error {
		got = a
		return nil
	})

	service := newService(t, store, progress.WithAttemptRecorder(attempts))
	_, err := service.ApplyPracticeOutcome(context.Background(), 1, 10, false)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, int64(1), got.UserID)
	assert.Equal(t, int64(10), got.WordID)
	assert.False(t, got.IsCorrect)
	assert.Nil(t, got.Score)
	assert.Equal(t, now, got.AttemptedAt)
}

func TestService_ApplyPracticeOutcome_AttemptFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_progress.NewMockStore(ctrl)
	attempts := mock_progress.NewMockAttemptRecorder(ctrl)

	saved := withVersion(srs.Update(srs.NewRecord(1, 10, now), true, now), 1)
	store.EXPECT().Get(gomock.Any(), int64(1), int64(10)).Return(nil, nil)
	store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(saved, nil)
	attempts.EXPECT().RecordAttempt(gomock.Any(), gomock.Any()).Return(fmt.Errorf("disk full"))

	service := newService(t, store, progress.WithAttemptRecorder(attempts))
	got, err := service.ApplyPracticeOutcome(context.Background(), 1, 10, true)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestService_SubmitSpokenAttempt(t *testing.T) {
	tests := []struct {
		name        string
		spoken      string
		target      string
		passScore   int
		wantScore   int
		wantCorrect bool
	}{
		{name: "exact match passes", spoken: "cat", target: "cat", passScore: 70, wantScore: 100, wantCorrect: true},
		{name: "accent substitution passes the default pass score", spoken: "fing", target: "thing", passScore: 70, wantScore: 88, wantCorrect: true},
		{name: "accent substitution misses a strict pass score", spoken: "fing", target: "thing", passScore: 90, wantScore: 88, wantCorrect: false},
		{name: "unrelated word fails", spoken: "kat", target: "cat", passScore: 70, wantScore: 67, wantCorrect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := progress.NewMemoryStore()
			service := newService(t, store, progress.WithPassScore(tt.passScore))

			result, record, err := service.SubmitSpokenAttempt(context.Background(), 1, 10, tt.spoken, tt.target)
			require.NoError(t, err)

			assert.Equal(t, tt.wantScore, result.Score)
			assert.Equal(t, 1, record.TimesSeen)
			if tt.wantCorrect {
				assert.Equal(t, 1, record.TimesCorrect)
			} else {
				assert.Equal(t, 1, record.TimesIncorrect)
			}

			attempts := store.Attempts(1, 10)
			require.Len(t, attempts, 1)
			assert.Equal(t, tt.wantCorrect, attempts[0].IsCorrect)
			require.NotNil(t, attempts[0].Score)
			assert.Equal(t, tt.wantScore, *attempts[0].Score)
			assert.Equal(t, tt.spoken, attempts[0].Spoken)
		})
	}
}

func TestService_SubmitSpokenAttempt_InvalidID(t *testing.T) {
	service := newService(t, progress.NewMemoryStore())

	_, _, err := service.SubmitSpokenAttempt(context.Background(), 1, 0, "cat", "cat")
	assert.ErrorIs(t, err, progress.ErrInvalidID)
}

func TestService_EvaluatePronunciation(t *testing.T) {
	service := newService(t, progress.NewMemoryStore())

	got := service.EvaluatePronunciation(context.Background(), "fing", "thing")
	assert.Equal(t, pronunciation.Evaluate("fing", "thing"), got)
	assert.Equal(t, pronunciation.GradeGood, got.Grade)
}

func TestService_EnrollWord(t *testing.T) {
	existing := withVersion(srs.Update(srs.NewRecord(1, 10, now), true, now), 2)
	fresh := srs.NewRecord(1, 10, now)

	tests := []struct {
		name      string
		setupMock func(store *mock_progress.MockStore)
		want      srs.Record
		wantErr   bool
	}{
		{
			name: "new word",
			setupMock: func(store *mock_progress.MockStore) {
				store.EXPECT().Get(gomock.Any(), int64(1), int64(10)).Return(nil, nil)
				store.EXPECT().Put(gomock.Any(), fresh).Return(withVersion(fresh, 1), nil)
			},
			want: withVersion(fresh, 1),
		},
		{
			name: "already enrolled word is unchanged",
			setupMock: func(store *mock_progress.MockStore) {
				store.EXPECT().Get(gomock.Any(), int64(1), int64(10)).Return(&existing, nil)
			},
			want: existing,
		},
		{
			name: "enrolled concurrently",
			setupMock: func(store *mock_progress.MockStore) {
				concurrent := withVersion(fresh, 1)
				gomock.InOrder(
					store.EXPECT().Get(gomock.Any(), int64(1), int64(10)).Return(nil, nil),
					store.EXPECT().Put(gomock.Any(), fresh).Return(srs.Record{}, progress.ErrConflict),
					store.EXPECT().Get(gomock.Any(), int64(1), int64(10)).Return(&concurrent, nil),
				)
			},
			want: withVersion(fresh, 1),
		},
		{
			name: "store error",
			setupMock: func(store *mock_progress.MockStore) {
				store.EXPECT().Get(gomock.Any(), int64(1), int64(10)).Return(nil, fmt.Errorf("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := mock_progress.NewMockStore(ctrl)
			tt.setupMock(store)

			got, err := newService(t, store).EnrollWord(context.Background(), 1, 10)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_ResetWord(t *testing.T) {
	store := progress.NewMemoryStore()
	service := newService(t, store)
	ctx := context.Background()

	for i := 0; i < srs.LearnedThreshold; i++ {
		_, err := service.ApplyPracticeOutcome(ctx, 1, 10, true)
		require.NoError(t, err)
	}
	learned, err := store.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, srs.StatusLearned, learned.Status)

	got, err := service.ResetWord(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, srs.StatusNew, got.Status)
	assert.Zero(t, got.TimesSeen)
	assert.Equal(t, srs.DefaultEaseFactor, got.EaseFactor)
	assert.Equal(t, learned.Version+1, got.Version)
}

func TestService_DueWords(t *testing.T) {
	t.Run("uses the configured lister", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mock_progress.NewMockStore(ctrl)
		lister := mock_progress.NewMockDueLister(ctrl)
		due := []srs.Record{srs.NewRecord(1, 3, now), srs.NewRecord(1, 4, now)}
		lister.EXPECT().ListDue(gomock.Any(), int64(1), now, 5).Return(due, nil)

		got, err := newService(t, store, progress.WithDueLister(lister)).DueWords(context.Background(), 1, 5)
		require.NoError(t, err)
		assert.Equal(t, due, got)
	})

	t.Run("store without listing support", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mock_progress.NewMockStore(ctrl)

		_, err := newService(t, store).DueWords(context.Background(), 1, 5)
		assert.ErrorIs(t, err, progress.ErrDueListingUnsupported)
	})

	t.Run("memory store lists due words", func(t *testing.T) {
		store := progress.NewMemoryStore()
		service := newService(t, store)
		ctx := context.Background()

		_, err := service.EnrollWord(ctx, 1, 10)
		require.NoError(t, err)
		_, err = service.ApplyPracticeOutcome(ctx, 1, 11, true)
		require.NoError(t, err)

		got, err := service.DueWords(ctx, 1, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(10), got[0].WordID)
	})

	t.Run("invalid user", func(t *testing.T) {
		_, err := newService(t, progress.NewMemoryStore()).DueWords(context.Background(), 0, 5)
		assert.ErrorIs(t, err, progress.ErrInvalidID)
	})
}

func TestService_ConcurrentOutcomesAreNotLost(t *testing.T) {
	const workers = 20
	store := progress.NewMemoryStore()
	service := newService(t, store, progress.WithMaxUpdateAttempts(workers+5))
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(correct bool) {
			defer wg.Done()
			if _, err := service.ApplyPracticeOutcome(ctx, 1, 10, correct); err != nil {
				errs <- err
			}
		}(i%2 == 0)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := store.Get(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, workers, got.TimesSeen)
	assert.Equal(t, workers/2, got.TimesCorrect)
	assert.Equal(t, workers/2, got.TimesIncorrect)
	assert.Equal(t, int64(workers), got.Version)
	assert.Len(t, store.Attempts(1, 10), workers)
}
