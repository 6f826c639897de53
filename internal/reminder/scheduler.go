package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/at-ishikawa/wordcoach/internal/observe"
	"github.com/at-ishikawa/wordcoach/internal/progress"
)

const (
	DefaultSchedule  = "0 * * * *"
	DefaultStartHour = 9
	DefaultEndHour   = 21
	DefaultMaxWords  = 10
)

// Options controls when reminders go out and how many words they announce.
type Options struct {
	// Schedule is a 5-field cron expression evaluated in UTC.
	Schedule string
	// StartHour and EndHour bound the UTC hours, inclusive, in which reminders are sent.
	StartHour int
	EndHour   int
	MaxWords  int
}

// Scheduler periodically notifies users who have words due for review.
type Scheduler struct {
	scheduler *gocron.Scheduler
	lister    progress.DueLister
	notifier  Notifier
	clock     progress.Clock
	metrics   *observe.Metrics
	opts      Options
}

func NewScheduler(lister progress.DueLister, notifier Notifier, clock progress.Clock, metrics *observe.Metrics, opts Options) *Scheduler {
	if opts.Schedule == "" {
		opts.Schedule = DefaultSchedule
	}
	if opts.MaxWords <= 0 {
		opts.MaxWords = DefaultMaxWords
	}
	if clock == nil {
		clock = progress.SystemClock{}
	}
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		lister:    lister,
		notifier:  notifier,
		clock:     clock,
		metrics:   metrics,
		opts:      opts,
	}
}

// Start registers the reminder job and runs the scheduler in the background.
// Jobs use ctx for their store and notifier calls.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.Cron(s.opts.Schedule).Do(func() {
		if _, err := s.CheckAndNotify(ctx); err != nil {
			slog.ErrorContext(ctx, "reminder check failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduler.Cron(%q) > %w", s.opts.Schedule, err)
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// CheckAndNotify sends one reminder to every user with due words when the
// current hour is inside the notification window. It returns the number of
// reminders delivered. A failed delivery is logged and does not stop the rest;
// an error is returned only when every delivery failed.
func (s *Scheduler) CheckAndNotify(ctx context.Context) (int, error) {
	now := s.clock.Now().UTC()
	if hour := now.Hour(); hour < s.opts.StartHour || hour > s.opts.EndHour {
		slog.DebugContext(ctx, "outside notification hours, skipping reminders",
			"hour", hour, "start_hour", s.opts.StartHour, "end_hour", s.opts.EndHour)
		return 0, nil
	}

	counts, err := s.lister.CountDueByUser(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("CountDueByUser > %w", err)
	}

	userIDs := make([]int64, 0, len(counts))
	for userID, count := range counts {
		if count > 0 {
			userIDs = append(userIDs, userID)
		}
	}
	slices.Sort(userIDs)

	var errs []error
	sent := 0
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		count := min(counts[userID], s.opts.MaxWords)
		if err := s.notifier.NotifyDue(ctx, userID, count); err != nil {
			s.metrics.RecordReminder(ctx, "failed")
			slog.WarnContext(ctx, "failed to send reminder", "user_id", userID, "error", err)
			errs = append(errs, err)
			continue
		}
		s.metrics.RecordReminder(ctx, "sent")
		sent++
	}
	if sent == 0 && len(errs) > 0 {
		return 0, fmt.Errorf("all %d reminders failed > %w", len(errs), errors.Join(errs...))
	}
	return sent, nil
}
