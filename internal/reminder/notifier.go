// Package reminder tells learners when words are due for review.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
)

//go:generate mockgen -source=notifier.go -destination=../mocks/reminder/mock_notifier.go -package=mock_reminder

// Notifier delivers a due-review reminder to one user.
type Notifier interface {
	NotifyDue(ctx context.Context, userID int64, count int) error
}

// LogNotifier writes reminders to a slog logger instead of delivering them.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyDue(ctx context.Context, userID int64, count int) error {
	n.logger.InfoContext(ctx, "words due for review", "user_id", userID, "count", count)
	return nil
}

func reminderText(count int) string {
	if count == 1 {
		return "You have 1 word due for review. Time to practice!"
	}
	return fmt.Sprintf("You have %d words due for review. Time to practice!", count)
}
