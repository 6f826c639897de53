package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/at-ishikawa/wordcoach/internal/srs"
)

var recordColumns = []string{
	"user_id", "word_id", "times_seen", "times_correct", "times_incorrect", "status",
	"mastery_level", "ease_factor", "interval_days", "repetitions", "next_review_at",
	"last_reviewed_at", "version",
}

const mysqlDuplicateEntry = 1062

// DBStore keeps progress in the word_progress and practice_attempts tables.
type DBStore struct {
	db *sqlx.DB
}

func NewDBStore(db *sqlx.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Get(ctx context.Context, userID, wordID int64) (*srs.Record, error) {
	query := s.db.Rebind(fmt.Sprintf(
		"SELECT %s FROM word_progress WHERE user_id = ? AND word_id = ?",
		strings.Join(recordColumns, ", "),
	))

	var record srs.Record
	if err := s.db.GetContext(ctx, &record, query, userID, wordID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext(word_progress) > %w", err)
	}
	return &record, nil
}

func (s *DBStore) Put(ctx context.Context, record srs.Record) (srs.Record, error) {
	if record.Version == 0 {
		return s.insert(ctx, record)
	}
	return s.update(ctx, record)
}

func (s *DBStore) insert(ctx context.Context, record srs.Record) (srs.Record, error) {
	record.Version = 1

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(recordColumns)), ", ")
	query := fmt.Sprintf("INSERT INTO word_progress (%s) VALUES (%s)", strings.Join(recordColumns, ", "), placeholders)
	if s.db.DriverName() != "mysql" {
		query += " ON CONFLICT (user_id, word_id) DO NOTHING"
	}

	result, err := s.db.ExecContext(ctx, s.db.Rebind(query),
		record.UserID, record.WordID, record.TimesSeen, record.TimesCorrect, record.TimesIncorrect, record.Status,
		record.MasteryLevel, record.EaseFactor, record.IntervalDays, record.Repetitions, record.NextReviewAt,
		record.LastReviewedAt, record.Version,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return srs.Record{}, ErrConflict
		}
		return srs.Record{}, fmt.Errorf("db.ExecContext(insert word_progress) > %w", err)
	}
	if err := expectOneRow(result); err != nil {
		return srs.Record{}, err
	}
	return record, nil
}

func (s *DBStore) update(ctx context.Context, record srs.Record) (srs.Record, error) {
	query := s.db.Rebind(`UPDATE word_progress SET
    times_seen = ?, times_correct = ?, times_incorrect = ?, status = ?, mastery_level = ?,
    ease_factor = ?, interval_days = ?, repetitions = ?, next_review_at = ?, last_reviewed_at = ?,
    version = ?, updated_at = CURRENT_TIMESTAMP
WHERE user_id = ? AND word_id = ? AND version = ?`)

	result, err := s.db.ExecContext(ctx, query,
		record.TimesSeen, record.TimesCorrect, record.TimesIncorrect, record.Status, record.MasteryLevel,
		record.EaseFactor, record.IntervalDays, record.Repetitions, record.NextReviewAt, record.LastReviewedAt,
		record.Version+1,
		record.UserID, record.WordID, record.Version,
	)
	if err != nil {
		return srs.Record{}, fmt.Errorf("db.ExecContext(update word_progress) > %w", err)
	}
	if err := expectOneRow(result); err != nil {
		return srs.Record{}, err
	}

	record.Version++
	return record, nil
}

func (s *DBStore) ListDue(ctx context.Context, userID int64, now time.Time, limit int) ([]srs.Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM word_progress
WHERE user_id = ? AND next_review_at <= ?
ORDER BY CASE WHEN times_seen = 0 THEN 0 ELSE 1 END, ease_factor, next_review_at, word_id`,
		strings.Join(recordColumns, ", "),
	)
	args := []interface{}{userID, now}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var records []srs.Record
	if err := s.db.SelectContext(ctx, &records, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(word_progress) > %w", err)
	}
	return records, nil
}

func (s *DBStore) CountDueByUser(ctx context.Context, now time.Time) (map[int64]int, error) {
	query := s.db.Rebind(`SELECT user_id, COUNT(*) AS due_count FROM word_progress
WHERE next_review_at <= ?
GROUP BY user_id`)

	var rows []struct {
		UserID   int64 `db:"user_id"`
		DueCount int   `db:"due_count"`
	}
	if err := s.db.SelectContext(ctx, &rows, query, now); err != nil {
		return nil, fmt.Errorf("db.SelectContext(due counts) > %w", err)
	}

	counts := make(map[int64]int, len(rows))
	for _, r := range rows {
		counts[r.UserID] = r.DueCount
	}
	return counts, nil
}

func (s *DBStore) RecordAttempt(ctx context.Context, attempt Attempt) error {
	query := s.db.Rebind(`INSERT INTO practice_attempts (id, user_id, word_id, is_correct, score, spoken, attempted_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`)

	if _, err := s.db.ExecContext(ctx, query,
		attempt.ID.String(), attempt.UserID, attempt.WordID, attempt.IsCorrect, attempt.Score, attempt.Spoken, attempt.AttemptedAt,
	); err != nil {
		return fmt.Errorf("db.ExecContext(insert practice_attempts) > %w", err)
	}
	return nil
}

// ListAttempts returns the most recent attempts of a user on a word, newest first.
func (s *DBStore) ListAttempts(ctx context.Context, userID, wordID int64, limit int) ([]Attempt, error) {
	query := s.db.Rebind(`SELECT id, user_id, word_id, is_correct, score, spoken, attempted_at FROM practice_attempts
WHERE user_id = ? AND word_id = ?
ORDER BY attempted_at DESC
LIMIT ?`)

	var attempts []Attempt
	if err := s.db.SelectContext(ctx, &attempts, query, userID, wordID, limit); err != nil {
		return nil, fmt.Errorf("db.SelectContext(practice_attempts) > %w", err)
	}
	return attempts, nil
}

func expectOneRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if affected == 0 {
		return ErrConflict
	}
	return nil
}

func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
