package risk

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PostgresStore persists score records in PostgreSQL. The table is
// insert-only; nothing updates or deletes rows.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed score-history store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the risk_scores table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS risk_scores (
			id                    VARCHAR(40) PRIMARY KEY,
			user_id               VARCHAR(40) NOT NULL,
			score                 INTEGER NOT NULL CHECK (score BETWEEN 0 AND 100),
			level                 VARCHAR(10) NOT NULL
				CHECK (level IN ('low', 'medium', 'high', 'critical')),
			clicks                INTEGER NOT NULL,
			submissions           INTEGER NOT NULL,
			reports               INTEGER NOT NULL,
			completion_pct        DOUBLE PRECISION NOT NULL,
			avg_minutes_to_report DOUBLE PRECISION,
			calculated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_risk_scores_user
			ON risk_scores (user_id, calculated_at DESC);
	`)
	return err
}

func (s *PostgresStore) Append(ctx context.Context, r *Record) error {
	calculatedAt := r.CalculatedAt
	if calculatedAt.IsZero() {
		calculatedAt = time.Now()
	}
	var avg sql.NullFloat64
	if r.Factors.AvgMinutesToReport != nil {
		avg = sql.NullFloat64{Float64: *r.Factors.AvgMinutesToReport, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO risk_scores (id, user_id, score, level, clicks, submissions, reports, completion_pct, avg_minutes_to_report, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.ID, r.UserID, r.Score, string(r.Level), r.Factors.Clicks, r.Factors.Submissions,
		r.Factors.Reports, r.Factors.CompletionPct, avg, calculatedAt)
	if err != nil {
		return fmt.Errorf("failed to append score record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Latest(ctx context.Context, userID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, score, level, clicks, submissions, reports, completion_pct, avg_minutes_to_report, calculated_at
		FROM risk_scores
		WHERE user_id = $1
		ORDER BY calculated_at DESC
		LIMIT 1
	`, userID)
	return scanRecord(row)
}

func (s *PostgresStore) History(ctx context.Context, userID string, limit int) ([]*Record, error) {
	q := `
		SELECT id, user_id, score, level, clicks, submissions, reports, completion_pct, avg_minutes_to_report, calculated_at
		FROM risk_scores
		WHERE user_id = $1
		ORDER BY calculated_at DESC`
	args := []any{userID}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list score history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var r Record
	var level string
	var avg sql.NullFloat64
	err := row.Scan(&r.ID, &r.UserID, &r.Score, &level, &r.Factors.Clicks,
		&r.Factors.Submissions, &r.Factors.Reports, &r.Factors.CompletionPct,
		&avg, &r.CalculatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan score record: %w", err)
	}
	r.Level = Level(level)
	if avg.Valid {
		r.Factors.AvgMinutesToReport = &avg.Float64
	}
	return &r, nil
}
