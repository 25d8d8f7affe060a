package users

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed user store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the users table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id                   VARCHAR(40) PRIMARY KEY,
			name                 TEXT NOT NULL,
			email                TEXT NOT NULL UNIQUE,
			department           TEXT NOT NULL DEFAULT '',
			risk_score           INT NOT NULL DEFAULT 0,
			trainings_completed  TEXT[] NOT NULL DEFAULT '{}',
			badges               TEXT[] NOT NULL DEFAULT '{}',
			created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

func (s *PostgresStore) Create(ctx context.Context, u *User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, department, risk_score, trainings_completed, badges, created_at)
		VALUES ($1, $2, lower($3), $4, $5, $6, $7, $8)
	`,
		u.ID, u.Name, u.Email, u.Department, u.RiskScore,
		pq.Array(u.TrainingsCompleted), pq.Array(u.Badges), u.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, department, risk_score, trainings_completed, badges, created_at
		FROM users WHERE id = $1
	`, id)
	return scanUser(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, department, risk_score, trainings_completed, badges, created_at
		FROM users ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SetRiskScore(ctx context.Context, id string, score int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET risk_score = $2 WHERE id = $1`, id, score)
	if err != nil {
		return fmt.Errorf("failed to update risk score: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) AddCompletedTraining(ctx context.Context, id, trainingID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET trainings_completed = array_append(trainings_completed, $2)
		WHERE id = $1 AND NOT ($2 = ANY(trainings_completed))
	`, id, trainingID)
	if err != nil {
		return fmt.Errorf("failed to add completed training: %w", err)
	}
	// Zero rows means either the user is missing or the set already
	// contains the training; distinguish by existence.
	if n, _ := res.RowsAffected(); n == 0 {
		return s.exists(ctx, id)
	}
	return nil
}

func (s *PostgresStore) AddBadge(ctx context.Context, id, badgeID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET badges = array_append(badges, $2)
		WHERE id = $1 AND NOT ($2 = ANY(badges))
	`, id, badgeID)
	if err != nil {
		return fmt.Errorf("failed to add badge: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return s.exists(ctx, id)
	}
	return nil
}

func (s *PostgresStore) exists(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = $1`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	var trainings, badges pq.StringArray
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Department, &u.RiskScore,
		&trainings, &badges, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.TrainingsCompleted = trainings
	u.Badges = badges
	return &u, nil
}
