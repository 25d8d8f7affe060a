package training

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresStore persists trainings in PostgreSQL. Questions are stored
// as JSONB; completions live in their own table keyed by
// (training_id, user_id), which is what makes UpsertCompletion safe.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed training store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the training tables if they don't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS trainings (
			id               VARCHAR(40) PRIMARY KEY,
			title            TEXT NOT NULL,
			description      TEXT NOT NULL DEFAULT '',
			category         TEXT NOT NULL DEFAULT '',
			duration_minutes INTEGER NOT NULL DEFAULT 0,
			passing_score    INTEGER NOT NULL DEFAULT 70,
			questions        JSONB NOT NULL DEFAULT '[]',
			assigned_to      TEXT[] NOT NULL DEFAULT '{}',
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS training_completions (
			training_id  VARCHAR(40) NOT NULL REFERENCES trainings(id) ON DELETE CASCADE,
			user_id      VARCHAR(40) NOT NULL,
			score        INTEGER NOT NULL,
			completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (training_id, user_id)
		);
	`)
	return err
}

func (s *PostgresStore) Create(ctx context.Context, t *Training) error {
	questions, err := json.Marshal(t.Questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trainings (id, title, description, category, duration_minutes, passing_score, questions, assigned_to, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, t.ID, t.Title, t.Description, t.Category, t.DurationMinutes, t.PassingScore,
		questions, pq.Array(t.AssignedTo), createdAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrExists
		}
		return fmt.Errorf("failed to create training: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Training, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, category, duration_minutes, passing_score, questions, assigned_to, created_at
		FROM trainings WHERE id = $1
	`, id)

	t, err := scanTraining(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadCompletions(ctx, []*Training{t}); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Training, error) {
	return s.query(ctx, `
		SELECT id, title, description, category, duration_minutes, passing_score, questions, assigned_to, created_at
		FROM trainings
		ORDER BY created_at ASC, id ASC
	`)
}

func (s *PostgresStore) ListForUser(ctx context.Context, userID string) ([]*Training, error) {
	return s.query(ctx, `
		SELECT id, title, description, category, duration_minutes, passing_score, questions, assigned_to, created_at
		FROM trainings
		WHERE assigned_to = '{}' OR $1 = ANY(assigned_to)
		ORDER BY created_at ASC, id ASC
	`, userID)
}

func (s *PostgresStore) Assign(ctx context.Context, trainingID, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE trainings
		SET assigned_to = array_append(assigned_to, $2)
		WHERE id = $1 AND NOT ($2 = ANY(assigned_to))
	`, trainingID, userID)
	if err != nil {
		return fmt.Errorf("failed to assign training: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either already assigned or the training doesn't exist.
		return s.exists(ctx, trainingID)
	}
	return nil
}

func (s *PostgresStore) UpsertCompletion(ctx context.Context, trainingID string, c *Completion) error {
	completedAt := c.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO training_completions (training_id, user_id, score, completed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (training_id, user_id)
		DO UPDATE SET score = EXCLUDED.score, completed_at = EXCLUDED.completed_at
	`, trainingID, c.UserID, c.Score, completedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("failed to upsert completion: %w", err)
	}
	return nil
}

func (s *PostgresStore) query(ctx context.Context, q string, args ...any) ([]*Training, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list trainings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Training
	for rows.Next() {
		t, err := scanTraining(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.loadCompletions(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) loadCompletions(ctx context.Context, ts []*Training) error {
	if len(ts) == 0 {
		return nil
	}
	byID := make(map[string]*Training, len(ts))
	ids := make([]string, 0, len(ts))
	for _, t := range ts {
		t.Completions = make(map[string]*Completion)
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT training_id, user_id, score, completed_at
		FROM training_completions
		WHERE training_id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load completions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var trainingID string
		var c Completion
		if err := rows.Scan(&trainingID, &c.UserID, &c.Score, &c.CompletedAt); err != nil {
			return fmt.Errorf("failed to scan completion: %w", err)
		}
		if t, ok := byID[trainingID]; ok {
			t.Completions[c.UserID] = &c
		}
	}
	return rows.Err()
}

func (s *PostgresStore) exists(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM trainings WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTraining(row rowScanner) (*Training, error) {
	var t Training
	var questions []byte
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Category, &t.DurationMinutes,
		&t.PassingScore, &questions, pq.Array(&t.AssignedTo), &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan training: %w", err)
	}
	if err := json.Unmarshal(questions, &t.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	return &t, nil
}
