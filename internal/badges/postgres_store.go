package badges

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresStore persists badges in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed badge store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the badge tables if they don't exist. The composite
// primary key on badge_awards is what makes Award atomic.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS badges (
			id          VARCHAR(40) PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			icon_url    TEXT NOT NULL DEFAULT '',
			criteria    TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS badge_awards (
			badge_id   VARCHAR(40) NOT NULL REFERENCES badges(id) ON DELETE CASCADE,
			user_id    VARCHAR(40) NOT NULL,
			awarded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (badge_id, user_id)
		);

		CREATE INDEX IF NOT EXISTS idx_badges_criteria ON badges (criteria);
	`)
	return err
}

func (s *PostgresStore) Create(ctx context.Context, b *Badge) error {
	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO badges (id, name, description, icon_url, criteria, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, b.ID, b.Name, b.Description, b.IconURL, b.Criteria, createdAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrExists
		}
		return fmt.Errorf("failed to create badge: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Badge, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, icon_url, criteria, created_at
		FROM badges WHERE id = $1
	`, id)
	return scanBadge(row)
}

func (s *PostgresStore) GetByCriteria(ctx context.Context, criteria string) (*Badge, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, icon_url, criteria, created_at
		FROM badges WHERE criteria = $1
		ORDER BY created_at ASC
		LIMIT 1
	`, criteria)
	return scanBadge(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]*Badge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, icon_url, criteria, created_at
		FROM badges
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Badge
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Award relies on the (badge_id, user_id) primary key: ON CONFLICT DO
// NOTHING makes the insert a no-op when the user already holds the
// badge, and RowsAffected tells us which case we hit.
func (s *PostgresStore) Award(ctx context.Context, badgeID, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO badge_awards (badge_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (badge_id, user_id) DO NOTHING
	`, badgeID, userID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to award badge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *PostgresStore) CountAwards(ctx context.Context, badgeID string) (int, error) {
	if _, err := s.Get(ctx, badgeID); err != nil {
		return 0, err
	}
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM badge_awards WHERE badge_id = $1
	`, badgeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count awards: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) ListAwards(ctx context.Context, badgeID string) ([]*Award, error) {
	if _, err := s.Get(ctx, badgeID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT badge_id, user_id, awarded_at
		FROM badge_awards
		WHERE badge_id = $1
		ORDER BY awarded_at ASC, user_id ASC
	`, badgeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list awards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Award
	for rows.Next() {
		var a Award
		if err := rows.Scan(&a.BadgeID, &a.UserID, &a.AwardedAt); err != nil {
			return nil, fmt.Errorf("failed to scan award: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBadge(row rowScanner) (*Badge, error) {
	var b Badge
	err := row.Scan(&b.ID, &b.Name, &b.Description, &b.IconURL, &b.Criteria, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan badge: %w", err)
	}
	return &b, nil
}
