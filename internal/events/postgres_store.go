package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// PostgresStore persists events in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed event store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the phishing_events table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS phishing_events (
			id           VARCHAR(40) PRIMARY KEY,
			user_id      VARCHAR(40) NOT NULL,
			campaign_id  VARCHAR(40) NOT NULL,
			event_type   VARCHAR(12) NOT NULL
				CHECK (event_type IN ('sent', 'opened', 'clicked', 'submitted', 'reported')),
			ip_address   TEXT NOT NULL DEFAULT '',
			user_agent   TEXT NOT NULL DEFAULT '',
			metadata     JSONB NOT NULL DEFAULT '{}',
			ts           TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_phishing_events_user
			ON phishing_events (user_id, ts DESC);

		CREATE INDEX IF NOT EXISTS idx_phishing_events_campaign
			ON phishing_events (campaign_id);
	`)
	return err
}

func (s *PostgresStore) Append(ctx context.Context, e *Event) error {
	if !ValidType(e.Type) {
		return ErrUnknownType
	}

	meta := e.Metadata
	if meta == nil {
		meta = map[string]string{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO phishing_events (id, user_id, campaign_id, event_type, ip_address, user_agent, metadata, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, e.UserID, e.CampaignID, string(e.Type), e.IPAddress, e.UserAgent, metaJSON, ts)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string, limit int) ([]*Event, error) {
	q := `
		SELECT id, user_id, campaign_id, event_type, ip_address, user_agent, metadata, ts
		FROM phishing_events
		WHERE user_id = $1
		ORDER BY ts DESC`
	args := []any{userID}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanEvents(rows)
}

func (s *PostgresStore) CountByUserSince(ctx context.Context, userID string, typ Type, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM phishing_events
		WHERE user_id = $1 AND event_type = $2 AND ts >= $3
	`, userID, string(typ), since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]*Event, error) {
	q := `
		SELECT id, user_id, campaign_id, event_type, ip_address, user_agent, metadata, ts
		FROM phishing_events
		WHERE ($1 = '' OR user_id = $1)
		  AND ($2 = '' OR campaign_id = $2)
		  AND ($3 = '' OR event_type = $3)
		ORDER BY ts DESC`
	args := []any{f.UserID, f.CampaignID, string(f.Type)}
	if f.Limit > 0 {
		q += ` LIMIT $4`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanEvents(rows)
}

func (s *PostgresStore) CountByCampaign(ctx context.Context, campaignID string) (map[Type]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_type, COUNT(*) FROM phishing_events
		WHERE campaign_id = $1
		GROUP BY event_type
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to count campaign events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[Type]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		counts[Type(typ)] = n
	}
	return counts, rows.Err()
}

func scanEvents(rows *sql.Rows) ([]*Event, error) {
	var out []*Event
	for rows.Next() {
		var e Event
		var typ string
		var metaJSON []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.CampaignID, &typ,
			&e.IPAddress, &e.UserAgent, &metaJSON, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Type = Type(typ)
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &e.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		if len(e.Metadata) == 0 {
			e.Metadata = nil
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
