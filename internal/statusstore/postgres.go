package statusstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/lib/pq"

	"github.com/propflow/commshub/internal/record"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS conversation_statuses (
    id BIGSERIAL PRIMARY KEY,
    key TEXT NOT NULL,
    viewer_id TEXT NOT NULL,
    status TEXT NOT NULL,
    priority TEXT NOT NULL DEFAULT '',
    snoozed_until BIGINT NOT NULL DEFAULT 0,
    updated_at BIGINT NOT NULL,
    UNIQUE(key, viewer_id)
)`

// PostgresStore persists status records in a shared Postgres database,
// for deployments where several hub processes serve the same team.
// Schema setup runs lazily on first use.
type PostgresStore struct {
	dsn string

	initOnce sync.Once
	initErr  error
	db       *sql.DB
}

// OpenPostgres creates a store for the given DSN. The connection is
// established on first use.
func OpenPostgres(dsn string) *PostgresStore {
	return &PostgresStore{dsn: dsn}
}

func (s *PostgresStore) ensureReady(ctx context.Context) error {
	s.initOnce.Do(func() {
		db, err := sql.Open("postgres", s.dsn)
		if err != nil {
			s.initErr = fmt.Errorf("open postgres: %w", err)
			return
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			s.initErr = fmt.Errorf("ping postgres: %w", err)
			return
		}
		if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
			_ = db.Close()
			s.initErr = fmt.Errorf("create schema: %w", err)
			return
		}
		s.db = db
	})
	return s.initErr
}

// ReadStatuses returns every status record owned by a viewer.
func (s *PostgresStore) ReadStatuses(ctx context.Context, viewerID string) ([]record.ConversationStatusRecord, error) {
	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, viewer_id, status, priority, snoozed_until, updated_at
		FROM conversation_statuses
		WHERE viewer_id = $1`, viewerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []record.ConversationStatusRecord
	for rows.Next() {
		var r record.ConversationStatusRecord
		if err := rows.Scan(&r.Key, &r.ViewerID, &r.Status, &r.Priority, &r.SnoozedUntil, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Upsert creates or replaces the record for (rec.Key, rec.ViewerID).
func (s *PostgresStore) Upsert(ctx context.Context, rec record.ConversationStatusRecord) error {
	if err := s.ensureReady(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversation_statuses (key, viewer_id, status, priority, snoozed_until, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key, viewer_id) DO UPDATE SET
			status = EXCLUDED.status,
			priority = EXCLUDED.priority,
			snoozed_until = EXCLUDED.snoozed_until,
			updated_at = EXCLUDED.updated_at`,
		rec.Key, rec.ViewerID, rec.Status, rec.Priority, rec.SnoozedUntil, rec.UpdatedAt)
	return err
}

// Close closes the connection if one was established.
func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
