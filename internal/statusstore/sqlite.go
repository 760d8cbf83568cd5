package statusstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/propflow/commshub/internal/record"
	"github.com/propflow/commshub/internal/statusstore/migrations"
)

// SQLiteStore persists status records in a local SQLite database. This
// is the default backend.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the status database at path with WAL
// mode and runs pending migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("migration instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration up: %w", err)
	}
	return nil
}

// ReadStatuses returns every status record owned by a viewer.
func (s *SQLiteStore) ReadStatuses(ctx context.Context, viewerID string) ([]record.ConversationStatusRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, viewer_id, status, priority, snoozed_until, updated_at
		FROM conversation_statuses
		WHERE viewer_id = ?`, viewerID)
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
func (s *SQLiteStore) Upsert(ctx context.Context, rec record.ConversationStatusRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversation_statuses (key, viewer_id, status, priority, snoozed_until, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key, viewer_id) DO UPDATE SET
			status = excluded.status,
			priority = excluded.priority,
			snoozed_until = excluded.snoozed_until,
			updated_at = excluded.updated_at`,
		rec.Key, rec.ViewerID, rec.Status, rec.Priority, rec.SnoozedUntil, rec.UpdatedAt)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
