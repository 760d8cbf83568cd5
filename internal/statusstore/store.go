package statusstore

import (
	"context"

	"github.com/propflow/commshub/internal/record"
)

// Store persists conversation workflow status. At most one record
// exists per (key, viewer) pair; Upsert enforces that, and the engine
// never deletes records.
type Store interface {
	// ReadStatuses returns every status record owned by a viewer.
	ReadStatuses(ctx context.Context, viewerID string) ([]record.ConversationStatusRecord, error)
	// Upsert creates or replaces the record for (rec.Key, rec.ViewerID).
	Upsert(ctx context.Context, rec record.ConversationStatusRecord) error
	Close() error
}
