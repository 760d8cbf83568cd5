package statusstore

import (
	"context"
	"sync"

	"github.com/propflow/commshub/internal/record"
)

// MemoryStore keeps status records in process memory. Used in tests and
// ephemeral setups.
type MemoryStore struct {
	mu   sync.Mutex
	recs map[memKey]record.ConversationStatusRecord
}

type memKey struct {
	key      string
	viewerID string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[memKey]record.ConversationStatusRecord)}
}

// ReadStatuses returns every status record owned by a viewer.
func (s *MemoryStore) ReadStatuses(_ context.Context, viewerID string) ([]record.ConversationStatusRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []record.ConversationStatusRecord
	for k, r := range s.recs {
		if k.viewerID == viewerID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Upsert creates or replaces the record for (rec.Key, rec.ViewerID).
func (s *MemoryStore) Upsert(_ context.Context, rec record.ConversationStatusRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[memKey{rec.Key, rec.ViewerID}] = rec
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
