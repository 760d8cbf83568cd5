package optimistic

import (
	"sync"
	"time"

	"github.com/propflow/commshub/internal/record"
)

// DefaultTTL bounds how long a pending override can shadow persisted
// state. Once a confirmed snapshot reflects the write the override is
// redundant; the TTL keeps a missed refresh from pinning stale state
// forever.
const DefaultTTL = 30 * time.Second

// Arena holds transient status overrides staged before their
// persistence call resolves, so a mutation is visible immediately.
// Entries live only in this process and are never persisted: they are
// evicted on failure or swept once the TTL passes, and a settled write
// is simply shadowed by the next confirmed snapshot.
type Arena struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
}

type entry struct {
	status       record.Status
	snoozedUntil int64
	stagedAt     time.Time
}

// NewArena creates an arena with the given override TTL; ttl <= 0 uses
// DefaultTTL.
func NewArena(ttl time.Duration) *Arena {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Arena{ttl: ttl, entries: make(map[string]entry)}
}

// Stage records a pending status for key before the store write is
// issued. snoozedUntil is only meaningful for a snooze; pass 0
// otherwise.
func (a *Arena) Stage(key string, s record.Status, snoozedUntil int64, now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries[key] = entry{status: s, snoozedUntil: snoozedUntil, stagedAt: now}
}

// Fail evicts the pending override for key after a store write failed,
// so the conversation falls back to its persisted status.
func (a *Arena) Fail(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.entries, key)
}

// Pending returns the staged status for key, if any.
func (a *Arena) Pending(key string) (record.Status, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.entries[key]
	return e.status, ok
}

// Sweep evicts every override staged longer than the TTL ago. The
// engine calls it once per refresh.
func (a *Arena) Sweep(now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for key, e := range a.entries {
		if now.Sub(e.stagedAt) > a.ttl {
			delete(a.entries, key)
		}
	}
}

// Apply overlays pending overrides onto a persisted status map keyed by
// conversation key. An override replaces the persisted status and
// advances UpdatedAt to the staging time; a key with no persisted
// record gains a synthetic one.
func (a *Arena) Apply(statuses map[string]record.ConversationStatusRecord, viewerID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for key, e := range a.entries {
		rec, ok := statuses[key]
		if !ok {
			rec = record.ConversationStatusRecord{Key: key, ViewerID: viewerID}
		}
		rec.Status = e.status
		rec.SnoozedUntil = e.snoozedUntil
		rec.UpdatedAt = e.stagedAt.UnixMilli()
		statuses[key] = rec
	}
}
