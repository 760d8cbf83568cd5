package daemon

import (
	"sync/atomic"

	"github.com/propflow/commshub/internal/inbox"
)

// Holder keeps the most recent confirmed snapshot. The poll task
// writes it; the presentation layer reads it at its own pace. Across
// passes the only guarantee is "latest snapshot wins".
type Holder struct {
	latest atomic.Pointer[inbox.Snapshot]
}

// NewHolder creates an empty holder.
func NewHolder() *Holder {
	return &Holder{}
}

// Set replaces the held snapshot.
func (h *Holder) Set(snap *inbox.Snapshot) {
	h.latest.Store(snap)
}

// Latest returns the held snapshot, or nil before the first refresh
// completes.
func (h *Holder) Latest() *inbox.Snapshot {
	return h.latest.Load()
}
