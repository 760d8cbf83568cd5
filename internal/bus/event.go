package bus

import "time"

// Event kinds published by the engine. Subscribers filter by prefix,
// e.g. "status." receives every status event.
const (
	KindInboxRefreshed       = "inbox.refreshed"
	KindStatusChanged        = "status.changed"
	KindStatusMutationFailed = "status.mutation_failed"
	KindSourceFetchDegraded  = "source.fetch_degraded"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// StatusChange is the payload for status.changed and
// status.mutation_failed events.
type StatusChange struct {
	Key      string
	ViewerID string
	Status   string
}

// FetchDegraded is the payload for source.fetch_degraded events.
type FetchDegraded struct {
	Source string
	Err    string
}

// Refreshed is the payload for inbox.refreshed events.
type Refreshed struct {
	ViewerID      string
	Conversations int
	Generation    uint64
}
