package triage

import (
	"fmt"
	"time"

	"github.com/propflow/commshub/internal/record"
)

// Per-conversation workflow state. Every state is user-reachable from
// every other state; there is no terminal state. The two read-time
// overrides in Effective exist so stale persisted state never hides new
// inbound activity without requiring a write on every read.

// Initial returns the status of a conversation that has no persisted
// record yet: open when the latest record is inbound and not already
// marked resolved by its source, otherwise done.
func Initial(latest record.CommunicationRecord) record.Status {
	if latest.Direction == record.Inbound && !latest.Resolved {
		return record.StatusOpen
	}
	return record.StatusDone
}

// Effective computes the display status for a conversation at query
// time. The persisted record is never mutated here:
//
//   - a snooze whose deadline has passed displays as open
//   - a done conversation whose latest message is inbound and newer
//     than the last status write displays as open (someone replied
//     after it was closed out)
func Effective(rec *record.ConversationStatusRecord, latest record.CommunicationRecord, now time.Time) record.Status {
	if rec == nil {
		return Initial(latest)
	}
	switch rec.Status {
	case record.StatusSnoozed:
		if now.UnixMilli() > rec.SnoozedUntil {
			return record.StatusOpen
		}
	case record.StatusDone:
		if latest.Direction == record.Inbound && latest.Timestamp > rec.UpdatedAt {
			return record.StatusOpen
		}
	}
	return rec.Status
}

// MarkDone builds the persisted record for closing a conversation out.
func MarkDone(key, viewerID string, now time.Time) record.ConversationStatusRecord {
	return record.ConversationStatusRecord{
		Key:       key,
		ViewerID:  viewerID,
		Status:    record.StatusDone,
		UpdatedAt: now.UnixMilli(),
	}
}

// Snooze builds the persisted record hiding a conversation until
// now + d.
func Snooze(key, viewerID string, d time.Duration, now time.Time) record.ConversationStatusRecord {
	return record.ConversationStatusRecord{
		Key:          key,
		ViewerID:     viewerID,
		Status:       record.StatusSnoozed,
		SnoozedUntil: now.Add(d).UnixMilli(),
		UpdatedAt:    now.UnixMilli(),
	}
}

// Reopen builds the persisted record putting a conversation back in the
// open bucket.
func Reopen(key, viewerID string, now time.Time) record.ConversationStatusRecord {
	return record.ConversationStatusRecord{
		Key:       key,
		ViewerID:  viewerID,
		Status:    record.StatusOpen,
		UpdatedAt: now.UnixMilli(),
	}
}

// Set builds a persisted record for any reachable workflow state; the
// awaiting and archived states have no dedicated verb.
func Set(key, viewerID string, s record.Status, now time.Time) (record.ConversationStatusRecord, error) {
	if !s.Valid() {
		return record.ConversationStatusRecord{}, fmt.Errorf("unknown status %q", s)
	}
	return record.ConversationStatusRecord{
		Key:       key,
		ViewerID:  viewerID,
		Status:    s,
		UpdatedAt: now.UnixMilli(),
	}, nil
}
