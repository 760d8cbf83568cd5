package merge

import (
	"sort"

	"github.com/propflow/commshub/internal/record"
)

// DedupWindowMs is the duplicate-delivery window: two records closer
// than this with identical body and direction collapse into one thread
// entry. Redundant webhook replays land within it without sharing an
// external id.
const DedupWindowMs = 5000

// Conversation is one merged group of records sharing a canonical
// contact key. Thread holds every deduplicated record, most recent
// first; the most recent record doubles as the summary row.
type Conversation struct {
	Key    string
	Thread []record.CommunicationRecord

	// Priority and DisplayStatus are annotated by the classifier and
	// status stages after merging.
	Priority      record.Priority
	DisplayStatus record.Status

	// lastObserved is the highest input position of any record in the
	// group, used as the final ordering tie-breaker.
	lastObserved int
}

// Latest returns the summary record: the most recent entry in the thread.
func (c *Conversation) Latest() record.CommunicationRecord {
	return c.Thread[0]
}

// GroupKey returns the canonical conversation key for a record:
// normalized phone, else normalized email, else the record's own id
// (a singleton group that never merges with anything).
func GroupKey(r record.CommunicationRecord) string {
	if r.Identity.NormalizedPhone != "" {
		return r.Identity.NormalizedPhone
	}
	if r.Identity.NormalizedEmail != "" {
		return r.Identity.NormalizedEmail
	}
	return r.ID
}

// Merge groups resolved records by canonical key, orders each thread by
// timestamp descending and collapses duplicate deliveries. Input order
// is treated as observation order for tie-breaking.
func Merge(records []record.CommunicationRecord) []*Conversation {
	byKey := make(map[string]*Conversation)
	var out []*Conversation

	for i, r := range records {
		key := GroupKey(r)
		c, ok := byKey[key]
		if !ok {
			c = &Conversation{Key: key}
			byKey[key] = c
			out = append(out, c)
		}
		c.Thread = append(c.Thread, r)
		c.lastObserved = i
	}

	for _, c := range out {
		sort.SliceStable(c.Thread, func(i, j int) bool {
			return c.Thread[i].Timestamp > c.Thread[j].Timestamp
		})
		c.Thread = dedup(c.Thread)
	}
	return out
}

// dedup collapses records within the dedup window that share body and
// direction. thread must already be sorted by timestamp descending;
// the first-kept entry wins.
func dedup(thread []record.CommunicationRecord) []record.CommunicationRecord {
	kept := thread[:0]
	for _, r := range thread {
		dup := false
		// Only entries inside the window can collide; scan kept entries
		// backwards until the gap exceeds it.
		for i := len(kept) - 1; i >= 0; i-- {
			delta := kept[i].Timestamp - r.Timestamp
			if delta < 0 {
				delta = -delta
			}
			if delta >= DedupWindowMs {
				break
			}
			if kept[i].Body == r.Body && kept[i].Direction == r.Direction {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, r)
		}
	}
	return kept
}

// statusBucket puts actionable conversations before settled ones.
func statusBucket(s record.Status) int {
	switch s {
	case record.StatusOpen, record.StatusAwaiting:
		return 0
	default:
		return 1
	}
}

// Sort orders annotated conversations deterministically: status bucket
// (open/awaiting first), then priority, then latest timestamp
// descending, ties broken by the most recently observed record.
func Sort(convs []*Conversation) {
	sort.SliceStable(convs, func(i, j int) bool {
		bi, bj := statusBucket(convs[i].DisplayStatus), statusBucket(convs[j].DisplayStatus)
		if bi != bj {
			return bi < bj
		}
		ri, rj := convs[i].Priority.Rank(), convs[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		ti, tj := convs[i].Latest().Timestamp, convs[j].Latest().Timestamp
		if ti != tj {
			return ti > tj
		}
		return convs[i].lastObserved > convs[j].lastObserved
	})
}
