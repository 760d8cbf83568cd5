package inbox

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/propflow/commshub/internal/bus"
	"github.com/propflow/commshub/internal/identity"
	"github.com/propflow/commshub/internal/merge"
	"github.com/propflow/commshub/internal/optimistic"
	"github.com/propflow/commshub/internal/priority"
	"github.com/propflow/commshub/internal/record"
	"github.com/propflow/commshub/internal/routing"
	"github.com/propflow/commshub/internal/source"
	"github.com/propflow/commshub/internal/statusstore"
	"github.com/propflow/commshub/internal/triage"
)

// CrossRef supplies a snapshot of the lead/owner/tenant identity
// cross-reference directories.
type CrossRef interface {
	Entries(ctx context.Context) ([]identity.Entry, error)
}

// AssignmentDirectory supplies the phone/line assignment directory,
// refreshed independently of message data.
type AssignmentDirectory interface {
	Assignments(ctx context.Context) ([]record.PhoneAssignment, error)
}

// Snapshot is one complete merged, classified, routed inbox view.
// Snapshots are immutable; each refresh produces a fresh one.
type Snapshot struct {
	View          routing.View
	Conversations []*merge.Conversation
	// Degraded lists sources whose fetch failed this pass; the
	// conversations above cover whatever succeeded.
	Degraded   []source.FetchError
	Generation uint64
	TakenAt    time.Time
}

// Options configures an Engine.
type Options struct {
	// ViewerID is the acting user; status reads and writes are scoped
	// to it.
	ViewerID    string
	Adapters    []source.Adapter
	CrossRef    CrossRef
	Assignments AssignmentDirectory
	Statuses    statusstore.Store
	Bus         *bus.Bus
	Logger      *zap.Logger
	OverrideTTL time.Duration
	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

// Engine runs the aggregation pipeline: fetch -> resolve -> merge ->
// classify -> status -> route. Refresh is pure over the fetched
// snapshots, so it is safe to re-run from scratch on every poll tick.
type Engine struct {
	viewerID    string
	adapters    []source.Adapter
	crossRef    CrossRef
	assignments AssignmentDirectory
	statuses    statusstore.Store
	arena       *optimistic.Arena
	bus         *bus.Bus
	logger      *zap.Logger
	clock       func() time.Time
	gen         atomic.Uint64
}

// New creates an engine. A nil logger and bus default to no-op
// equivalents so the engine can be embedded without wiring either.
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Bus == nil {
		opts.Bus = bus.New()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Engine{
		viewerID:    opts.ViewerID,
		adapters:    opts.Adapters,
		crossRef:    opts.CrossRef,
		assignments: opts.Assignments,
		statuses:    opts.Statuses,
		arena:       optimistic.NewArena(opts.OverrideTTL),
		bus:         opts.Bus,
		logger:      opts.Logger,
		clock:       opts.Clock,
	}
}

// Refresh runs one full pipeline pass for the given view and window.
// Failures along the way shrink the result instead of aborting it: a
// failed source is reported in Snapshot.Degraded, and failed directory
// or status reads degrade to empty snapshots. The only error returned
// is context cancellation.
func (e *Engine) Refresh(ctx context.Context, view routing.View, w source.Window) (*Snapshot, error) {
	now := e.clock()
	gen := e.gen.Add(1)

	// Independent reads: sources, both directories and the status
	// table have no data dependencies until the merge, so issue them
	// concurrently and join.
	var (
		wg        sync.WaitGroup
		fetched   source.Result
		entries   []identity.Entry
		assigns   []record.PhoneAssignment
		persisted []record.ConversationStatusRecord

		entriesErr, assignsErr, statusErr error
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		fetched = source.FetchAll(ctx, e.adapters, w)
	}()
	go func() {
		defer wg.Done()
		entries, entriesErr = e.crossRef.Entries(ctx)
	}()
	go func() {
		defer wg.Done()
		assigns, assignsErr = e.assignments.Assignments(ctx)
	}()
	go func() {
		defer wg.Done()
		persisted, statusErr = e.statuses.ReadStatuses(ctx, e.viewerID)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, fe := range fetched.Degraded {
		e.logger.Warn("source fetch degraded", zap.String("source", fe.Source), zap.Error(fe.Err))
		e.bus.Emit(bus.KindSourceFetchDegraded, bus.FetchDegraded{Source: fe.Source, Err: fe.Err.Error()})
	}
	if entriesErr != nil {
		e.logger.Warn("cross-reference read failed, resolving without directory", zap.Error(entriesErr))
	}
	if assignsErr != nil {
		e.logger.Warn("assignment directory read failed, routing without lines", zap.Error(assignsErr))
	}
	if statusErr != nil {
		e.logger.Warn("status read failed, using initial statuses", zap.Error(statusErr))
	}

	resolver := identity.NewResolver(identity.NewDirectory(entries))
	resolved := make([]record.CommunicationRecord, 0, len(fetched.Records))
	for _, raw := range fetched.Records {
		resolved = append(resolved, record.CommunicationRecord{
			ID:          raw.ID,
			Channel:     raw.Channel,
			Direction:   raw.Direction,
			Body:        raw.Body,
			Subject:     raw.Subject,
			Timestamp:   raw.Timestamp,
			Identity:    resolver.Resolve(raw),
			Line:        identity.NormalizePhone(raw.Line),
			AssigneeID:  raw.AssigneeID,
			Promotional: raw.Promotional,
			Resolved:    raw.Resolved,
		})
	}

	statusByKey := make(map[string]record.ConversationStatusRecord, len(persisted))
	for _, r := range persisted {
		statusByKey[r.Key] = r
	}
	e.arena.Sweep(now)
	e.arena.Apply(statusByKey, e.viewerID)

	table := routing.NewTable(assigns)
	convs := merge.Merge(resolved)

	out := convs[:0]
	for _, c := range convs {
		c.Thread = table.Filter(c.Thread, view)
		if len(c.Thread) == 0 {
			continue
		}
		latest := c.Latest()
		c.Priority = priority.ForConversation(latest)
		if rec, ok := statusByKey[c.Key]; ok {
			c.DisplayStatus = triage.Effective(&rec, latest, now)
		} else {
			c.DisplayStatus = triage.Effective(nil, latest, now)
		}
		out = append(out, c)
	}
	merge.Sort(out)

	e.bus.Emit(bus.KindInboxRefreshed, bus.Refreshed{
		ViewerID:      e.viewerID,
		Conversations: len(out),
		Generation:    gen,
	})

	return &Snapshot{
		View:          view,
		Conversations: out,
		Degraded:      fetched.Degraded,
		Generation:    gen,
		TakenAt:       now,
	}, nil
}

// MarkDone closes a conversation out.
func (e *Engine) MarkDone(ctx context.Context, key string) error {
	return e.mutate(ctx, triage.MarkDone(key, e.viewerID, e.clock()))
}

// Snooze hides a conversation until now + d.
func (e *Engine) Snooze(ctx context.Context, key string, d time.Duration) error {
	return e.mutate(ctx, triage.Snooze(key, e.viewerID, d, e.clock()))
}

// Reopen puts a conversation back in the open bucket.
func (e *Engine) Reopen(ctx context.Context, key string) error {
	return e.mutate(ctx, triage.Reopen(key, e.viewerID, e.clock()))
}

// SetStatus moves a conversation to any workflow state, covering the
// states without a dedicated verb.
func (e *Engine) SetStatus(ctx context.Context, key string, s record.Status) error {
	rec, err := triage.Set(key, e.viewerID, s, e.clock())
	if err != nil {
		return err
	}
	return e.mutate(ctx, rec)
}

// mutate stages the override first so the visible state changes before
// the persistence call resolves. On failure the override is rolled back
// and the error surfaced; there is no automatic retry.
func (e *Engine) mutate(ctx context.Context, rec record.ConversationStatusRecord) error {
	e.arena.Stage(rec.Key, rec.Status, rec.SnoozedUntil, e.clock())

	if err := e.statuses.Upsert(ctx, rec); err != nil {
		e.arena.Fail(rec.Key)
		e.logger.Error("status upsert failed",
			zap.String("key", rec.Key),
			zap.String("status", string(rec.Status)),
			zap.Error(err))
		e.bus.Emit(bus.KindStatusMutationFailed, bus.StatusChange{
			Key:      rec.Key,
			ViewerID: rec.ViewerID,
			Status:   string(rec.Status),
		})
		return fmt.Errorf("persist status for %s: %w", rec.Key, err)
	}

	e.bus.Emit(bus.KindStatusChanged, bus.StatusChange{
		Key:      rec.Key,
		ViewerID: rec.ViewerID,
		Status:   string(rec.Status),
	})
	return nil
}
