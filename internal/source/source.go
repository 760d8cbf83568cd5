package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/propflow/commshub/internal/record"
)

// Window bounds a fetch by record timestamp (unix ms). A zero field
// leaves that side unbounded.
type Window struct {
	Start int64
	End   int64
}

// Contains reports whether ts falls inside the window.
func (w Window) Contains(ts int64) bool {
	if w.Start != 0 && ts < w.Start {
		return false
	}
	if w.End != 0 && ts > w.End {
		return false
	}
	return true
}

// Adapter supplies raw records from one backing store (shared-line
// messages, personal-line messages, calls, drafts, external email).
// Implementations live with the host application; the engine only
// consumes the contract.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, w Window) ([]record.RawRecord, error)
}

// Func adapts a fetch function into an Adapter.
type Func struct {
	AdapterName string
	FetchFunc   func(ctx context.Context, w Window) ([]record.RawRecord, error)
}

func (f Func) Name() string { return f.AdapterName }

func (f Func) Fetch(ctx context.Context, w Window) ([]record.RawRecord, error) {
	return f.FetchFunc(ctx, w)
}

// FetchError reports one adapter's failed fetch.
type FetchError struct {
	Source string
	Err    error
}

func (e FetchError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e FetchError) Unwrap() error { return e.Err }

// Result is the joined output of a fan-out fetch. A failed adapter
// contributes to Degraded instead of aborting the merge; the caller
// renders whatever succeeded and surfaces a retry affordance.
type Result struct {
	Records  []record.RawRecord
	Degraded []FetchError
}

// FetchAll queries every adapter concurrently and joins the results.
// Record order follows adapter order, so the output is deterministic
// for a fixed adapter list. Never returns an error: total failure just
// yields an empty record set with every adapter in Degraded.
func FetchAll(ctx context.Context, adapters []Adapter, w Window) Result {
	type slot struct {
		recs []record.RawRecord
		err  error
	}
	slots := make([]slot, len(adapters))

	var wg sync.WaitGroup
	for i, a := range adapters {
		wg.Add(1)
		go func(i int, a Adapter) {
			defer wg.Done()
			recs, err := a.Fetch(ctx, w)
			slots[i] = slot{recs: recs, err: err}
		}(i, a)
	}
	wg.Wait()

	var res Result
	for i, s := range slots {
		if s.err != nil {
			res.Degraded = append(res.Degraded, FetchError{Source: adapters[i].Name(), Err: s.err})
			continue
		}
		res.Records = append(res.Records, s.recs...)
	}
	return res
}
