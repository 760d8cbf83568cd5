package poll

import (
	"context"
	"sync"
	"time"
)

// RunFunc produces one refresh result. It must tolerate being invoked
// again before a previous invocation returns.
type RunFunc func(ctx context.Context) any

// DeliverFunc receives the result of a run that is still current.
type DeliverFunc func(result any)

// Task drives a periodic refresh. Each tick starts a run tagged with a
// generation; a run whose generation has been superseded by a newer
// tick delivers nothing. The pipeline is idempotent, so discarding a
// stale result loses no data.
type Task struct {
	interval time.Duration
	run      RunFunc
	deliver  DeliverFunc

	// ticks overrides the wall-clock ticker so tests can drive ticks
	// deterministically.
	ticks <-chan time.Time

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a task that calls run every interval and hands current
// results to deliver.
func New(interval time.Duration, run RunFunc, deliver DeliverFunc) *Task {
	return &Task{interval: interval, run: run, deliver: deliver}
}

// SetTickSource replaces the interval ticker with an external channel.
// Must be called before Start.
func (t *Task) SetTickSource(ticks <-chan time.Time) {
	t.ticks = ticks
}

// Start begins the tick loop. An immediate first run happens on start
// so callers never wait a full interval for the initial snapshot.
func (t *Task) Start(ctx context.Context) {
	ctx, t.cancel = context.WithCancel(ctx)
	t.done = make(chan struct{})

	ticks := t.ticks
	var ticker *time.Ticker
	if ticks == nil {
		ticker = time.NewTicker(t.interval)
		ticks = ticker.C
	}

	go func() {
		defer close(t.done)
		if ticker != nil {
			defer ticker.Stop()
		}

		t.launch(ctx)
		for {
			select {
			case <-ticks:
				t.launch(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit. In-flight runs are
// abandoned; their results are discarded.
func (t *Task) Stop() {
	if t.cancel != nil {
		t.cancel()
		<-t.done
	}
}

func (t *Task) launch(ctx context.Context) {
	t.mu.Lock()
	t.gen++
	gen := t.gen
	t.mu.Unlock()

	go func() {
		result := t.run(ctx)
		if ctx.Err() != nil {
			return
		}
		t.mu.Lock()
		current := gen == t.gen
		t.mu.Unlock()
		if current && t.deliver != nil {
			t.deliver(result)
		}
	}()
}
