package poll

import (
	"context"
	"testing"
	"time"
)

func TestRunsImmediatelyOnStart(t *testing.T) {
	ticks := make(chan time.Time)
	delivered := make(chan any, 1)

	task := New(time.Hour, func(context.Context) any { return "first" }, func(r any) { delivered <- r })
	task.SetTickSource(ticks)
	task.Start(context.Background())
	defer task.Stop()

	select {
	case r := <-delivered:
		if r != "first" {
			t.Errorf("delivered %v", r)
		}
	case <-time.After(time.Second):
		t.Fatal("no initial run")
	}
}

func TestTicksDriveRuns(t *testing.T) {
	ticks := make(chan time.Time)
	delivered := make(chan any, 8)
	n := 0

	task := New(time.Hour, func(context.Context) any { n++; return n }, func(r any) { delivered <- r })
	task.SetTickSource(ticks)
	task.Start(context.Background())
	defer task.Stop()

	<-delivered // initial run
	ticks <- time.Now()
	select {
	case r := <-delivered:
		if r != 2 {
			t.Errorf("second run delivered %v, want 2", r)
		}
	case <-time.After(time.Second):
		t.Fatal("tick did not trigger a run")
	}
}

func TestSupersededRunIsDiscarded(t *testing.T) {
	ticks := make(chan time.Time)
	delivered := make(chan any, 8)

	started := make(chan int)
	release := make(chan struct{})
	runs := 0

	task := New(time.Hour, func(context.Context) any {
		runs++
		id := runs
		started <- id
		<-release
		return id
	}, func(r any) { delivered <- r })
	task.SetTickSource(ticks)
	task.Start(context.Background())
	defer task.Stop()

	<-started // run 1 in flight
	ticks <- time.Now()
	<-started // run 2 in flight; run 1 is now superseded

	// Let both runs finish; only the current generation may deliver.
	close(release)

	select {
	case r := <-delivered:
		if r != 2 {
			t.Fatalf("delivered %v, want only run 2", r)
		}
	case <-time.After(time.Second):
		t.Fatal("current run never delivered")
	}
	select {
	case r := <-delivered:
		t.Fatalf("stale run delivered %v", r)
	case <-time.After(50 * time.Millisecond):
		// Expected: run 1's result was discarded.
	}
}

func TestStopCancelsLoop(t *testing.T) {
	ticks := make(chan time.Time)
	ran := make(chan struct{}, 8)

	task := New(time.Hour, func(ctx context.Context) any {
		ran <- struct{}{}
		return nil
	}, nil)
	task.SetTickSource(ticks)
	task.Start(context.Background())

	<-ran
	task.Stop()

	select {
	case ticks <- time.Now():
		// The loop may or may not drain one buffered tick; what matters
		// is that no further run starts.
	default:
	}
	select {
	case <-ran:
		t.Error("run started after Stop")
	case <-time.After(50 * time.Millisecond):
	}
}
