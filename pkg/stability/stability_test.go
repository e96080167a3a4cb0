package stability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFirstStopsAtFirstTrue(t *testing.T) {
	sig := Replay(false, false, true, false)

	var seen []bool
	got, err := First(context.Background(), sig, func(v bool) bool {
		seen = append(seen, v)
		return v
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Errorf("First() = %v, want true", got)
	}
	if diff := cmp.Diff([]bool{false, false, true}, seen); diff != "" {
		t.Errorf("observed values mismatch (-want +got):\n%s", diff)
	}
	waitFor(t, func() bool { return sig.Subscribers() == 0 })
}

func TestFirstIgnoresLaterChanges(t *testing.T) {
	sig := NewSignal(false)

	done := make(chan struct{})
	var calls int
	var mu sync.Mutex
	go func() {
		defer close(done)
		_, _ = First(context.Background(), sig, func(v bool) bool {
			mu.Lock()
			calls++
			mu.Unlock()
			return v
		})
	}()

	waitFor(t, func() bool { return sig.Subscribers() == 1 })
	sig.Set(false)
	sig.Set(true)
	<-done
	sig.Set(false)
	sig.Set(true)

	mu.Lock()
	defer mu.Unlock()
	if calls != 3 {
		t.Errorf("predicate called %d times, want 3", calls)
	}
}

func TestFirstHonoursContext(t *testing.T) {
	sig := NewSignal(false)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := First(ctx, sig, IsTrue)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	waitFor(t, func() bool { return sig.Subscribers() == 0 })
}

func TestSubscribeDeliversCurrentValueFirst(t *testing.T) {
	sig := NewSignal(true)
	ch, cancel := sig.Subscribe()
	defer cancel()

	if v := <-ch; !v {
		t.Errorf("first value = %v, want true", v)
	}
	sig.Set(false)
	sig.Set(false)
	if v := <-ch; v {
		t.Error("want false")
	}
	if v := <-ch; v {
		t.Error("repeated values must be delivered")
	}
}

func TestCancelClosesChannel(t *testing.T) {
	sig := NewSignal(false)
	ch, cancel := sig.Subscribe()
	<-ch
	cancel()
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	sig.Set(true)
}

func TestReplayValue(t *testing.T) {
	if Replay().Value() {
		t.Error("empty replay should start false")
	}
	sig := Replay(false, true)
	if !sig.Value() {
		t.Error("Value() should be the last replayed value")
	}
}

func TestTracker(t *testing.T) {
	tr := NewTracker()
	ch, cancel := tr.Signal().Subscribe()
	defer cancel()

	var got []bool
	got = append(got, <-ch)

	doneA := tr.Begin()
	got = append(got, <-ch)
	doneB := tr.Begin()
	if tr.Pending() != 2 {
		t.Errorf("Pending() = %d, want 2", tr.Pending())
	}
	doneA()
	doneA()
	if tr.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1 (done is idempotent)", tr.Pending())
	}
	doneB()
	got = append(got, <-ch)

	if diff := cmp.Diff([]bool{true, false, true}, got); diff != "" {
		t.Errorf("tracker stream mismatch (-want +got):\n%s", diff)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}
