package broker

import (
	"sync"
	"testing"
	"time"

	"github.com/rzbill/pollbus/pkg/id"
)

// testClock is a settable clock safe for concurrent use.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.UnixMilli(1_700_000_000_000)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(clock *testClock) *eventStore {
	return newEventStore(id.NewGeneratorWithClock(clock.Now))
}

func TestSnapshotUnknownKeyCreatesNothing(t *testing.T) {
	s := newTestStore(newTestClock())
	if got := s.snapshot("missing"); len(got) != 0 {
		t.Fatalf("expected empty snapshot, got %d", len(got))
	}
	if keys, _ := s.counts(); keys != 0 {
		t.Fatalf("snapshot created %d keys", keys)
	}
}

func TestAppendKeepsInsertionOrder(t *testing.T) {
	clock := newTestClock()
	s := newTestStore(clock)
	for i := 0; i < 5; i++ {
		if _, err := s.append("orders", i); err != nil {
			t.Fatalf("append: %v", err)
		}
		clock.Advance(time.Millisecond)
	}
	evs := s.snapshot("orders")
	if len(evs) != 5 {
		t.Fatalf("want 5 events, got %d", len(evs))
	}
	for i, ev := range evs {
		if ev.Data != i {
			t.Fatalf("event %d carries %v", i, ev.Data)
		}
		if i > 0 && ev.CreatedAt.Before(evs[i-1].CreatedAt) {
			t.Fatalf("createdAt decreased at %d", i)
		}
	}
}

func TestPruneExpired(t *testing.T) {
	clock := newTestClock()
	s := newTestStore(clock)
	retention := 120 * time.Second

	_, _ = s.append("a", "old")
	clock.Advance(60 * time.Second)
	_, _ = s.append("a", "young")
	_, _ = s.append("b", "young")

	clock.Advance(65 * time.Second) // old is 125s, young is 65s
	if n := s.pruneExpired(clock.Now(), retention); n != 1 {
		t.Fatalf("pruned %d, want 1", n)
	}
	if evs := s.snapshot("a"); len(evs) != 1 || evs[0].Data != "young" {
		t.Fatalf("unexpected survivors: %+v", evs)
	}

	clock.Advance(time.Hour)
	if n := s.pruneExpired(clock.Now(), retention); n != 2 {
		t.Fatalf("pruned %d, want 2", n)
	}
	if keys, events := s.counts(); keys != 0 || events != 0 {
		t.Fatalf("empty keys should be dropped, have keys=%d events=%d", keys, events)
	}
}

func TestPruneAtExactWindowBoundary(t *testing.T) {
	clock := newTestClock()
	s := newTestStore(clock)
	_, _ = s.append("k", 1)
	clock.Advance(120*time.Second - time.Millisecond)
	if n := s.pruneExpired(clock.Now(), 120*time.Second); n != 0 {
		t.Fatalf("event younger than the window was pruned")
	}
	clock.Advance(time.Millisecond)
	if n := s.pruneExpired(clock.Now(), 120*time.Second); n != 1 {
		t.Fatalf("event at the window should be pruned")
	}
}

func TestSnapshotIsolatedFromPruneAndAppend(t *testing.T) {
	clock := newTestClock()
	s := newTestStore(clock)
	_, _ = s.append("k", 1)
	clock.Advance(time.Minute)
	_, _ = s.append("k", 2)

	snap := s.snapshot("k")
	clock.Advance(90 * time.Second)
	s.pruneExpired(clock.Now(), 2*time.Minute)
	_, _ = s.append("k", 3)

	if len(snap) != 2 || snap[0].Data != 1 || snap[1].Data != 2 {
		t.Fatalf("snapshot changed under prune: %+v", snap)
	}

	// appending to a snapshot must not write into the store
	grown := append(s.snapshot("k"), Event{ID: "x"})
	_ = grown
	_, _ = s.append("k", 4)
	cur := s.snapshot("k")
	if cur[len(cur)-1].Data != 4 {
		t.Fatalf("store clobbered through snapshot: %+v", cur)
	}
}
