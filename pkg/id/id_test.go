package id

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNextUniqueWithinMillisecond(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	g := NewGeneratorWithClock(func() time.Time { return fixed })

	seen := map[string]struct{}{}
	for i := 0; i < 1000; i++ {
		id, ts, err := g.Next("orders")
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if !ts.Equal(fixed) {
			t.Fatalf("timestamp changed: %v", ts)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestNextClockRegression(t *testing.T) {
	cur := time.UnixMilli(2000)
	g := NewGeneratorWithClock(func() time.Time { return cur })
	_, ts1, _ := g.Next("k")
	cur = time.UnixMilli(1000)
	id2, ts2, _ := g.Next("k")
	if ts2.Before(ts1) {
		t.Fatalf("timestamp went backwards: %v < %v", ts2, ts1)
	}
	if !strings.HasPrefix(id2, "k-2000-1-") {
		t.Fatalf("expected pinned ms and bumped sequence, got %s", id2)
	}
}

func TestNextSubMillisecondRegression(t *testing.T) {
	base := time.Unix(1000, 0)
	steps := []time.Duration{900 * time.Microsecond, 100 * time.Microsecond, -500 * time.Microsecond, 1200 * time.Microsecond}
	cur := base
	g := NewGeneratorWithClock(func() time.Time { return cur })
	var prev time.Time
	for i, d := range steps {
		cur = base.Add(d)
		_, ts, err := g.Next("k")
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if ts.Before(prev) {
			t.Fatalf("step %d: timestamp went backwards: %v < %v", i, ts, prev)
		}
		prev = ts
	}
	if !prev.Equal(base.Add(1200 * time.Microsecond)) {
		t.Fatalf("clock moving forward again should be honoured, got %v", prev)
	}
}

func TestNextConcurrent(t *testing.T) {
	g := NewGenerator()
	var mu sync.Mutex
	seen := map[string]struct{}{}
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id, _, err := g.Next("k")
				if err != nil {
					t.Errorf("next: %v", err)
					return
				}
				mu.Lock()
				if _, dup := seen[id]; dup {
					t.Errorf("duplicate id %s", id)
				}
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}
