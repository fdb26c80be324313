package broker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNotifyWakesAllRegistered(t *testing.T) {
	r := newWaiterRegistry()
	ws := []*waiter{r.register("k", time.Second), r.register("k", time.Second), r.register("k", time.Second)}
	if n := r.notify("k"); n != 3 {
		t.Fatalf("notify woke %d, want 3", n)
	}

	var wg sync.WaitGroup
	for _, w := range ws {
		wg.Add(1)
		go func(w *waiter) {
			defer wg.Done()
			woken, err := w.wait(context.Background())
			if err != nil || !woken {
				t.Errorf("expected wake, got woken=%v err=%v", woken, err)
			}
		}(w)
	}
	wg.Wait()
	if p := r.pending(); p != 0 {
		t.Fatalf("registry not empty after notify: %d", p)
	}
}

func TestNotifyIsOneShot(t *testing.T) {
	r := newWaiterRegistry()
	early := r.register("k", time.Second)
	r.notify("k")
	late := r.register("k", 50*time.Millisecond)

	if woken, _ := early.wait(context.Background()); !woken {
		t.Fatalf("early waiter should be woken")
	}
	if woken, _ := late.wait(context.Background()); woken {
		t.Fatalf("waiter registered after notify must not be woken by it")
	}
	if p := r.pending(); p != 0 {
		t.Fatalf("timed out waiter leaked: %d pending", p)
	}
}

func TestNotifyOtherKeyDoesNotWake(t *testing.T) {
	r := newWaiterRegistry()
	w := r.register("a", 50*time.Millisecond)
	if n := r.notify("b"); n != 0 {
		t.Fatalf("notify on unknown key woke %d", n)
	}
	if woken, _ := w.wait(context.Background()); woken {
		t.Fatalf("waiter on a woken by notify on b")
	}
}

func TestWaiterTimeoutReleases(t *testing.T) {
	r := newWaiterRegistry()
	w := r.register("k", 20*time.Millisecond)
	start := time.Now()
	woken, err := w.wait(context.Background())
	if woken || err != nil {
		t.Fatalf("expected timeout, got woken=%v err=%v", woken, err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatalf("returned before the timeout")
	}
	if p := r.pending(); p != 0 {
		t.Fatalf("pending=%d after timeout", p)
	}
	// a late notify finds nothing to do
	if n := r.notify("k"); n != 0 {
		t.Fatalf("timed out waiter resolved twice")
	}
}

func TestWaiterContextCancelReleases(t *testing.T) {
	r := newWaiterRegistry()
	keep := r.register("k", time.Second)
	w := r.register("k", time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := w.wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if p := r.pending(); p != 1 {
		t.Fatalf("pending=%d, want only the other waiter", p)
	}
	w.release()
	if p := r.pending(); p != 1 {
		t.Fatalf("double release changed pending to %d", p)
	}
	keep.release()
	if p := r.pending(); p != 0 {
		t.Fatalf("pending=%d after releasing all", p)
	}
}
