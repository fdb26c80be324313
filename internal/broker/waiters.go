package broker

import (
	"context"
	"sync"
	"time"
)

// generation is the set of waiters registered for a key since its last
// notify. Closing ch wakes all of them at once.
type generation struct {
	ch      chan struct{}
	pending int
}

// waiterRegistry tracks parked long-poll calls per key.
type waiterRegistry struct {
	mu   sync.Mutex
	gens map[string]*generation
}

func newWaiterRegistry() *waiterRegistry {
	return &waiterRegistry{gens: make(map[string]*generation)}
}

// waiter is one parked call. It resolves once: on notify, on its timer, or
// when the caller's context ends.
type waiter struct {
	reg   *waiterRegistry
	key   string
	gen   *generation
	timer *time.Timer
	once  sync.Once
}

// register parks a new waiter on key. The timeout runs from this moment.
func (r *waiterRegistry) register(key string, timeout time.Duration) *waiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := r.gens[key]
	if g == nil {
		g = &generation{ch: make(chan struct{})}
		r.gens[key] = g
	}
	g.pending++
	return &waiter{reg: r, key: key, gen: g, timer: time.NewTimer(timeout)}
}

// notify wakes every waiter currently registered on key and empties the
// key's entry. Waiters registered afterwards join a fresh generation.
func (r *waiterRegistry) notify(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := r.gens[key]
	if g == nil {
		return 0
	}
	delete(r.gens, key)
	close(g.ch)
	return g.pending
}

// pending returns the number of parked waiters across all keys.
func (r *waiterRegistry) pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, g := range r.gens {
		n += g.pending
	}
	return n
}

// wait blocks until the waiter is notified (true), times out (false), or ctx
// ends (false, ctx.Err()). The waiter is released on every path.
func (w *waiter) wait(ctx context.Context) (bool, error) {
	defer w.release()
	select {
	case <-w.gen.ch:
		return true, nil
	case <-w.timer.C:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// release stops the timer and, unless the generation was already notified,
// drops this waiter from it. Safe to call more than once.
func (w *waiter) release() {
	w.once.Do(func() {
		w.timer.Stop()
		r := w.reg
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.gens[w.key] != w.gen {
			return
		}
		w.gen.pending--
		if w.gen.pending == 0 {
			delete(r.gens, w.key)
		}
	})
}
