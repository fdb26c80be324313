package broker

import (
	"context"
	"sync"
	"time"

	logpkg "github.com/rzbill/pollbus/pkg/log"
)

// Sweeper runs Broker.Sweep on a fixed interval until stopped.
type Sweeper struct {
	b        *Broker
	interval time.Duration
	logger   logpkg.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweeper returns a stopped Sweeper using the broker's sweep interval.
func (b *Broker) NewSweeper() *Sweeper {
	return &Sweeper{b: b, interval: b.opts.SweepInterval, logger: b.logger.WithComponent("sweeper")}
}

// Start launches the sweep loop. Calling Start on a running Sweeper is a
// no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
}

// Stop ends the loop and waits for it to exit.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if done == nil {
		return
	}
	cancel()
	<-done
}

func (s *Sweeper) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			if n := s.b.Sweep(); n > 0 {
				s.logger.Info("pruned expired events",
					logpkg.Int("removed", n),
					logpkg.Dur("took", time.Since(start)),
				)
			}
		}
	}
}
