package broker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSweeperPrunesOnInterval(t *testing.T) {
	clock := newTestClock()
	b := New(Options{Now: clock.Now, SweepInterval: 10 * time.Millisecond}, nil)
	_, err := b.Push(context.Background(), "k", 1)
	require.NoError(t, err)

	sw := b.NewSweeper()
	sw.Start(context.Background())
	defer sw.Stop()

	require.Equal(t, 1, b.Stats().Events)
	clock.Advance(DefaultRetentionWindow)
	require.Eventually(t, func() bool { return b.Stats().Events == 0 }, time.Second, 5*time.Millisecond)
	require.Zero(t, b.Stats().Keys)
}

func TestSweeperStartStopIdempotent(t *testing.T) {
	b := New(Options{SweepInterval: time.Millisecond}, nil)
	sw := b.NewSweeper()
	sw.Stop()
	sw.Start(context.Background())
	sw.Start(context.Background())
	sw.Stop()
	sw.Stop()

	// restartable after stop
	sw.Start(context.Background())
	sw.Stop()
}

func TestSweeperStopsWithParentContext(t *testing.T) {
	b := New(Options{SweepInterval: time.Millisecond}, nil)
	sw := b.NewSweeper()
	ctx, cancel := context.WithCancel(context.Background())
	sw.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		sw.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("stop hung after parent cancel")
	}
}
