package controllers

import (
	"sync"
	"sync/atomic"
	"testing"

	cfgpkg "github.com/rzbill/pollbus/internal/config"
	"github.com/stretchr/testify/require"
)

func TestPushLimiterDisabled(t *testing.T) {
	require.Nil(t, newPushLimiter(cfgpkg.RateLimitConfig{}))
}

func TestPushLimiterConcurrentFirstRequests(t *testing.T) {
	p := newPushLimiter(cfgpkg.RateLimitConfig{PushPerSecond: 0.001, PushBurst: 1})
	defer p.stop()

	var allowed atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if p.reserve("203.0.113.7") == 0 {
				allowed.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()
	require.EqualValues(t, 1, allowed.Load())
	require.Positive(t, p.reserve("203.0.113.7"))
	require.Zero(t, p.reserve("203.0.113.8"))
}
