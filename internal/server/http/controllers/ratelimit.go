package controllers

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
	cfgpkg "github.com/rzbill/pollbus/internal/config"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an idle client's limiter is kept.
const limiterIdleTTL = time.Minute

// pushLimiter rate-limits pushes per client address.
type pushLimiter struct {
	limit    rate.Limit
	burst    int
	limiters *ttlcache.Cache[string, *rate.Limiter]
}

// newPushLimiter returns nil when limiting is disabled.
func newPushLimiter(cfg cfgpkg.RateLimitConfig) *pushLimiter {
	if cfg.PushPerSecond <= 0 {
		return nil
	}
	cache := ttlcache.New[string, *rate.Limiter](
		ttlcache.WithTTL[string, *rate.Limiter](limiterIdleTTL),
	)
	go cache.Start()
	return &pushLimiter{limit: rate.Limit(cfg.PushPerSecond), burst: cfg.PushBurst, limiters: cache}
}

// reserve takes a token for addr. If none is available it returns the delay
// until one is, and consumes nothing.
func (p *pushLimiter) reserve(addr string) time.Duration {
	item, _ := p.limiters.GetOrSet(addr, rate.NewLimiter(p.limit, p.burst))
	res := item.Value().Reserve()
	if delay := res.Delay(); delay > 0 {
		res.Cancel()
		return delay
	}
	return 0
}

func (p *pushLimiter) stop() { p.limiters.Stop() }
