package broker

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

type consumedKey struct {
	key   string
	group string
	id    string
}

// consumptionTracker records which event ids each (key, group) has received.
// Records expire after ttl, which callers set longer than the time an event
// can remain in the store, so an expired record can never guard a live event.
type consumptionTracker struct {
	cache *ttlcache.Cache[consumedKey, struct{}]
}

func newConsumptionTracker(ttl time.Duration) *consumptionTracker {
	cache := ttlcache.New[consumedKey, struct{}](
		ttlcache.WithTTL[consumedKey, struct{}](ttl),
		// a delivered id must expire on schedule no matter how often it is checked
		ttlcache.WithDisableTouchOnHit[consumedKey, struct{}](),
	)
	return &consumptionTracker{cache: cache}
}

// unconsumed returns the candidates not yet delivered to group, in order.
func (t *consumptionTracker) unconsumed(key, group string, candidates []Event) []Event {
	var out []Event
	for _, ev := range candidates {
		if !t.cache.Has(consumedKey{key: key, group: group, id: ev.ID}) {
			out = append(out, ev)
		}
	}
	return out
}

// markConsumed records evs as delivered to group. Marking twice is harmless.
func (t *consumptionTracker) markConsumed(key, group string, evs []Event) {
	for _, ev := range evs {
		t.cache.Set(consumedKey{key: key, group: group, id: ev.ID}, struct{}{}, ttlcache.DefaultTTL)
	}
}

func (t *consumptionTracker) deleteExpired() { t.cache.DeleteExpired() }

func (t *consumptionTracker) len() int { return t.cache.Len() }
