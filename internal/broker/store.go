package broker

import (
	"slices"
	"sync"
	"time"

	"github.com/rzbill/pollbus/pkg/id"
)

// eventStore keeps, per key, events in append (and therefore time) order.
type eventStore struct {
	mu     sync.RWMutex
	topics map[string][]Event
	ids    *id.Generator
}

func newEventStore(ids *id.Generator) *eventStore {
	return &eventStore{topics: make(map[string][]Event), ids: ids}
}

// append stamps a new event and adds it to key's sequence. The id is minted
// under the write lock so createdAt never decreases along a sequence.
func (s *eventStore) append(key string, data any) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eid, createdAt, err := s.ids.Next(key)
	if err != nil {
		return Event{}, err
	}
	ev := Event{ID: eid, Data: data, CreatedAt: createdAt}
	s.topics[key] = append(s.topics[key], ev)
	return ev, nil
}

// snapshot returns key's current sequence without creating state. The result
// is capacity-capped so appends by the caller cannot reach the store.
func (s *eventStore) snapshot(key string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	evs := s.topics[key]
	return evs[:len(evs):len(evs)]
}

// pruneExpired drops events older than retention and keys left empty.
// Retained tails are copied into fresh slices, so a snapshot taken before the
// prune keeps seeing the whole pre-prune sequence.
func (s *eventStore) pruneExpired(now time.Time, retention time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, evs := range s.topics {
		// sequences are time-ordered: expired events form a prefix
		cut, _ := slices.BinarySearchFunc(evs, now, func(e Event, t time.Time) int {
			if e.expired(t, retention) {
				return -1
			}
			return 1
		})
		if cut == 0 {
			continue
		}
		removed += cut
		if cut == len(evs) {
			delete(s.topics, key)
			continue
		}
		s.topics[key] = slices.Clone(evs[cut:])
	}
	return removed
}

// counts returns the number of keys and retained events.
func (s *eventStore) counts() (keys, events int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, evs := range s.topics {
		events += len(evs)
	}
	return len(s.topics), events
}
