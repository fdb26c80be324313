package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rzbill/pollbus/pkg/id"
	logpkg "github.com/rzbill/pollbus/pkg/log"
)

// Options configures a Broker. Zero values take the defaults.
type Options struct {
	RetentionWindow time.Duration
	SweepInterval   time.Duration
	PollTimeout     time.Duration
	// Now is the clock used for ids, expiry and filters.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.RetentionWindow <= 0 {
		o.RetentionWindow = DefaultRetentionWindow
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = DefaultSweepInterval
	}
	if o.PollTimeout <= 0 {
		o.PollTimeout = DefaultPollTimeout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// PollOptions narrows a single Poll call.
type PollOptions struct {
	// Filter is an optional CEL expression; only matching events are
	// returned and marked consumed.
	Filter string
	// Timeout shortens the wait below the broker's poll timeout when > 0.
	Timeout time.Duration
}

// Stats is a point-in-time view of broker state.
type Stats struct {
	Keys            int `json:"keys"`
	Events          int `json:"events"`
	Waiters         int `json:"waiters"`
	ConsumedRecords int `json:"consumed_records"`
}

// Broker composes the event store, consumption tracker and waiter registry.
type Broker struct {
	// mu serializes claim (snapshot+filter+mark), waiter registration, push
	// and sweep against each other.
	mu      sync.Mutex
	store   *eventStore
	tracker *consumptionTracker
	waiters *waiterRegistry

	opts   Options
	logger logpkg.Logger
}

// New returns a Broker. A nil logger discards output.
func New(opts Options, logger logpkg.Logger) *Broker {
	opts = opts.withDefaults()
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	return &Broker{
		store: newEventStore(id.NewGeneratorWithClock(opts.Now)),
		// an event may outlive the window by up to one sweep interval
		tracker: newConsumptionTracker(opts.RetentionWindow + opts.SweepInterval),
		waiters: newWaiterRegistry(),
		opts:    opts,
		logger:  logger.WithComponent("broker"),
	}
}

// Options returns the effective options.
func (b *Broker) Options() Options { return b.opts }

// Push appends data to key and wakes every call parked on key. It fails with
// ErrInvalidArgument, leaving all state untouched, when key is empty.
func (b *Broker) Push(ctx context.Context, key string, data any) (Event, error) {
	if key == "" {
		return Event{}, fmt.Errorf("%w: key is required", ErrInvalidArgument)
	}
	b.mu.Lock()
	ev, err := b.store.append(key, data)
	if err != nil {
		b.mu.Unlock()
		return Event{}, err
	}
	woken := b.waiters.notify(key)
	b.mu.Unlock()

	b.logger.WithContext(ctx).Debug("event pushed",
		logpkg.Str("key", key),
		logpkg.Str("id", ev.ID),
		logpkg.Int("woken", woken),
	)
	return ev, nil
}

// BlockingGet returns events on key not yet delivered to group, waiting up to
// the poll timeout for one to arrive. An empty key or group yields an empty
// result immediately, as does a timeout.
func (b *Broker) BlockingGet(ctx context.Context, key, group string) ([]Event, error) {
	return b.Poll(ctx, key, group, PollOptions{})
}

// Poll is BlockingGet with per-call options. If ctx ends while parked, the
// wait is abandoned, nothing is claimed, and ctx.Err() is returned.
func (b *Broker) Poll(ctx context.Context, key, group string, opts PollOptions) ([]Event, error) {
	if key == "" || group == "" {
		return []Event{}, nil
	}
	filter, err := compileFilter(opts.Filter)
	if err != nil {
		return nil, err
	}
	timeout := b.opts.PollTimeout
	if opts.Timeout > 0 && opts.Timeout < timeout {
		timeout = opts.Timeout
	}
	logger := b.logger.WithContext(ctx).With(logpkg.Str("key", key), logpkg.Str("group", group))

	// CHECK1 and registration share the critical section; a push cannot land
	// between finding nothing and parking.
	b.mu.Lock()
	if evs := b.claimLocked(key, group, filter); len(evs) > 0 {
		b.mu.Unlock()
		logger.Debug("poll claimed", logpkg.Int("events", len(evs)))
		return evs, nil
	}
	w := b.waiters.register(key, timeout)
	b.mu.Unlock()

	woken, err := w.wait(ctx)
	if err != nil {
		logger.Debug("poll abandoned", logpkg.Err(err))
		return nil, err
	}

	b.mu.Lock()
	evs := b.claimLocked(key, group, filter)
	b.mu.Unlock()
	logger.Debug("poll resumed",
		logpkg.Bool("woken", woken),
		logpkg.Int("events", len(evs)),
	)
	if evs == nil {
		return []Event{}, nil
	}
	return evs, nil
}

// claimLocked selects live, unconsumed, matching events and marks them
// consumed for group. b.mu must be held.
func (b *Broker) claimLocked(key, group string, filter eventFilter) []Event {
	now := b.opts.Now()
	var live []Event
	for _, ev := range b.store.snapshot(key) {
		if ev.expired(now, b.opts.RetentionWindow) {
			continue
		}
		if filter.match(key, ev, now) {
			live = append(live, ev)
		}
	}
	evs := b.tracker.unconsumed(key, group, live)
	b.tracker.markConsumed(key, group, evs)
	return evs
}

// Sweep prunes expired events and consumption records once.
func (b *Broker) Sweep() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	removed := b.store.pruneExpired(b.opts.Now(), b.opts.RetentionWindow)
	b.tracker.deleteExpired()
	return removed
}

// Stats reports current sizes.
func (b *Broker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys, events := b.store.counts()
	return Stats{
		Keys:            keys,
		Events:          events,
		Waiters:         b.waiters.pending(),
		ConsumedRecords: b.tracker.len(),
	}
}
