package runtime

import (
	"context"
	"errors"
	"sync"

	"github.com/rzbill/pollbus/internal/broker"
	cfgpkg "github.com/rzbill/pollbus/internal/config"
	logpkg "github.com/rzbill/pollbus/pkg/log"
)

// ErrClosed is returned by CheckHealth once the runtime is closed.
var ErrClosed = errors.New("runtime closed")

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
	Logger logpkg.Logger
}

// Runtime owns the broker and its background sweeper.
type Runtime struct {
	config  cfgpkg.Config
	logger  logpkg.Logger
	broker  *broker.Broker
	sweeper *broker.Sweeper

	mu     sync.Mutex
	closed bool
}

// Open validates the configuration, builds the broker and starts sweeping.
func Open(opts Options) (*Runtime, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithOutput(logpkg.NullOutput{}))
	}
	b := broker.New(opts.Config.BrokerOptions(), logger)
	rt := &Runtime{config: opts.Config, logger: logger.WithComponent("runtime"), broker: b, sweeper: b.NewSweeper()}
	rt.sweeper.Start(context.Background())
	rt.logger.Info("broker ready",
		logpkg.Dur("retention", opts.Config.Broker.RetentionWindow),
		logpkg.Dur("sweep_interval", opts.Config.Broker.SweepInterval),
		logpkg.Dur("poll_timeout", opts.Config.Broker.PollTimeout),
	)
	return rt, nil
}

// Close stops the sweeper. Parked polls still finish on their own timeout.
func (r *Runtime) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()
	r.sweeper.Stop()
	return nil
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	return nil
}

// Broker returns the runtime's broker.
func (r *Runtime) Broker() *broker.Broker { return r.broker }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
