// Package transports provides pluggable transport implementations for the CLI.
package transports

import (
	"context"
	"time"
)

// Event is an event as returned by the broker.
type Event struct {
	ID        string    `json:"id"`
	Data      any       `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

// PushResult acknowledges an accepted push.
type PushResult struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// PollRequest describes one long-poll.
type PollRequest struct {
	Key     string
	Group   string
	Filter  string
	Timeout time.Duration
}

// Stats mirrors the broker's counters.
type Stats struct {
	Keys            int `json:"keys"`
	Events          int `json:"events"`
	Waiters         int `json:"waiters"`
	ConsumedRecords int `json:"consumed_records"`
}

// EventsTransport abstracts the transport used by the CLI.
type EventsTransport interface {
	Push(ctx context.Context, key string, data any) (PushResult, error)
	Poll(ctx context.Context, req PollRequest) ([]Event, error)
	Stats(ctx context.Context) (Stats, error)
}
