package broker

import (
	"errors"
	"time"
)

// Default timings.
const (
	DefaultRetentionWindow = 120 * time.Second
	DefaultSweepInterval   = 10 * time.Second
	DefaultPollTimeout     = 30 * time.Second
)

// ErrInvalidArgument is returned for requests the broker refuses outright.
var ErrInvalidArgument = errors.New("invalid argument")

// Event is an immutable record appended to a key.
type Event struct {
	ID        string    `json:"id"`
	Data      any       `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

// expired reports whether e is at or beyond the retention window at now.
func (e Event) expired(now time.Time, retention time.Duration) bool {
	return now.Sub(e.CreatedAt) >= retention
}
