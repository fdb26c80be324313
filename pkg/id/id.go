package id

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet is the character set of the random suffix.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// SuffixLength is the number of random characters per ID.
const SuffixLength = 8

// Generator produces unique event IDs per process.
type Generator struct {
	mu       sync.Mutex
	last     time.Time
	lastMs   int64
	sequence uint64
	now      func() time.Time
}

// NewGenerator creates a Generator reading the wall clock.
func NewGenerator() *Generator { return &Generator{now: time.Now} }

// NewGeneratorWithClock is NewGenerator with an injectable clock.
func NewGeneratorWithClock(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// Next returns a new ID for key along with its timestamp. Timestamps never
// decrease: if the clock goes backwards the last returned time is reused.
func (g *Generator) Next(key string) (string, time.Time, error) {
	suffix, err := nanoid.Generate(Alphabet, SuffixLength)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("id: %w", err)
	}

	g.mu.Lock()
	now := g.now()
	if now.Before(g.last) {
		now = g.last
	}
	g.last = now
	ms := now.UnixMilli()
	if ms == g.lastMs {
		g.sequence++
	} else {
		g.sequence = 0
	}
	g.lastMs = ms
	seq := g.sequence
	g.mu.Unlock()

	var b strings.Builder
	b.Grow(len(key) + 40)
	b.WriteString(key)
	b.WriteByte('-')
	b.WriteString(strconv.FormatInt(ms, 10))
	b.WriteByte('-')
	b.WriteString(strconv.FormatUint(seq, 10))
	b.WriteByte('-')
	b.WriteString(suffix)
	return b.String(), now, nil
}
