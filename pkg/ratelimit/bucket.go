// Package ratelimit implements the per-identity sliding-window token
// buckets spec.md §4.F requires: 10 player actions/sec, 5
// deposit-verifications/min, 2 heartbeats/sec, and the 60s withdrawal
// cooldown (modeled as a one-slot bucket). Generalizes the teacher's
// ad hoc lastAction time.Time cooldown fields (pkg/poker/table.go) into
// one reusable type.
package ratelimit

import (
	"sync"
	"time"
)

// Bucket is a sliding-window token bucket: at most Limit events may
// occur within Window, counted from the oldest event still inside the
// window. "Window resets on idle gap" (spec.md §4.F) falls out
// naturally: once every timestamp in the ring ages out, the next call
// sees an empty window.
type Bucket struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	events map[string][]time.Time
}

// NewBucket constructs a bucket allowing limit events per window, per
// identity key.
func NewBucket(limit int, window time.Duration) *Bucket {
	return &Bucket{
		limit:  limit,
		window: window,
		events: make(map[string][]time.Time),
	}
}

// Allow reports whether an event for key is permitted at now, and if so
// records it. Expired timestamps are pruned on every call so idle keys
// do not leak memory indefinitely (callers may additionally call
// Forget for seats that leave the table).
func (b *Bucket) Allow(key string, now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	cutoff := now.Add(-b.window)
	kept := b.events[key][:0]
	for _, t := range b.events[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= b.limit {
		b.events[key] = kept
		return false
	}
	kept = append(kept, now)
	b.events[key] = kept
	return true
}

// Forget drops all recorded events for key, e.g. when a player leaves.
func (b *Bucket) Forget(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.events, key)
}

// Export snapshots the bucket's per-identity event timestamps for
// pre-upgrade serialization (spec.md §4.G lists "rate-limit buckets"
// among the persisted fields).
func (b *Bucket) Export() map[string][]time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string][]time.Time, len(b.events))
	for k, v := range b.events {
		out[k] = append([]time.Time(nil), v...)
	}
	return out
}

// Restore replaces the bucket's event timestamps with a previously
// exported snapshot.
func (b *Bucket) Restore(events map[string][]time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = make(map[string][]time.Time, len(events))
	for k, v := range events {
		b.events[k] = append([]time.Time(nil), v...)
	}
}

// Cooldown is a single-slot "at most one success every window" limiter,
// used for the 60s withdrawal cooldown which is keyed by last success
// rather than a rolling count.
type Cooldown struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
}

func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{window: window, last: make(map[string]time.Time)}
}

// Active reports whether key is still inside its cooldown window as of
// now.
func (c *Cooldown) Active(key string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	last, ok := c.last[key]
	if !ok {
		return false
	}
	return now.Sub(last) < c.window
}

// Record marks key as having just succeeded at now.
func (c *Cooldown) Record(key string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[key] = now
}
