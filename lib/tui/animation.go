// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import "time"

// ArrivalGlow is how long a newly queued ticket stays highlighted.
const ArrivalGlow = 5 * time.Second

// ArrivalTick is the redraw interval while any ticket is glowing.
const ArrivalTick = 250 * time.Millisecond

// ArrivalTracker remembers when each ticket first appeared so the
// board can highlight fresh arrivals. Not safe for concurrent use; the
// board owns it from its Update loop.
type ArrivalTracker struct {
	seen   map[int]time.Time
	primed bool
}

// NewArrivalTracker returns an empty tracker.
func NewArrivalTracker() *ArrivalTracker {
	return &ArrivalTracker{seen: make(map[int]time.Time)}
}

// Observe records the IDs present in a render. The first call only
// primes the tracker: tickets already queued at startup do not glow.
// IDs that have left the queue are forgotten.
func (tracker *ArrivalTracker) Observe(ids []int, now time.Time) {
	present := make(map[int]bool, len(ids))
	for _, id := range ids {
		present[id] = true
		if _, known := tracker.seen[id]; known {
			continue
		}
		if tracker.primed {
			tracker.seen[id] = now
		} else {
			tracker.seen[id] = time.Time{}
		}
	}
	for id := range tracker.seen {
		if !present[id] {
			delete(tracker.seen, id)
		}
	}
	tracker.primed = true
}

// Reset forgets everything, so the next Observe primes again.
func (tracker *ArrivalTracker) Reset() {
	tracker.seen = make(map[int]time.Time)
	tracker.primed = false
}

// Heat is 1.0 when a ticket has just arrived, falling linearly to 0.0
// over ArrivalGlow.
func (tracker *ArrivalTracker) Heat(id int, now time.Time) float64 {
	arrived, known := tracker.seen[id]
	if !known || arrived.IsZero() {
		return 0
	}
	elapsed := now.Sub(arrived)
	if elapsed >= ArrivalGlow || elapsed < 0 {
		return 0
	}
	return 1 - float64(elapsed)/float64(ArrivalGlow)
}

// Glowing reports whether any ticket still has heat, meaning the
// board should keep ticking.
func (tracker *ArrivalTracker) Glowing(now time.Time) bool {
	for id := range tracker.seen {
		if tracker.Heat(id, now) > 0 {
			return true
		}
	}
	return false
}
