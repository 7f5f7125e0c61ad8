// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"sync"
	"time"
)

// DefaultCooldown absorbs accidental double clicks on the same candidate.
const DefaultCooldown = 500 * time.Millisecond

// Debouncer is a per-candidate cooldown. It is local to one admin session
// and is not a lock: requests for different candidates never wait on each
// other, and other sessions are not affected.
type Debouncer struct {
	mu     sync.Mutex
	last   map[int64]time.Time
	window time.Duration
	now    func() time.Time
}

// NewDebouncer creates a debouncer with the given window and clock.
func NewDebouncer(window time.Duration, now func() time.Time) *Debouncer {
	if now == nil {
		now = time.Now
	}
	return &Debouncer{last: make(map[int64]time.Time), window: window, now: now}
}

// Allow reports whether a request for id may proceed, and if so records
// it as the latest accepted request.
func (d *Debouncer) Allow(id int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.last[id]; ok && now.Sub(last) < d.window {
		return false
	}
	d.last[id] = now
	return true
}

// Forget drops the cooldown entry for id.
func (d *Debouncer) Forget(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.last, id)
}
