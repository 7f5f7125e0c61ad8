// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrClosed is returned by a broker after Close.
var ErrClosed = errors.New("feed: broker closed")

// MemoryBroker fans notifications out to subscribers in the same process.
// It backs tests and embedded use; the server always runs RedisBroker.
type MemoryBroker struct {
	mu     sync.Mutex
	subs   map[int64]*memorySub
	nextID int64
	closed bool
}

type memorySub struct {
	ch     chan Change
	filter Filter
}

// NewMemoryBroker creates an empty in-process broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[int64]*memorySub, 16)}
}

// Publish delivers c to every matching subscriber without blocking.
func (b *MemoryBroker) Publish(ctx context.Context, c Change) error {
	if c.At.IsZero() {
		c.At = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.deliver(c)
	return nil
}

// deliver must be called with b.mu held.
func (b *MemoryBroker) deliver(c Change) {
	for id, s := range b.subs {
		if !s.filter.Match(c) {
			continue
		}
		select {
		case s.ch <- c:
		default:
			slog.Warn("dropping change notification, subscriber backlog full",
				"subscription", id, "type", c.Type, "row_id", c.RowID())
		}
	}
}

// Subscribe registers a new subscriber.
func (b *MemoryBroker) Subscribe(ctx context.Context, f Filter) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	b.nextID++
	id := b.nextID
	s := &memorySub{ch: make(chan Change, subscriberBuffer), filter: f}
	b.subs[id] = s

	return &Subscription{
		C:      s.ch,
		filter: f,
		stop:   func() { b.remove(id) },
	}, nil
}

func (b *MemoryBroker) remove(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(s.ch)
	}
}

// Subscribers returns the number of live subscriptions.
func (b *MemoryBroker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close ends every subscription and rejects further use.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for id, s := range b.subs {
		delete(b.subs, id)
		close(s.ch)
	}
	return nil
}
