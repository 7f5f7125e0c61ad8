// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package feed

import (
	"context"
	"sync"
	"time"

	"github.com/danielhkuo/vote-tally/models"
)

// TableCandidates is the only table that emits change notifications.
const TableCandidates = "candidates"

// EventType is the kind of row change carried by a notification.
type EventType string

const (
	Insert EventType = "INSERT"
	Update EventType = "UPDATE"
	Delete EventType = "DELETE"
	All    EventType = "*"
)

// subscriberBuffer bounds each subscriber's backlog. Overflow is dropped;
// the periodic full refresh recovers it.
const subscriberBuffer = 64

// Change is one row-level notification. New is set for INSERT and UPDATE,
// Old (at least the id) for DELETE.
type Change struct {
	Table string            `json:"table"`
	Type  EventType         `json:"type"`
	New   *models.Candidate `json:"new,omitempty"`
	Old   *models.Candidate `json:"old,omitempty"`
	At    time.Time         `json:"at"`
}

// RowID returns the id of the changed row.
func (c Change) RowID() int64 {
	if c.New != nil {
		return c.New.ID
	}
	if c.Old != nil {
		return c.Old.ID
	}
	return 0
}

// Filter scopes a subscription by table name and event type.
type Filter struct {
	Table string
	Event EventType
}

// Match reports whether the change passes the filter. An empty event
// matches everything, like All.
func (f Filter) Match(c Change) bool {
	if f.Table != "" && f.Table != c.Table {
		return false
	}
	return f.Event == "" || f.Event == All || f.Event == c.Type
}

// Publisher emits change notifications.
type Publisher interface {
	Publish(ctx context.Context, c Change) error
}

// Subscriber hands out filtered notification streams.
type Subscriber interface {
	Subscribe(ctx context.Context, f Filter) (*Subscription, error)
}

// Broker is both ends of the change feed.
type Broker interface {
	Publisher
	Subscriber
	Close() error
}

// Subscription delivers matching changes on C until Close. C is closed
// once the subscription is torn down.
type Subscription struct {
	C <-chan Change

	filter Filter
	once   sync.Once
	stop   func()
}

// Close tears the subscription down. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(s.stop)
}
