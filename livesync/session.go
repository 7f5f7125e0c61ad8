// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package livesync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/vote-tally/feed"
	"github.com/danielhkuo/vote-tally/metrics"
	"github.com/danielhkuo/vote-tally/models"
	"github.com/danielhkuo/vote-tally/store"
)

const (
	DefaultRefreshInterval = 30 * time.Second
	DefaultTick            = time.Second
)

// ErrStarted is returned by Start on a session that was already started.
var ErrStarted = errors.New("session already started")

// View selects which ordering a session keeps its list in.
type View string

const (
	Public View = "public"
	Admin  View = "admin"
)

// Order maps the view to the store ordering.
func (v View) Order() store.Order {
	if v == Admin {
		return store.OrderCategoryVotes
	}
	return store.OrderVotes
}

// State is the session lifecycle. A session never goes back to Loading.
type State string

const (
	Loading State = "loading"
	Synced  State = "synced"
)

// Lister is the read side of the record store.
type Lister interface {
	List(ctx context.Context, order store.Order) ([]models.Candidate, error)
}

// Snapshot is a copy of a session's state at one point in time.
type Snapshot struct {
	SessionID      string             `json:"session_id"`
	View           View               `json:"view"`
	State          State              `json:"state"`
	Candidates     []models.Candidate `json:"candidates"`
	Countdown      int                `json:"countdown"`
	LastUpdated    time.Time          `json:"last_updated"`
	AutoRefreshing bool               `json:"auto_refreshing"`
}

// Option configures a Session.
type Option func(*Session)

// WithRefreshInterval sets the period of the full refetch.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.refreshEvery = d
		}
	}
}

// WithTick sets the countdown step.
func WithTick(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.tick = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session holds one client's view of the candidate list and keeps it in
// sync from two triggers: change notifications (Reconcile) and a periodic
// full refetch (ReconcileAll). Sessions share nothing with each other.
type Session struct {
	id     string
	view   View
	lister Lister
	feed   feed.Subscriber

	refreshEvery time.Duration
	tick         time.Duration
	metrics      *metrics.Metrics
	now          func() time.Time

	mu             sync.Mutex
	state          State
	candidates     []models.Candidate
	countdown      int
	lastUpdated    time.Time
	autoRefreshing bool
	onChange       []func(Snapshot)
	onCountdown    []func(int)

	started   bool
	closed    bool
	cancel    context.CancelFunc
	sub       *feed.Subscription
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession creates a session in the Loading state. Nothing runs until Start.
func NewSession(view View, lister Lister, sub feed.Subscriber, opts ...Option) *Session {
	s := &Session{
		id:           uuid.NewString(),
		view:         view,
		lister:       lister,
		feed:         sub,
		refreshEvery: DefaultRefreshInterval,
		tick:         DefaultTick,
		now:          time.Now,
		state:        Loading,
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.countdown = s.resetValue()
	return s
}

func (s *Session) ID() string { return s.id }
func (s *Session) View() View { return s.view }

// resetValue is the countdown start, in ticks.
func (s *Session) resetValue() int {
	n := int(s.refreshEvery / s.tick)
	if n < 1 {
		return 1
	}
	return n
}

// OnChange registers fn to receive a snapshot after every change to the
// candidate list or state. Callbacks run on the goroutine that made the
// change and must not block.
func (s *Session) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

// OnCountdown registers fn to receive the countdown after every tick.
func (s *Session) OnCountdown(fn func(int)) {
	s.mu.Lock()
	s.onCountdown = append(s.onCountdown, fn)
	s.mu.Unlock()
}

// Start performs the first fetch, subscribes to candidate notifications
// and starts both timers. If the first fetch fails the session stays
// Loading and the error is returned; the caller should Close it.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrStarted
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.metrics.SessionOpened(string(s.view))

	if err := s.reconcileAll(ctx, "initial"); err != nil {
		return err
	}

	sub, err := s.feed.Subscribe(ctx, feed.Filter{Table: feed.TableCandidates, Event: feed.All})
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		// Close already ran and closed done; nothing else may.
		s.mu.Unlock()
		sub.Close()
		return context.Canceled
	}
	s.sub = sub
	go s.run(ctx, sub)
	s.mu.Unlock()
	return nil
}

func (s *Session) run(ctx context.Context, sub *feed.Subscription) {
	defer close(s.done)

	refresh := time.NewTicker(s.refreshEvery)
	defer refresh.Stop()
	countdown := time.NewTicker(s.tick)
	defer countdown.Stop()

	// indicator lowers AutoRefreshing one tick after a periodic refetch.
	var indicator <-chan time.Time

	changes := sub.C
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				if ctx.Err() != nil {
					return
				}
				// Feed is gone; the periodic refetch keeps the view correct.
				slog.Warn("change feed closed, falling back to periodic refresh", "session_id", s.id)
				changes = nil
				continue
			}
			s.Reconcile(c)
		case <-refresh.C:
			s.mu.Lock()
			s.autoRefreshing = true
			s.mu.Unlock()
			if err := s.reconcileAll(ctx, "auto"); err != nil && ctx.Err() == nil {
				slog.Warn("periodic refresh failed", "session_id", s.id, "error", err)
			}
			indicator = time.After(s.tick)
		case <-indicator:
			indicator = nil
			s.setAutoRefreshing(false)
		case <-countdown.C:
			s.tickCountdown()
		}
	}
}

// Reconcile applies one change notification to local state. An UPDATE
// merges votes, and the description when present, into the matching row
// in place and never creates one. An INSERT appends unless the id is
// already present. A DELETE removes by id. Every notification resets the
// countdown.
func (s *Session) Reconcile(c feed.Change) {
	if c.Table != "" && c.Table != feed.TableCandidates {
		return
	}

	s.mu.Lock()
	changed := false
	switch c.Type {
	case feed.Update:
		if c.New != nil {
			if i := s.indexOf(c.New.ID); i >= 0 {
				s.candidates[i].Votes = c.New.Votes
				if c.New.Description != nil {
					s.candidates[i].Description = c.New.Description
				}
				changed = true
			}
		}
	case feed.Insert:
		if c.New != nil && s.indexOf(c.New.ID) < 0 {
			s.candidates = append(s.candidates, *c.New)
			changed = true
		}
	case feed.Delete:
		if i := s.indexOf(c.RowID()); i >= 0 {
			s.candidates = append(s.candidates[:i], s.candidates[i+1:]...)
			changed = true
		}
	}
	if changed {
		s.lastUpdated = s.now()
	}
	s.countdown = s.resetValue()
	snap, listeners := s.snapshotLocked(), s.onChange
	s.mu.Unlock()

	s.metrics.IncNotification(string(c.Type))
	if changed {
		notify(listeners, snap)
	}
}

func (s *Session) indexOf(id int64) int {
	for i := range s.candidates {
		if s.candidates[i].ID == id {
			return i
		}
	}
	return -1
}

// ReconcileAll replaces local state with a full fetch from the store and
// resets the countdown. On failure local state is left as it was.
func (s *Session) ReconcileAll(ctx context.Context) error {
	return s.reconcileAll(ctx, "reconcile")
}

// Refresh is the manual refresh action.
func (s *Session) Refresh(ctx context.Context) error {
	return s.reconcileAll(ctx, "manual")
}

func (s *Session) reconcileAll(ctx context.Context, trigger string) error {
	candidates, err := s.lister.List(ctx, s.view.Order())
	if err != nil {
		return err
	}
	s.metrics.IncRefresh(trigger)

	s.mu.Lock()
	s.candidates = candidates
	s.state = Synced
	s.countdown = s.resetValue()
	s.lastUpdated = s.now()
	snap, listeners := s.snapshotLocked(), s.onChange
	s.mu.Unlock()

	notify(listeners, snap)
	return nil
}

func (s *Session) setAutoRefreshing(on bool) {
	s.mu.Lock()
	if s.autoRefreshing == on {
		s.mu.Unlock()
		return
	}
	s.autoRefreshing = on
	snap, listeners := s.snapshotLocked(), s.onChange
	s.mu.Unlock()

	notify(listeners, snap)
}

// tickCountdown steps the countdown down by one, wrapping from 1 back to
// the full interval.
func (s *Session) tickCountdown() {
	s.mu.Lock()
	if s.countdown <= 1 {
		s.countdown = s.resetValue()
	} else {
		s.countdown--
	}
	n, listeners := s.countdown, s.onCountdown
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(n)
	}
}

// Countdown returns the ticks left until the next automatic refresh.
func (s *Session) Countdown() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countdown
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	candidates := make([]models.Candidate, len(s.candidates))
	copy(candidates, s.candidates)
	return Snapshot{
		SessionID:      s.id,
		View:           s.view,
		State:          s.state,
		Candidates:     candidates,
		Countdown:      s.countdown,
		LastUpdated:    s.lastUpdated,
		AutoRefreshing: s.autoRefreshing,
	}
}

func notify(listeners []func(Snapshot), snap Snapshot) {
	for _, fn := range listeners {
		fn(snap)
	}
}

// Close stops both timers and the subscription together. Safe to call
// more than once and on a session that never started.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.autoRefreshing = false
		cancel, sub, started := s.cancel, s.sub, s.started
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if sub != nil {
			sub.Close()
			<-s.done
		} else {
			close(s.done)
		}
		if started {
			s.metrics.SessionClosed(string(s.view))
		}
	})
}

// Done is closed once the session is closed and its loop has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
