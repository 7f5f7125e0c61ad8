// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	VotesApplied         *prometheus.CounterVec
	MutationsDebounced   prometheus.Counter
	AuditFailures        prometheus.Counter
	StoreErrors          *prometheus.CounterVec
	CandidatesAdded      prometheus.Counter
	CandidatesRemoved    prometheus.Counter
	LiveSessions         *prometheus.GaugeVec
	Refreshes            *prometheus.CounterVec
	NotificationsApplied *prometheus.CounterVec
}

// New creates and registers all metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		VotesApplied: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_votes_applied_total",
			Help: "Accepted vote mutations by change type",
		}, []string{"change_type"}),
		MutationsDebounced: f.NewCounter(prometheus.CounterOpts{
			Name: "tally_mutations_debounced_total",
			Help: "Vote mutations dropped by the per-candidate cooldown",
		}),
		AuditFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "tally_audit_failures_total",
			Help: "Vote change audit entries that could not be written",
		}),
		StoreErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_store_errors_total",
			Help: "Record store failures by kind (read or write)",
		}, []string{"kind"}),
		CandidatesAdded: f.NewCounter(prometheus.CounterOpts{
			Name: "tally_candidates_added_total",
			Help: "Candidates added through the roster",
		}),
		CandidatesRemoved: f.NewCounter(prometheus.CounterOpts{
			Name: "tally_candidates_removed_total",
			Help: "Candidates removed through the roster",
		}),
		LiveSessions: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tally_live_sessions",
			Help: "Open live sessions by view",
		}, []string{"view"}),
		Refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_refreshes_total",
			Help: "Full refetches by trigger",
		}, []string{"trigger"}),
		NotificationsApplied: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_notifications_applied_total",
			Help: "Change notifications reconciled into live sessions",
		}, []string{"type"}),
	}
}

func (m *Metrics) IncVotesApplied(changeType string) {
	if m == nil {
		return
	}
	m.VotesApplied.WithLabelValues(changeType).Inc()
}

func (m *Metrics) IncDebounced() {
	if m == nil {
		return
	}
	m.MutationsDebounced.Inc()
}

func (m *Metrics) IncAuditFailure() {
	if m == nil {
		return
	}
	m.AuditFailures.Inc()
}

// IncStoreError records a failure; kind is "read" or "write".
func (m *Metrics) IncStoreError(kind string) {
	if m == nil {
		return
	}
	m.StoreErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncCandidatesAdded() {
	if m == nil {
		return
	}
	m.CandidatesAdded.Inc()
}

func (m *Metrics) IncCandidatesRemoved() {
	if m == nil {
		return
	}
	m.CandidatesRemoved.Inc()
}

func (m *Metrics) SessionOpened(view string) {
	if m == nil {
		return
	}
	m.LiveSessions.WithLabelValues(view).Inc()
}

func (m *Metrics) SessionClosed(view string) {
	if m == nil {
		return
	}
	m.LiveSessions.WithLabelValues(view).Dec()
}

func (m *Metrics) IncRefresh(trigger string) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(trigger).Inc()
}

func (m *Metrics) IncNotification(eventType string) {
	if m == nil {
		return
	}
	m.NotificationsApplied.WithLabelValues(eventType).Inc()
}
