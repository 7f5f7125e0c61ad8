// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncVotesApplied("increment")
	m.IncVotesApplied("increment")
	m.IncDebounced()
	m.IncStoreError("read")
	m.SessionOpened("public")
	m.SessionOpened("public")
	m.SessionClosed("public")

	assert.Equal(t, 2.0, promtest.ToFloat64(m.VotesApplied.WithLabelValues("increment")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.MutationsDebounced))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.StoreErrors.WithLabelValues("read")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.LiveSessions.WithLabelValues("public")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncVotesApplied("custom")
		m.IncDebounced()
		m.IncAuditFailure()
		m.IncStoreError("write")
		m.IncCandidatesAdded()
		m.IncCandidatesRemoved()
		m.SessionOpened("admin")
		m.SessionClosed("admin")
		m.IncRefresh("timer")
		m.IncNotification("UPDATE")
	})
}
