// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/vote-tally/models"
)

func TestFilterMatch(t *testing.T) {
	update := Change{Table: TableCandidates, Type: Update}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter matches", Filter{}, true},
		{"wildcard event", Filter{Table: TableCandidates, Event: All}, true},
		{"exact event", Filter{Table: TableCandidates, Event: Update}, true},
		{"other event", Filter{Table: TableCandidates, Event: Insert}, false},
		{"other table", Filter{Table: "vote_changes", Event: All}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(update))
		})
	}
}

func TestRowID(t *testing.T) {
	assert.Equal(t, int64(3), Change{New: &models.Candidate{ID: 3}}.RowID())
	assert.Equal(t, int64(4), Change{Old: &models.Candidate{ID: 4}}.RowID())
	assert.Equal(t, int64(0), Change{}.RowID())
}

func TestDecodeChange(t *testing.T) {
	payload, err := encodeChange(Change{Table: TableCandidates, Type: Delete, Old: &models.Candidate{ID: 7}})
	require.NoError(t, err)

	c, err := decodeChange(string(payload))
	require.NoError(t, err)
	assert.Equal(t, Delete, c.Type)
	assert.Equal(t, int64(7), c.RowID())

	_, err = decodeChange(`{"table":"candidates"}`)
	assert.Error(t, err)

	_, err = decodeChange(`not json`)
	assert.Error(t, err)
}
