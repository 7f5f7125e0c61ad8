// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/vote-tally/feed"
	"github.com/danielhkuo/vote-tally/models"
	"github.com/danielhkuo/vote-tally/store"
	"github.com/danielhkuo/vote-tally/testutil"
)

func TestListCandidates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewCandidateHandler(store.New(db, feed.NewMemoryBroker()))

	a := testutil.CreateTestCandidate(t, db, "Alice", models.CategoryElection, 10)
	b := testutil.CreateTestCandidate(t, db, "Bob", models.CategoryBOD, 3)
	c := testutil.CreateTestCandidate(t, db, "Cara", models.CategoryBOD, 7)
	d := testutil.CreateTestCandidate(t, db, "Dan", "", 50)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		wantIDs        []int64
	}{
		{"default is public", "", http.StatusOK, []int64{d, a, c, b}},
		{"public by votes", "?view=public", http.StatusOK, []int64{d, a, c, b}},
		// categories sort by label, uncategorized last
		{"admin by category", "?view=admin", http.StatusOK, []int64{c, b, a, d}},
		{"unknown view", "?view=everything", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/candidates"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.ListCandidates(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp models.CandidatesResponse
			testutil.AssertJSON(t, w, &resp)
			if len(resp.Candidates) != len(tt.wantIDs) {
				t.Fatalf("Expected %d candidates, got %d", len(tt.wantIDs), len(resp.Candidates))
			}
			for i, id := range tt.wantIDs {
				if resp.Candidates[i].ID != id {
					t.Errorf("position %d: expected id %d, got %d", i, id, resp.Candidates[i].ID)
				}
			}
			if resp.FetchedAt.IsZero() {
				t.Error("Expected fetched_at to be set")
			}
		})
	}
}

func TestGetResults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewCandidateHandler(store.New(db, nil))

	testutil.CreateTestCandidate(t, db, "Reyes", models.CategoryBOD, 50)
	testutil.CreateTestCandidate(t, db, "Santos", models.CategoryBOD, 30)
	testutil.CreateTestCandidate(t, db, "Cruz", models.CategoryBOD, 20)
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		testutil.CreateTestCandidate(t, db, name, models.CategoryAudit, 1)
	}

	t.Run("top four", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.GetResults(w, httptest.NewRequest("GET", "/results", nil))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.ResultsResponse
		testutil.AssertJSON(t, w, &resp)
		if len(resp.Groups) != 2 {
			t.Fatalf("Expected 2 groups, got %d", len(resp.Groups))
		}

		bod := resp.Groups[0]
		if bod.Category != models.CategoryBOD {
			t.Fatalf("Expected BOD first, got %s", bod.Category)
		}
		wantShares := []string{"50.00", "30.00", "20.00"}
		for i, rc := range bod.Candidates {
			if rc.Share != wantShares[i] {
				t.Errorf("share %d = %s, want %s", i, rc.Share, wantShares[i])
			}
		}

		audit := resp.Groups[1]
		if len(audit.Candidates) != 4 || audit.Hidden != 1 {
			t.Errorf("Expected 4 shown and 1 hidden, got %d and %d", len(audit.Candidates), audit.Hidden)
		}
		if audit.HiddenLabel != "1 more candidate not shown" {
			t.Errorf("unexpected hidden label %q", audit.HiddenLabel)
		}
	})

	t.Run("all", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.GetResults(w, httptest.NewRequest("GET", "/results?all=true", nil))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.ResultsResponse
		testutil.AssertJSON(t, w, &resp)
		if got := len(resp.Groups[1].Candidates); got != 5 {
			t.Errorf("Expected all 5 audit candidates, got %d", got)
		}
	})
}

func TestGetResults_AdminView(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewCandidateHandler(store.New(db, nil))

	for _, c := range []struct {
		name  string
		votes int64
	}{
		{"Santos", 30}, {"alvarez", 5}, {"Reyes", 50}, {"Mendoza", 1}, {"Cruz", 20},
	} {
		testutil.CreateTestCandidate(t, db, c.name, models.CategoryBOD, c.votes)
	}

	w := httptest.NewRecorder()
	handler.GetResults(w, httptest.NewRequest("GET", "/results?view=admin", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ResultsResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.Groups) != 1 {
		t.Fatalf("Expected 1 group, got %d", len(resp.Groups))
	}
	group := resp.Groups[0]
	if group.Hidden != 0 {
		t.Errorf("Expected nothing hidden in admin view, got %d", group.Hidden)
	}

	want := []struct {
		name string
		rank int
	}{
		{"alvarez", 4}, {"Cruz", 3}, {"Mendoza", 5}, {"Reyes", 1}, {"Santos", 2},
	}
	if len(group.Candidates) != len(want) {
		t.Fatalf("Expected %d candidates, got %d", len(want), len(group.Candidates))
	}
	for i, wc := range want {
		got := group.Candidates[i]
		if got.Candidate.Name != wc.name || got.Rank != wc.rank {
			t.Errorf("position %d: expected %s rank %d, got %s rank %d", i, wc.name, wc.rank, got.Candidate.Name, got.Rank)
		}
	}
}

func TestGetResults_UnknownView(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewCandidateHandler(store.New(db, nil))

	w := httptest.NewRecorder()
	handler.GetResults(w, httptest.NewRequest("GET", "/results?view=everything", nil))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestGetResults_StoreError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewCandidateHandler(store.New(db, nil))
	db.Close()

	w := httptest.NewRecorder()
	handler.GetResults(w, httptest.NewRequest("GET", "/results", nil))
	testutil.AssertStatus(t, w, http.StatusInternalServerError)
}
