// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/vote-tally/auth"
	"github.com/danielhkuo/vote-tally/feed"
	"github.com/danielhkuo/vote-tally/models"
	"github.com/danielhkuo/vote-tally/store"
	"github.com/danielhkuo/vote-tally/testutil"
)

// liveFrame mirrors Frame with a raw result for decoding in tests.
type liveFrame struct {
	Type      string          `json:"type"`
	Command   string          `json:"command"`
	Snapshot  *liveSnapshot   `json:"snapshot"`
	Countdown int             `json:"countdown"`
	Message   string          `json:"message"`
	Result    json.RawMessage `json:"result"`
}

type liveSnapshot struct {
	State      string             `json:"state"`
	Candidates []models.Candidate `json:"candidates"`
}

type liveFixture struct {
	store  *store.Store
	server *httptest.Server
}

func newLiveFixture(t *testing.T) *liveFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	broker := feed.NewMemoryBroker()
	st := store.New(db, broker)
	a := auth.NewStaticAuthenticator(testutil.AdminUsername, testutil.AdminPassword)
	h := NewLiveHandler(st, broker, a, nil, testutil.GetTestConfig())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /live", h.Public)
	mux.HandleFunc("GET /admin/live", h.Admin)
	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		broker.Close()
	})
	return &liveFixture{store: st, server: server}
}

func (f *liveFixture) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + path
	wc, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial %s: %v", path, err)
	}
	t.Cleanup(func() { wc.Close() })
	return wc
}

// next reads frames until one of the given type arrives, skipping countdowns.
func next(t *testing.T, wc *websocket.Conn, frameType string) liveFrame {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		wc.SetReadDeadline(deadline)
		var f liveFrame
		if err := wc.ReadJSON(&f); err != nil {
			t.Fatalf("waiting for %s frame: %v", frameType, err)
		}
		if f.Type == frameType {
			return f
		}
		if f.Type != FrameCountdown {
			t.Fatalf("Expected %s frame, got %s (%s)", frameType, f.Type, f.Message)
		}
	}
}

func send(t *testing.T, wc *websocket.Conn, cmd Command) {
	t.Helper()
	if err := wc.WriteJSON(cmd); err != nil {
		t.Fatalf("Failed to send %s: %v", cmd.Type, err)
	}
}

func TestLivePublic_InitialSnapshotAndNotifications(t *testing.T) {
	f := newLiveFixture(t)
	ctx := context.Background()
	first, err := f.store.Insert(ctx, "Alice", strPtr(models.CategoryBOD))
	if err != nil {
		t.Fatal(err)
	}

	wc := f.dial(t, "/live")

	snap := next(t, wc, FrameSnapshot).Snapshot
	if snap.State != "synced" || len(snap.Candidates) != 1 || snap.Candidates[0].ID != first.ID {
		t.Fatalf("unexpected initial snapshot %+v", snap)
	}

	// Wait until the session has subscribed before writing.
	send(t, wc, Command{Type: CmdRefresh})
	next(t, wc, FrameSnapshot)

	if _, err := f.store.UpdateVotes(ctx, first.ID, 42); err != nil {
		t.Fatal(err)
	}
	snap = next(t, wc, FrameSnapshot).Snapshot
	if snap.Candidates[0].Votes != 42 {
		t.Errorf("Expected patched votes 42, got %d", snap.Candidates[0].Votes)
	}

	second, err := f.store.Insert(ctx, "Bob", strPtr(models.CategoryAudit))
	if err != nil {
		t.Fatal(err)
	}
	snap = next(t, wc, FrameSnapshot).Snapshot
	if len(snap.Candidates) != 2 || snap.Candidates[1].ID != second.ID {
		t.Errorf("Expected inserted candidate appended, got %+v", snap.Candidates)
	}

	if err := f.store.Delete(ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	snap = next(t, wc, FrameSnapshot).Snapshot
	if len(snap.Candidates) != 1 || snap.Candidates[0].ID != second.ID {
		t.Errorf("Expected deleted candidate gone, got %+v", snap.Candidates)
	}
}

func TestLivePublic_RejectsAdminCommands(t *testing.T) {
	f := newLiveFixture(t)
	wc := f.dial(t, "/live")
	next(t, wc, FrameSnapshot)

	send(t, wc, Command{Type: CmdLogin, Username: "admin", Password: "admin6108"})
	frame := next(t, wc, FrameError)
	if frame.Command != CmdLogin {
		t.Errorf("Expected error for login, got %q", frame.Command)
	}

	send(t, wc, Command{Type: "dance"})
	next(t, wc, FrameError)
}

func TestLiveAdmin_GateAndVotes(t *testing.T) {
	f := newLiveFixture(t)
	c, err := f.store.Insert(context.Background(), "Alice", strPtr(models.CategoryBOD))
	if err != nil {
		t.Fatal(err)
	}

	wc := f.dial(t, "/admin/live")
	next(t, wc, FrameSnapshot)

	send(t, wc, Command{Type: CmdVote, CandidateID: c.ID, Delta: 1})
	if frame := next(t, wc, FrameError); frame.Message != "Please log in first" {
		t.Errorf("unexpected message %q", frame.Message)
	}

	send(t, wc, Command{Type: CmdLogin, Username: "admin", Password: "wrong"})
	next(t, wc, FrameError)

	send(t, wc, Command{Type: CmdLogin, Username: "admin", Password: "admin6108"})
	var login models.LoginResponse
	if err := json.Unmarshal(next(t, wc, FrameResult).Result, &login); err != nil || !login.Authenticated {
		t.Fatalf("login failed: %v %+v", err, login)
	}

	send(t, wc, Command{Type: CmdVote, CandidateID: c.ID, Delta: 1})

	// The UPDATE notification and the command result can arrive in either order.
	var gotResult, gotSnapshot bool
	for !gotResult || !gotSnapshot {
		wc.SetReadDeadline(time.Now().Add(3 * time.Second))
		var frame liveFrame
		if err := wc.ReadJSON(&frame); err != nil {
			t.Fatal(err)
		}
		switch frame.Type {
		case FrameResult:
			var resp models.VoteResponse
			if err := json.Unmarshal(frame.Result, &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Candidate == nil || resp.Candidate.Votes != 1 {
				t.Errorf("unexpected vote result %+v", resp)
			}
			gotResult = true
		case FrameSnapshot:
			if frame.Snapshot.Candidates[0].Votes == 1 {
				gotSnapshot = true
			}
		case FrameError:
			t.Fatalf("vote failed: %s", frame.Message)
		}
	}

	send(t, wc, Command{Type: CmdLogout})
	next(t, wc, FrameResult)
	send(t, wc, Command{Type: CmdAdd, Name: "Bob", Category: models.CategoryAudit})
	next(t, wc, FrameError)
}

func TestLiveAdmin_RemoveNeedsConfirmation(t *testing.T) {
	f := newLiveFixture(t)
	c, err := f.store.Insert(context.Background(), "Alice", strPtr(models.CategoryBOD))
	if err != nil {
		t.Fatal(err)
	}

	wc := f.dial(t, "/admin/live")
	next(t, wc, FrameSnapshot)
	send(t, wc, Command{Type: CmdLogin, Username: "admin", Password: "admin6108"})
	next(t, wc, FrameResult)

	send(t, wc, Command{Type: CmdRemove, CandidateID: c.ID})
	if frame := next(t, wc, FrameError); frame.Message != "Removal must be confirmed" {
		t.Errorf("unexpected message %q", frame.Message)
	}

	if _, err := f.store.Get(context.Background(), c.ID); err != nil {
		t.Errorf("unconfirmed removal deleted the candidate: %v", err)
	}
}

func TestLiveAdmin_RejectsMissingCandidateID(t *testing.T) {
	f := newLiveFixture(t)
	c, err := f.store.Insert(context.Background(), "Alice", strPtr(models.CategoryBOD))
	if err != nil {
		t.Fatal(err)
	}

	wc := f.dial(t, "/admin/live")
	next(t, wc, FrameSnapshot)
	send(t, wc, Command{Type: CmdLogin, Username: "admin", Password: "admin6108"})
	next(t, wc, FrameResult)

	tests := []struct {
		name string
		cmd  Command
	}{
		{"remove without id", Command{Type: CmdRemove, Confirm: true}},
		{"remove negative id", Command{Type: CmdRemove, CandidateID: -1, Confirm: true}},
		{"vote without id", Command{Type: CmdVote, Delta: 1}},
		{"custom without id", Command{Type: CmdCustom, Amount: "5", Mode: "set"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, wc, tt.cmd)
			frame := next(t, wc, FrameError)
			if frame.Command != tt.cmd.Type {
				t.Errorf("expected error for %s, got %s", tt.cmd.Type, frame.Command)
			}
			if frame.Message != "invalid candidate id" {
				t.Errorf("unexpected message %q", frame.Message)
			}
		})
	}

	if _, err := f.store.Get(context.Background(), c.ID); err != nil {
		t.Errorf("candidate was removed: %v", err)
	}
}

func strPtr(s string) *string { return &s }
