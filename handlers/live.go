// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/vote-tally/auth"
	"github.com/danielhkuo/vote-tally/cliparse"
	"github.com/danielhkuo/vote-tally/feed"
	"github.com/danielhkuo/vote-tally/livesync"
	"github.com/danielhkuo/vote-tally/metrics"
	"github.com/danielhkuo/vote-tally/middleware"
	"github.com/danielhkuo/vote-tally/models"
	"github.com/danielhkuo/vote-tally/roster"
	"github.com/danielhkuo/vote-tally/store"
	"github.com/danielhkuo/vote-tally/tally"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 50 * time.Second
	sendBuffer   = 32
)

// Server to client frame types.
const (
	FrameSnapshot  = "snapshot"
	FrameCountdown = "countdown"
	FrameError     = "error"
	FrameResult    = "result"
)

// Client to server commands. Everything except refresh, login and logout
// needs a logged-in admin session.
const (
	CmdRefresh = "refresh"
	CmdLogin   = "login"
	CmdLogout  = "logout"
	CmdVote    = "vote"
	CmdCustom  = "custom"
	CmdAdd     = "add"
	CmdRemove  = "remove"
)

// Frame is one server to client message.
type Frame struct {
	Type      string             `json:"type"`
	Command   string             `json:"command,omitempty"`
	Snapshot  *livesync.Snapshot `json:"snapshot,omitempty"`
	Countdown int                `json:"countdown,omitempty"`
	Message   string             `json:"message,omitempty"`
	Result    any                `json:"result,omitempty"`
}

// Command is one client to server message. Fields are read per Type.
type Command struct {
	Type        string `json:"type"`
	CandidateID int64  `json:"candidate_id,omitempty"`
	Delta       int64  `json:"delta,omitempty"`
	Amount      string `json:"amount,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Name        string `json:"name,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Username    string `json:"username,omitempty"`
	Password    string `json:"password,omitempty"`
	Confirm     bool   `json:"confirm,omitempty"`
}

// LiveHandler upgrades connections to websocket live sessions. Each
// connection gets its own livesync.Session, and admin connections also get
// their own auth.Gate and vote cooldown.
type LiveHandler struct {
	store    *store.Store
	feed     feed.Subscriber
	auth     auth.Authenticator
	metrics  *metrics.Metrics
	cfg      cliparse.Config
	upgrader websocket.Upgrader
}

func NewLiveHandler(st *store.Store, sub feed.Subscriber, a auth.Authenticator, m *metrics.Metrics, cfg cliparse.Config) *LiveHandler {
	return &LiveHandler{
		store:   st,
		feed:    sub,
		auth:    a,
		metrics: m,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			// Origins are already opened up by middleware.CORS.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Public handles GET /live
func (h *LiveHandler) Public(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, livesync.Public)
}

// Admin handles GET /admin/live
// The connection starts logged out; send a login command first.
func (h *LiveHandler) Admin(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, livesync.Admin)
}

func (h *LiveHandler) serve(w http.ResponseWriter, r *http.Request, view livesync.View) {
	wc, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err, "remote", middleware.ClientIP(r))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session := livesync.NewSession(view, h.store, h.feed,
		livesync.WithRefreshInterval(h.cfg.RefreshInterval),
		livesync.WithMetrics(h.metrics))
	c := &liveConn{wc: wc, send: make(chan Frame, sendBuffer), session: session}
	if view == livesync.Admin {
		c.gate = auth.NewGate(h.auth)
		c.tally = tally.NewService(h.store, tally.WithMetrics(h.metrics))
		c.roster = roster.NewService(h.store, h.metrics)
	}

	c.session.OnChange(func(snap livesync.Snapshot) {
		c.push(Frame{Type: FrameSnapshot, Snapshot: &snap})
	})
	c.session.OnCountdown(func(n int) {
		c.push(Frame{Type: FrameCountdown, Countdown: n})
	})

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writeAll()
	}()

	slog.Info("live session opened", "session_id", c.session.ID(), "view", view,
		"remote", middleware.ClientIP(r))

	if err := c.session.Start(ctx); err != nil {
		slog.Error("live session failed to load", "error", err, "session_id", c.session.ID())
		c.push(Frame{Type: FrameError, Message: "Failed to load candidates"})
	} else {
		c.readAll(ctx)
	}

	// Close stops the session's callbacks before send is closed.
	c.session.Close()
	close(c.send)
	<-writerDone
	slog.Info("live session closed", "session_id", c.session.ID())
}

type liveConn struct {
	wc      *websocket.Conn
	send    chan Frame
	session *livesync.Session

	// admin only
	gate   *auth.Gate
	tally  *tally.Service
	roster *roster.Service
}

// push queues a frame without blocking. A slow or gone client loses frames;
// every snapshot carries the full state again.
func (c *liveConn) push(f Frame) {
	select {
	case c.send <- f:
	default:
		slog.Warn("live session send buffer full, dropping frame",
			"session_id", c.session.ID(), "type", f.Type)
	}
}

func (c *liveConn) writeAll() {
	defer c.wc.Close()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case f, ok := <-c.send:
			if !ok {
				c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
				c.wc.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.wc.WriteJSON(f); err != nil {
				slog.Debug("live session write failed", "error", err, "session_id", c.session.ID())
				return
			}
		case <-ping.C:
			c.wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.wc.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *liveConn) readAll(ctx context.Context) {
	for {
		var cmd Command
		if err := c.wc.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("live session read failed", "error", err, "session_id", c.session.ID())
			}
			return
		}
		c.handle(ctx, cmd)
	}
}

func (c *liveConn) handle(ctx context.Context, cmd Command) {
	switch cmd.Type {
	case CmdRefresh:
		if err := c.session.Refresh(ctx); err != nil {
			slog.Error("manual refresh failed", "error", err, "session_id", c.session.ID())
			c.fail(cmd, "Failed to refresh candidates")
		}
		return
	case CmdLogin, CmdLogout, CmdVote, CmdCustom, CmdAdd, CmdRemove:
	default:
		c.fail(cmd, "unknown command "+cmd.Type)
		return
	}

	if c.gate == nil {
		c.fail(cmd, "Admin commands are not available on this connection")
		return
	}

	switch cmd.Type {
	case CmdLogin:
		if err := c.gate.Login(auth.Credentials{Username: cmd.Username, Password: cmd.Password}); err != nil {
			slog.Warn("live admin login failed", "session_id", c.session.ID(), "username", cmd.Username)
			c.fail(cmd, "Invalid username or password")
			return
		}
		c.reply(cmd, models.LoginResponse{Authenticated: true})
		return
	case CmdLogout:
		c.gate.Logout()
		c.reply(cmd, models.LoginResponse{Authenticated: false})
		return
	}

	if !c.gate.Authenticated() {
		c.fail(cmd, "Please log in first")
		return
	}

	if cmd.Type != CmdAdd {
		if err := checkCandidateID(cmd.CandidateID); err != nil {
			_, msg := statusFor(err, "invalid candidate id")
			c.fail(cmd, msg)
			return
		}
	}

	switch cmd.Type {
	case CmdVote:
		if cmd.Delta == 0 {
			c.fail(cmd, "delta must not be zero")
			return
		}
		res, err := c.tally.ApplyDelta(ctx, cmd.CandidateID, cmd.Delta)
		if err != nil {
			c.fail(cmd, tally.UserMessage(err))
			return
		}
		c.reply(cmd, voteResponse(res))
	case CmdCustom:
		res, err := c.tally.ApplyCustom(ctx, cmd.CandidateID, cmd.Amount, cmd.Mode)
		if err != nil {
			c.fail(cmd, tally.UserMessage(err))
			return
		}
		c.reply(cmd, voteResponse(res))
	case CmdAdd:
		res, err := c.roster.AddCandidate(ctx, roster.AddRequest{
			Name:        cmd.Name,
			Category:    cmd.Category,
			Description: cmd.Description,
		})
		if err != nil {
			_, msg := statusFor(err, "Failed to add candidate")
			c.fail(cmd, msg)
			return
		}
		resp := models.AddCandidateResponse{Candidate: res.Candidate}
		if res.DescriptionErr != nil {
			resp.Warning = descriptionWarning
		}
		c.reply(cmd, resp)
	case CmdRemove:
		res, err := c.roster.RemoveCandidate(ctx, cmd.CandidateID, roster.Confirmation(cmd.Confirm))
		if err != nil {
			_, msg := statusFor(err, "Failed to remove candidate")
			c.fail(cmd, msg)
			return
		}
		c.tally.Debouncer().Forget(cmd.CandidateID)
		resp := models.RemoveCandidateResponse{Removed: cmd.CandidateID, Candidates: res.Candidates}
		if res.RefreshErr != nil {
			resp.Warning = refreshWarning
		}
		c.reply(cmd, resp)
	}
}

func (c *liveConn) reply(cmd Command, result any) {
	c.push(Frame{Type: FrameResult, Command: cmd.Type, Result: result})
}

func (c *liveConn) fail(cmd Command, msg string) {
	c.push(Frame{Type: FrameError, Command: cmd.Type, Message: msg})
}
