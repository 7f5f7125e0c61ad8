// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/vote-tally/cliparse"
	"github.com/danielhkuo/vote-tally/db"
	"github.com/danielhkuo/vote-tally/models"
)

// Test admin credentials
const (
	AdminUsername = "admin"
	AdminPassword = "admin6108"
)

// SetupTestDB creates a fresh in-memory sqlite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.CreateSchema(conn, db.TypeSQLite); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		DatabaseURL:     ":memory:",
		DatabaseType:    db.TypeSQLite,
		ChangefeedURL:   "redis://localhost:6379/0",
		AdminUsername:   AdminUsername,
		AdminPassword:   AdminPassword,
		RefreshInterval: 30 * time.Second,
	}
}

// CreateTestCandidate inserts a candidate directly, bypassing the store
// (and therefore the change feed), and returns its ID
func CreateTestCandidate(t *testing.T, conn *sql.DB, name, category string, votes int64) int64 {
	t.Helper()

	var party *string
	if category != "" {
		party = &category
	}

	var id int64
	err := conn.QueryRow(`
		INSERT INTO candidates (name, party, position, votes, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, name, party, models.PositionCandidate, votes, time.Now().UTC()).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return id
}

// GetTestVotes reads a candidate's vote count
func GetTestVotes(t *testing.T, conn *sql.DB, id int64) int64 {
	t.Helper()

	var votes int64
	if err := conn.QueryRow(`SELECT votes FROM candidates WHERE id = $1`, id).Scan(&votes); err != nil {
		t.Fatalf("Failed to read votes: %v", err)
	}
	return votes
}

// CountVoteChanges returns the number of audit entries for a candidate
func CountVoteChanges(t *testing.T, conn *sql.DB, id int64) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM vote_changes WHERE candidate_id = $1`, id).Scan(&n); err != nil {
		t.Fatalf("Failed to count vote changes: %v", err)
	}
	return n
}

// FakeClock is a manually advanced clock
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock starts a clock at a fixed instant
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2025, 5, 12, 9, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Context returns a context cancelled at test cleanup
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AdminRequest creates an HTTP test request carrying the test admin credentials
func AdminRequest(method, path string, body interface{}) *http.Request {
	req := MakeRequest(method, path, body, nil)
	req.SetBasicAuth(AdminUsername, AdminPassword)
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
