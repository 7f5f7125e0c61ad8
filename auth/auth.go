// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// Credentials is a username/password pair as entered on the admin login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Authenticator decides whether a credential pair unlocks the admin surface.
type Authenticator interface {
	Authenticate(c Credentials) bool
}

// StaticAuthenticator checks against one fixed username and password.
type StaticAuthenticator struct {
	username []byte
	password []byte
}

func NewStaticAuthenticator(username, password string) *StaticAuthenticator {
	return &StaticAuthenticator{username: []byte(username), password: []byte(password)}
}

// Authenticate compares both fields in constant time. Both comparisons
// always run so a wrong username costs the same as a wrong password.
func (a *StaticAuthenticator) Authenticate(c Credentials) bool {
	userOK := hmac.Equal([]byte(c.Username), a.username)
	passOK := hmac.Equal([]byte(c.Password), a.password)
	return userOK && passOK && len(a.username) > 0
}

// HashedAuthenticator checks the password against a bcrypt hash, so the
// plain password never has to sit in the environment.
type HashedAuthenticator struct {
	username []byte
	hash     []byte
}

// NewHashedAuthenticator expects hash to be checked already with ValidHash.
func NewHashedAuthenticator(username, hash string) *HashedAuthenticator {
	return &HashedAuthenticator{username: []byte(username), hash: []byte(hash)}
}

// ValidHash reports whether hash parses as a bcrypt hash.
func ValidHash(hash string) bool {
	_, err := bcrypt.Cost([]byte(hash))
	return err == nil
}

// New picks the hashed authenticator when a hash is configured.
func New(username, password, hash string) Authenticator {
	if hash != "" {
		return NewHashedAuthenticator(username, hash)
	}
	return NewStaticAuthenticator(username, password)
}

func (a *HashedAuthenticator) Authenticate(c Credentials) bool {
	userOK := hmac.Equal([]byte(c.Username), a.username)
	passOK := bcrypt.CompareHashAndPassword(a.hash, []byte(c.Password)) == nil
	return userOK && passOK && len(a.username) > 0
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Gate holds the authenticated flag for one admin session. It is never
// persisted and is lost when the session ends.
type Gate struct {
	auth Authenticator

	mu            sync.RWMutex
	authenticated bool
}

func NewGate(a Authenticator) *Gate {
	return &Gate{auth: a}
}

// Login checks c and opens the gate on success. A failed attempt leaves
// the gate as it was.
func (g *Gate) Login(c Credentials) error {
	if !g.auth.Authenticate(c) {
		return ErrInvalidCredentials
	}
	g.mu.Lock()
	g.authenticated = true
	g.mu.Unlock()
	return nil
}

func (g *Gate) Logout() {
	g.mu.Lock()
	g.authenticated = false
	g.mu.Unlock()
}

func (g *Gate) Authenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.authenticated
}
