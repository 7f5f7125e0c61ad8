// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth gates the admin surface behind a fixed username and password.

# Authenticator

	a := auth.NewStaticAuthenticator("admin", "admin6108")
	ok := a.Authenticate(auth.Credentials{Username: u, Password: p})

Comparison uses hmac.Equal so timing does not leak how much of a guess
matched. REST admin routes call the authenticator on every request with the
HTTP Basic credentials; there is no session token.

When ADMIN_PASSWORD_HASH is set, New returns a HashedAuthenticator that
checks the password with bcrypt instead.

# Gate

A Gate is the transient "logged in" flag of one live admin session:

	g := auth.NewGate(a)
	if err := g.Login(creds); err != nil { ... }
	g.Authenticated() // true until Logout or the session ends

Nothing is persisted, so a new connection starts logged out.
*/
package auth
