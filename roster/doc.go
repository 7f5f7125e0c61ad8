// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package roster adds and removes candidates. Input is validated before any
// store access; removals require an explicit Confirmed answer.
package roster
