// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package apperr defines the error taxonomy shared by the services.

  - ValidationError: bad input, reported inline, no store access attempted
  - StoreReadError / StoreWriteError: abort the operation, surface a message
  - AuditLogError: logged only, never rolls back a vote mutation
  - ConfigError: fatal at startup

Match with errors.As; ErrNotFound is wrapped inside StoreReadError when a
candidate does not exist. None of these are retried automatically.
*/
package apperr
