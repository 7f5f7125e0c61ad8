// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors for store facts. Wrapped by the typed errors below.
var (
	ErrNotFound = errors.New("not found")
)

// ValidationError is bad user input, reported before any store access.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Validation builds a ValidationError.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// StoreReadError aborts an operation before anything was written.
type StoreReadError struct {
	Op  string
	Err error
}

func (e *StoreReadError) Error() string { return fmt.Sprintf("store read %s: %v", e.Op, e.Err) }
func (e *StoreReadError) Unwrap() error { return e.Err }

// StoreWriteError aborts an operation whose write was rejected.
type StoreWriteError struct {
	Op  string
	Err error
}

func (e *StoreWriteError) Error() string { return fmt.Sprintf("store write %s: %v", e.Op, e.Err) }
func (e *StoreWriteError) Unwrap() error { return e.Err }

// AuditLogError is a failed audit append. It is never returned as an
// operation error, only logged and attached to results.
type AuditLogError struct {
	CandidateID int64
	Err         error
}

func (e *AuditLogError) Error() string {
	return fmt.Sprintf("audit log for candidate %d: %v", e.CandidateID, e.Err)
}
func (e *AuditLogError) Unwrap() error { return e.Err }

// ConfigError is a missing or invalid startup setting.
type ConfigError struct {
	Key     string
	Message string
}

func (e *ConfigError) Error() string { return e.Key + ": " + e.Message }

// Read wraps err as a StoreReadError, leaving nil untouched.
func Read(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreReadError{Op: op, Err: err}
}

// Write wraps err as a StoreWriteError, leaving nil untouched.
func Write(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreWriteError{Op: op, Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
