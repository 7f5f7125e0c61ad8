// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally is the vote mutation service.

# Applying a Change

	svc := tally.NewService(store)
	res, err := svc.ApplyDelta(ctx, candidateID, +1)

ApplyDelta reads the persisted count, writes max(0, count+delta) (capped at
models.MaxVotes) and appends a vote_changes entry. The audit append is best
effort: on failure res.AuditErr is set, a warning is logged, and the vote stays
written.

# Cooldown

Each Service carries a Debouncer. A second request for the same candidate
within 500ms of the previous accepted one returns Result{Debounced: true} and
does nothing. Different candidates are independent, and so are different
Services; one Service per admin session keeps the cooldown session-local.

# Free-text Amounts

	res, err := svc.ApplyCustom(ctx, candidateID, "5", models.ModeSubtract)

The input must be digits only. Empty or invalid input is an
apperr.ValidationError and the store is not touched.
*/
package tally
