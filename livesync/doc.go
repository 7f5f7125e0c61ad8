// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package livesync keeps a connected client's candidate list in step with the
record store.

Each Session is fed by two independent triggers that both land on idempotent
operations:

  - change notifications from the feed, applied with Reconcile (in-place
    patch on UPDATE, append on INSERT, removal on DELETE)
  - a periodic full refetch, ReconcileAll, every 30 seconds by default

A countdown ticks once a second toward the next automatic refresh and is
reset by every notification and every full refetch. Close stops the timers
and the subscription together.

	s := livesync.NewSession(livesync.Public, st, broker)
	s.OnChange(func(snap livesync.Snapshot) { ... })
	if err := s.Start(ctx); err != nil {
		s.Close()
		return err
	}
	defer s.Close()
*/
package livesync
