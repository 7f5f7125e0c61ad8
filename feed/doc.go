// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package feed is the change-notification channel between the record store and
connected viewers.

A Change names the table, the event type (INSERT, UPDATE, DELETE) and carries
the changed row. Subscribers pick a table and event type, or All:

	sub, err := broker.Subscribe(ctx, feed.Filter{Table: feed.TableCandidates, Event: feed.All})
	defer sub.Close()
	for c := range sub.C {
		...
	}

Two brokers are provided:

  - MemoryBroker: in-process fan-out for tests and embedded use; main always runs RedisBroker
  - RedisBroker: Redis pub/sub, one dedicated connection per subscriber

Delivery never blocks the publisher. A subscriber whose buffer is full loses
the notification; viewers recover through their periodic full refresh.
*/
package feed
