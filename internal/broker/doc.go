// Package broker implements pollbus's in-memory keyed event broker with
// consumer-group long-poll delivery.
//
// # Overview
//
// A Broker owns three process-lifetime structures:
//   - an event store holding, per key, the append-ordered events younger
//     than the retention window;
//   - a consumption tracker recording, per (key, group), the event ids
//     already delivered to that group;
//   - a waiter registry holding, per key, the long-poll calls parked until
//     the next push.
//
// Push appends and then broadcasts to every waiter of the key. Poll (and its
// zero-option form BlockingGet) claims unconsumed events for a group, and if
// there are none parks until a push, the poll timeout, or the caller's
// context ends, after which it claims once more:
//
//	CHECK1 -> WAIT -> CHECK2 -> RETURN
//
// Claiming (snapshot, filter, mark consumed) and registering a waiter happen
// under one broker lock, and Push appends and notifies under the same lock,
// so a push can never slip between an empty check and the registration that
// follows it.
//
// Every group sees every event once (broadcast across groups, not competing
// consumers). A Sweeper prunes expired events and expired consumption
// records on a fixed interval.
//
//	b := broker.New(broker.Options{}, logger)
//	sw := b.NewSweeper()
//	sw.Start(ctx)
//	defer sw.Stop()
//	_, _ = b.Push(ctx, "orders", map[string]any{"id": 1})
//	events, _ := b.BlockingGet(ctx, "orders", "billing")
package broker
