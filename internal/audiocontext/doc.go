// Package audiocontext owns an audio routing graph: it creates node and
// param proxies, manages their connections, drives the active/passive state
// machine and, for offline contexts, renders the graph into a target engine.
//
// # Real-time and offline contexts
//
// A real-time context mirrors every active edge into its native engine at
// connect time, except edges whose source is part of a cycle. An offline
// context never touches a native engine while the graph is edited; the whole
// graph is compiled by Render or StartRendering instead.
//
// # State machine
//
// State changes are queued transitions drained under the context lock. A
// transition moves the node's outgoing edges between the active and passive
// sets of their destinations, reconciles native wiring and queues the
// follow-up transitions of downstream nodes. Watchers registered with Watch
// see every transition after the lock has been released, synchronously and
// in registration order, before the call that caused it returns.
//
// A node that loses its last active input with a nonzero tail time stays
// active until the tail time has elapsed on the context's Clock.
//
// # Concurrency
//
// A Context is safe for concurrent use. Structural edits take the write lock;
// Render holds the read lock for the whole pass, so edits wait for in-flight
// renders.
package audiocontext
