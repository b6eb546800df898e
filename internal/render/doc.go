// Package render compiles the abstract routing graph of an offline context
// into a native graph of a target engine.
//
// # Memoization
//
// Every node is materialized at most once per target engine. The first
// request for a node creates its memo entry and runs it; concurrent and later
// requests wait on the entry. Results, failures included, stay in the memo:
// an offline render failure is terminal and never retried.
//
// # Cycles
//
// A render request waits for a source's full subgraph only when the source is
// not part of a cycle. For a cyclic source it waits only until the source has
// been materialized, renders the rest of that source on its own goroutine,
// and defers the edge. The chain of full waits therefore follows acyclic
// sources only and cannot loop back on itself. Once every render started by
// the call has finished, the deferred edges are wired in a second phase.
//
// # Ordering
//
// Within one node: materialize, replay each param's automation, render all
// node and param inputs in parallel, then wire every resolved input. Nothing
// is wired into a node before all of its inputs have resolved.
package render
