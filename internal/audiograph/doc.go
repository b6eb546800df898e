// Package audiograph is the connection store of an audio context: an arena of
// node and param records holding every edge of the routing graph, split into
// active and passive sets, along with the state listeners that keep the split
// current.
//
// The store is pure data. It enforces edge symmetry (an edge is present in
// its source's outputs iff it is present in exactly one of its destination's
// active or passive sets) and listener bookkeeping, but it never decides
// activity itself and never talks to a native engine. The owning context
// serializes all access; a Store is not safe for concurrent mutation.
//
// Records are addressed through generation-checked handles. Releasing a slot
// bumps its generation, so a stale handle resolves to ErrRecordMissing rather
// than to whatever record later reuses the slot.
package audiograph
