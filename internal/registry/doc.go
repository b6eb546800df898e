// Package registry maps node kind names, as used in patch files, to the
// construction details of the node: port counts, params, activity origin,
// declared options and how its tail time is derived.
//
// Kinds are contributed by modules during startup. Registration panics on
// duplicates, since that is a programming error, and the registry is
// validated once before use.
package registry
