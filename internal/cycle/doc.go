// Package cycle detects cycles in a routing graph and keeps per-node cycle
// membership counters.
//
// Membership is counted over simple cycles of the node-level adjacency
// relation: parallel edges between the same two nodes, or an edge into a
// param of a node, form a single adjacency. The caller marks the cycles a new
// adjacency closes and unmarks the cycles a removed adjacency opens; a node
// is part of a cycle iff its counter is nonzero.
package cycle
