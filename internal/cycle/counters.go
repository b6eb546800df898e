package cycle

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/patchgraph/internal/handle"
)

// ErrUnbalanced is returned when a counter would drop below zero.
var ErrUnbalanced = errors.New("cycle counter underflow")

// Counters tracks, per node, how many cycles it participates in.
type Counters struct {
	counts map[handle.Node]int
}

// NewCounters returns empty counters.
func NewCounters() *Counters {
	return &Counters{counts: make(map[handle.Node]int)}
}

// Mark increments the counter of every node on every cycle. It returns the
// nodes whose counter left zero, in first-seen order.
func (c *Counters) Mark(cycles [][]handle.Node) []handle.Node {
	var entered []handle.Node
	for _, cyc := range cycles {
		for _, n := range cyc {
			if c.counts[n] == 0 {
				entered = append(entered, n)
			}
			c.counts[n]++
		}
	}
	return entered
}

// Unmark decrements the counter of every node on every cycle and returns the
// nodes whose counter reached zero. Nothing changes when an underflow would
// occur.
func (c *Counters) Unmark(cycles [][]handle.Node) ([]handle.Node, error) {
	need := make(map[handle.Node]int)
	for _, cyc := range cycles {
		for _, n := range cyc {
			need[n]++
		}
	}
	for n, k := range need {
		if c.counts[n] < k {
			return nil, fmt.Errorf("%s: counter %d, unmarking %d: %w", n, c.counts[n], k, ErrUnbalanced)
		}
	}

	var left []handle.Node
	for _, cyc := range cycles {
		for _, n := range cyc {
			c.counts[n]--
			if c.counts[n] == 0 {
				delete(c.counts, n)
				left = append(left, n)
			}
		}
	}
	return left, nil
}

// InCycle reports whether n is part of at least one cycle.
func (c *Counters) InCycle(n handle.Node) bool {
	return c.counts[n] > 0
}

// Count returns the number of cycles n participates in.
func (c *Counters) Count(n handle.Node) int {
	return c.counts[n]
}

// Len returns the number of nodes currently part of a cycle.
func (c *Counters) Len() int {
	return len(c.counts)
}

// Reset clears every counter.
func (c *Counters) Reset() {
	clear(c.counts)
}
