package handle

import "fmt"

// Node identifies a node record in a connection store.
type Node struct {
	index uint32
	gen   uint32
}

// Param identifies a param record in a connection store.
type Param struct {
	index uint32
	gen   uint32
}

// NewNode builds a node handle. Only stores should call this.
func NewNode(index, gen uint32) Node {
	return Node{index: index, gen: gen}
}

// NewParam builds a param handle. Only stores should call this.
func NewParam(index, gen uint32) Param {
	return Param{index: index, gen: gen}
}

// Index returns the arena slot of the node.
func (n Node) Index() uint32 { return n.index }

// Generation returns the slot generation the handle was issued for.
func (n Node) Generation() uint32 { return n.gen }

// IsZero reports whether the handle was never issued. Stores start
// generations at 1, so the zero value never resolves.
func (n Node) IsZero() bool { return n.gen == 0 }

// String renders the handle as `node#index/gen`.
func (n Node) String() string {
	if n.IsZero() {
		return "node#nil"
	}
	return fmt.Sprintf("node#%d/%d", n.index, n.gen)
}

// Index returns the arena slot of the param.
func (p Param) Index() uint32 { return p.index }

// Generation returns the slot generation the handle was issued for.
func (p Param) Generation() uint32 { return p.gen }

// IsZero reports whether the handle was never issued.
func (p Param) IsZero() bool { return p.gen == 0 }

// String renders the handle as `param#index/gen`.
func (p Param) String() string {
	if p.IsZero() {
		return "param#nil"
	}
	return fmt.Sprintf("param#%d/%d", p.index, p.gen)
}
