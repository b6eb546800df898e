package render

import (
	"sync"

	"github.com/specialistvlad/patchgraph/internal/engine"
	"github.com/specialistvlad/patchgraph/internal/handle"
)

// pass is the memo of one target engine.
type pass struct {
	mu       sync.Mutex
	nodes    map[handle.Node]*entry
	params   map[paramKey]*paramEntry
	deferred []link
}

// paramKey names one replay target: the same param replayed onto two native
// params is two entries.
type paramKey struct {
	h      handle.Param
	native engine.NativeParam
}

func newPass() *pass {
	return &pass{
		nodes:  make(map[handle.Node]*entry),
		params: make(map[paramKey]*paramEntry),
	}
}

// entry is the memoized render of one node. native and matErr are written
// before materialized is closed; err before done is closed.
type entry struct {
	materialized chan struct{}
	done         chan struct{}
	native       engine.NativeNode
	matErr       error
	err          error
}

type paramEntry struct {
	done chan struct{}
	err  error
}

// link is a native connection to be made once both ends exist.
type link struct {
	src    engine.NativeNode
	dst    engine.NativeNode
	param  engine.NativeParam
	output int
	input  int
}

func (l link) wire() error {
	if l.param != nil {
		return l.src.ConnectParam(l.param, l.output)
	}
	return l.src.Connect(l.dst, l.output, l.input)
}

// nodeEntry returns the entry for h and whether the caller created it.
func (p *pass) nodeEntry(h handle.Node) (*entry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.nodes[h]; ok {
		return e, false
	}
	e := &entry{
		materialized: make(chan struct{}),
		done:         make(chan struct{}),
	}
	p.nodes[h] = e
	return e, true
}

func (p *pass) paramEntry(h handle.Param, np engine.NativeParam) (*paramEntry, bool) {
	k := paramKey{h: h, native: np}
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.params[k]; ok {
		return e, false
	}
	e := &paramEntry{done: make(chan struct{})}
	p.params[k] = e
	return e, true
}

func (p *pass) deferLinks(links []link) {
	if len(links) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deferred = append(p.deferred, links...)
}

func (p *pass) takeDeferred() []link {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.deferred
	p.deferred = nil
	return out
}
