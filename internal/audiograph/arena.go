package audiograph

import "math"

type slot[T any] struct {
	gen uint32
	rec *T
}

// arena is an index table with a free list. Generations start at 1 so the
// zero handle never resolves.
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

func (a *arena[T]) alloc(rec *T) (uint32, uint32) {
	a.live++
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[idx].rec = rec
		return idx, a.slots[idx].gen
	}
	a.slots = append(a.slots, slot[T]{gen: 1, rec: rec})
	return uint32(len(a.slots) - 1), 1
}

func (a *arena[T]) get(idx, gen uint32) (*T, bool) {
	if int(idx) >= len(a.slots) {
		return nil, false
	}
	s := a.slots[idx]
	if s.gen != gen || s.rec == nil {
		return nil, false
	}
	return s.rec, true
}

func (a *arena[T]) release(idx, gen uint32) bool {
	if _, ok := a.get(idx, gen); !ok {
		return false
	}
	s := &a.slots[idx]
	s.rec = nil
	if s.gen == math.MaxUint32 {
		s.gen = 1
	} else {
		s.gen++
	}
	a.free = append(a.free, idx)
	a.live--
	return true
}

// each calls fn for every live slot in index order.
func (a *arena[T]) each(fn func(idx, gen uint32, rec *T)) {
	for i, s := range a.slots {
		if s.rec != nil {
			fn(uint32(i), s.gen, s.rec)
		}
	}
}
