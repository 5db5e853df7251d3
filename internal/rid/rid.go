// Package rid implements opaque, generation-checked resource handles.
//
// A RID packs an owner tag, a slot generation and a slot index. Freeing a
// slot bumps its generation, so stale handles never resolve to a reused slot.
package rid

import "fmt"

type RID uint64

// Invalid is the zero handle. No owner ever issues it.
const Invalid RID = 0

const (
	indexBits = 32
	genBits   = 24
	genMask   = 1<<genBits - 1
)

func (r RID) IsValid() bool { return r != Invalid }

func (r RID) Tag() uint8 { return uint8(r >> (indexBits + genBits)) }

func (r RID) index() uint32 { return uint32(r) }

func (r RID) gen() uint32 { return uint32(r>>indexBits) & genMask }

func (r RID) String() string {
	if r == Invalid {
		return "RID(invalid)"
	}
	return fmt.Sprintf("RID(%d:%d#%d)", r.Tag(), r.index(), r.gen())
}

func pack(tag uint8, gen, index uint32) RID {
	return RID(uint64(tag)<<(indexBits+genBits) | uint64(gen&genMask)<<indexBits | uint64(index))
}

type slot[T any] struct {
	gen  uint32
	live bool
	val  T
}

// Owner is a slot table for one kind of resource.
type Owner[T any] struct {
	tag   uint8
	slots []slot[T]
	free  []uint32
	count int
}

// NewOwner returns an empty table. Tags should be distinct per table so a
// handle from one table never validates against another.
func NewOwner[T any](tag uint8) *Owner[T] {
	return &Owner[T]{tag: tag}
}

func (o *Owner[T]) Make(v T) RID {
	var idx uint32
	if n := len(o.free); n > 0 {
		idx = o.free[n-1]
		o.free = o.free[:n-1]
	} else {
		idx = uint32(len(o.slots))
		o.slots = append(o.slots, slot[T]{})
	}
	s := &o.slots[idx]
	s.gen = (s.gen + 1) & genMask
	if s.gen == 0 {
		s.gen = 1
	}
	s.live = true
	s.val = v
	o.count++
	return pack(o.tag, s.gen, idx)
}

func (o *Owner[T]) lookup(r RID) *slot[T] {
	if r == Invalid || r.Tag() != o.tag {
		return nil
	}
	idx := r.index()
	if int(idx) >= len(o.slots) {
		return nil
	}
	s := &o.slots[idx]
	if !s.live || s.gen != r.gen() {
		return nil
	}
	return s
}

func (o *Owner[T]) Get(r RID) (T, bool) {
	if s := o.lookup(r); s != nil {
		return s.val, true
	}
	var zero T
	return zero, false
}

func (o *Owner[T]) Owns(r RID) bool { return o.lookup(r) != nil }

// Free releases r. It reports false if r was not live in this table.
func (o *Owner[T]) Free(r RID) bool {
	s := o.lookup(r)
	if s == nil {
		return false
	}
	var zero T
	s.val = zero
	s.live = false
	o.free = append(o.free, r.index())
	o.count--
	return true
}

func (o *Owner[T]) Len() int { return o.count }

// Each visits live entries in slot order.
func (o *Owner[T]) Each(fn func(RID, T)) {
	for i := range o.slots {
		s := &o.slots[i]
		if s.live {
			fn(pack(o.tag, s.gen, uint32(i)), s.val)
		}
	}
}
