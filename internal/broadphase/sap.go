package broadphase

import (
	"slices"

	"github.com/san-kum/rigidsim/internal/geom"
)

type element[O comparable] struct {
	owner  O
	sub    int
	aabb   geom.AABB
	placed bool
	static bool
	live   bool
}

type endpoint struct {
	value float64
	id    ID
	min   bool
}

type pair struct {
	data  any
	stamp uint64
}

// SweepAndPrune sweeps element boxes along X. Endpoints persist between
// updates so the insertion sort only repairs what moved.
type SweepAndPrune[O comparable] struct {
	elements  []element[O]
	free      []ID
	endpoints []endpoint
	pairs     map[uint64]*pair
	active    []ID
	stamp     uint64

	onPair   PairFunc[O]
	onUnpair UnpairFunc[O]
}

func NewSweepAndPrune[O comparable]() *SweepAndPrune[O] {
	return &SweepAndPrune[O]{pairs: make(map[uint64]*pair)}
}

func (s *SweepAndPrune[O]) SetPairCallback(fn PairFunc[O])     { s.onPair = fn }
func (s *SweepAndPrune[O]) SetUnpairCallback(fn UnpairFunc[O]) { s.onUnpair = fn }

func (s *SweepAndPrune[O]) Create(owner O, subindex int) ID {
	e := element[O]{owner: owner, sub: subindex, live: true}
	if n := len(s.free); n > 0 {
		id := s.free[n-1]
		s.free = s.free[:n-1]
		s.elements[id-1] = e
		return id
	}
	s.elements = append(s.elements, e)
	return ID(len(s.elements))
}

func (s *SweepAndPrune[O]) get(id ID) *element[O] {
	if id == 0 || int(id) > len(s.elements) {
		return nil
	}
	e := &s.elements[id-1]
	if !e.live {
		return nil
	}
	return e
}

func (s *SweepAndPrune[O]) Move(id ID, aabb geom.AABB) {
	e := s.get(id)
	if e == nil {
		return
	}
	e.aabb = aabb
	if !e.placed {
		e.placed = true
		s.endpoints = append(s.endpoints,
			endpoint{value: aabb.Pos[0], id: id, min: true},
			endpoint{value: aabb.End()[0], id: id},
		)
	}
}

func (s *SweepAndPrune[O]) SetStatic(id ID, static bool) {
	if e := s.get(id); e != nil {
		e.static = static
	}
}

// Remove drops an element, firing unpair for every pair it was part of.
func (s *SweepAndPrune[O]) Remove(id ID) {
	e := s.get(id)
	if e == nil {
		return
	}

	var gone []uint64
	for k := range s.pairs {
		a, b := splitKey(k)
		if a == id || b == id {
			gone = append(gone, k)
		}
	}
	slices.Sort(gone)
	for _, k := range gone {
		s.unpair(k)
	}

	if e.placed {
		s.endpoints = slices.DeleteFunc(s.endpoints, func(ep endpoint) bool { return ep.id == id })
	}
	var zero element[O]
	s.elements[id-1] = zero
	s.free = append(s.free, id)
}

func (s *SweepAndPrune[O]) Update() {
	s.stamp++

	for i := range s.endpoints {
		ep := &s.endpoints[i]
		box := s.elements[ep.id-1].aabb
		if ep.min {
			ep.value = box.Pos[0]
		} else {
			ep.value = box.End()[0]
		}
	}
	insertionSort(s.endpoints)

	s.active = s.active[:0]
	for _, ep := range s.endpoints {
		if !ep.min {
			if i := slices.Index(s.active, ep.id); i >= 0 {
				s.active = slices.Delete(s.active, i, i+1)
			}
			continue
		}
		for _, other := range s.active {
			s.test(ep.id, other)
		}
		s.active = append(s.active, ep.id)
	}

	var gone []uint64
	for k, p := range s.pairs {
		if p.stamp != s.stamp {
			gone = append(gone, k)
		}
	}
	slices.Sort(gone)
	for _, k := range gone {
		s.unpair(k)
	}
}

func (s *SweepAndPrune[O]) test(a, b ID) {
	ea, eb := &s.elements[a-1], &s.elements[b-1]
	if ea.owner == eb.owner || (ea.static && eb.static) || !ea.aabb.Intersects(eb.aabb) {
		return
	}
	if a > b {
		a, b = b, a
		ea, eb = eb, ea
	}
	k := pairKey(a, b)
	if p, ok := s.pairs[k]; ok {
		p.stamp = s.stamp
		return
	}
	p := &pair{stamp: s.stamp}
	s.pairs[k] = p
	if s.onPair != nil {
		p.data = s.onPair(ea.owner, ea.sub, eb.owner, eb.sub)
	}
}

func (s *SweepAndPrune[O]) unpair(k uint64) {
	p := s.pairs[k]
	delete(s.pairs, k)
	a, b := splitKey(k)
	ea, eb := &s.elements[a-1], &s.elements[b-1]
	if s.onUnpair != nil {
		s.onUnpair(ea.owner, ea.sub, eb.owner, eb.sub, p.data)
	}
}

// CullAABB returns every placed element overlapping box, in ID order.
func (s *SweepAndPrune[O]) CullAABB(box geom.AABB) []Hit[O] {
	var out []Hit[O]
	for i := range s.elements {
		e := &s.elements[i]
		if e.live && e.placed && e.aabb.Intersects(box) {
			out = append(out, Hit[O]{Owner: e.owner, Subindex: e.sub})
		}
	}
	return out
}

func (s *SweepAndPrune[O]) PairCount() int { return len(s.pairs) }

func pairKey(a, b ID) uint64 { return uint64(a)<<32 | uint64(b) }

func splitKey(k uint64) (ID, ID) { return ID(k >> 32), ID(uint32(k)) }

// insertionSort orders by value with min endpoints first on ties, so boxes
// that only touch still pair.
func insertionSort(eps []endpoint) {
	for i := 1; i < len(eps); i++ {
		key := eps[i]
		j := i - 1
		for j >= 0 && less(key, eps[j]) {
			eps[j+1] = eps[j]
			j--
		}
		eps[j+1] = key
	}
}

func less(a, b endpoint) bool {
	if a.value != b.value {
		return a.value < b.value
	}
	return a.min && !b.min
}
