// Package broadphase finds candidate shape pairs whose world boxes overlap.
//
// The physics core only sees the BroadPhase interface: it registers one
// element per shape, moves elements as objects move and is told through
// callbacks when two elements start or stop overlapping.
package broadphase

import "github.com/san-kum/rigidsim/internal/geom"

// ID names an element. Zero is never issued.
type ID uint32

// PairFunc is called when two elements start overlapping. Its return value
// is stored and handed back to the matching UnpairFunc.
type PairFunc[O comparable] func(a O, subA int, b O, subB int) any

type UnpairFunc[O comparable] func(a O, subA int, b O, subB int, data any)

// Hit is one result of CullAABB.
type Hit[O comparable] struct {
	Owner    O
	Subindex int
}

type BroadPhase[O comparable] interface {
	Create(owner O, subindex int) ID
	Move(id ID, aabb geom.AABB)
	SetStatic(id ID, static bool)
	Remove(id ID)

	// Update recomputes overlaps and fires pair/unpair callbacks.
	Update()

	CullAABB(aabb geom.AABB) []Hit[O]
	PairCount() int

	SetPairCallback(fn PairFunc[O])
	SetUnpairCallback(fn UnpairFunc[O])
}
