package loosetree

import (
	"github.com/fmstephe/collision-system/pkg/geom"
	"github.com/fmstephe/flib/fmath"
)

// Nodes churn as the tree reshapes itself. Split and grow create four at a
// time, merge and shrink discard them again. The nodeStore recycles discarded
// nodes through a free list and allocates fresh ones in slabs, so steady-state
// reshaping allocates nothing.

// The smallest slab we will allocate. Slabs double from here.
const minSlabSize = 8

type nodeStore[T comparable] struct {
	allocated int64
	free      []*node[T]
}

func newNodeStore[T comparable]() *nodeStore[T] {
	return &nodeStore[T]{}
}

// Returns an empty leaf node with the given geometry
func (s *nodeStore[T]) allocNode(baseLength, minSize, looseness float64, center geom.Vec2) *node[T] {
	if len(s.free) == 0 {
		s.newSlab()
	}
	n := s.free[len(s.free)-1]
	s.free = s.free[:len(s.free)-1]
	n.setValues(baseLength, minSize, looseness, center)
	return n
}

// Carves a new slab of nodes onto the free list. Each slab holds the number of
// nodes allocated so far plus minSlabSize, rounded up to a power of two.
func (s *nodeStore[T]) newSlab() {
	size := fmath.NxtPowerOfTwo(s.allocated + minSlabSize)
	slab := make([]node[T], size)
	for i := range slab {
		s.free = append(s.free, &slab[i])
	}
	s.allocated += size
}

// Returns n to the free list. The caller must hold no other reference to n.
func (s *nodeStore[T]) freeNode(n *node[T]) {
	entries := n.entries[:0]
	*n = node[T]{}
	// Hold on to the entry backing array for the node's next life
	n.entries = entries
	s.free = append(s.free, n)
}

// Returns n and every node below it to the free list
func (s *nodeStore[T]) freeSubtree(n *node[T]) {
	for _, child := range n.children {
		s.freeSubtree(child)
	}
	n.children = nil
	s.freeNode(n)
}
