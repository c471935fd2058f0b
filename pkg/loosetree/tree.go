package loosetree

import (
	"fmt"

	"github.com/fmstephe/collision-system/pkg/geom"
	"github.com/sirupsen/logrus"
)

// A Tree is a dynamic loose quadtree indexing axis-aligned rectangles.
// Callers associate items with rectangles; the tree answers overlap and
// containment queries. As contents change the tree reshapes itself - it grows
// outward when an insert falls outside the current extent, splits nodes when
// they become crowded, and merges or collapses subtrees when they thin out.
//
// A Tree is not safe for concurrent use. Every operation runs synchronously
// on the calling goroutine; callers who need concurrency must wrap the tree
// externally.
type Tree[T comparable] struct {
	root *node[T]

	// Side length of the world at construction. The root never shrinks
	// below this.
	initialSize float64

	// Inherited by every node
	minSize   float64
	looseness float64

	count int

	store *nodeStore[T]
}

// Returns a new empty Tree whose world is a square with side
// initialWorldSize centred at initialWorldCenter.
//
// minNodeSize is the smallest side length a node may have; it bounds the
// depth of the tree and is clamped to initialWorldSize if larger. looseness
// scales every node's bounds and is clamped into [1, 2]; at 1 children are
// disjoint, above 1 they overlap.
func New[T comparable](initialWorldSize float64, initialWorldCenter geom.Vec2, minNodeSize, looseness float64) *Tree[T] {
	if minNodeSize > initialWorldSize {
		logrus.Warnf("loosetree: minimum node size %v is larger than the initial world size %v, clamping to the world size", minNodeSize, initialWorldSize)
		minNodeSize = initialWorldSize
	}
	if looseness < 1 {
		looseness = 1
	}
	if looseness > 2 {
		looseness = 2
	}
	t := &Tree[T]{
		initialSize: initialWorldSize,
		minSize:     minNodeSize,
		looseness:   looseness,
		store:       newNodeStore[T](),
	}
	t.root = t.store.allocNode(initialWorldSize, minNodeSize, looseness, initialWorldCenter)
	return t
}

// Inserts item occupying bounds. If bounds lies outside the current world the
// tree doubles the root toward it, repeatedly if necessary. An error is
// returned only when GROW_ATTEMPT_LIMIT grows in a row still cannot fit
// bounds, which finite input cannot trigger; the entry is not inserted then.
func (t *Tree[T]) Add(item T, bounds geom.Rect) error {
	for grows := 0; !t.root.add(item, bounds, t.store); grows++ {
		if grows >= GROW_ATTEMPT_LIMIT {
			return fmt.Errorf("cannot add %v with bounds %s, world failed to fit it after growing %d times", item, bounds, grows)
		}
		t.grow(bounds.Center.Sub(t.root.center))
	}
	t.count++
	return nil
}

// Removes the first entry whose item equals item, scanning the whole tree.
// Returns whether a removal occurred. Prefer RemoveAt when the entry's
// rectangle is at hand.
func (t *Tree[T]) Remove(item T) bool {
	removed := t.root.remove(item, t.store)
	if removed {
		t.count--
		t.root = t.root.shrinkIfPossible(t.initialSize, t.store)
	}
	return removed
}

// Removes the first entry whose item equals item, descending only the nodes
// whose loose bounds contain bounds. Returns whether a removal occurred.
func (t *Tree[T]) RemoveAt(item T, bounds geom.Rect) bool {
	removed := t.root.removeAt(item, bounds, t.store)
	if removed {
		t.count--
		t.root = t.root.shrinkIfPossible(t.initialSize, t.store)
	}
	return removed
}

// Indicates whether any stored entry overlaps bounds
func (t *Tree[T]) IsColliding(bounds geom.Rect) bool {
	return t.root.isColliding(bounds)
}

// Appends every item whose entry overlaps bounds to out.
// The order of appended items is unspecified.
func (t *Tree[T]) GetColliding(bounds geom.Rect, out *[]T) {
	t.root.getColliding(bounds, out)
}

// Appends every item whose entry lies at least partially inside each of planes
// to out. Planes are oriented so that inside is the intersection of their
// positive half-spaces. Each plane is tested on its own, so an entry outside
// that intersection but not fully outside any single plane is also appended.
func (t *Tree[T]) GetWithinFrustum(planes []geom.Plane, out *[]T) {
	t.root.getWithinFrustum(planes, out)
}

// Applies fun to every entry overlapping bounds. Surveying stops early when
// fun returns false.
func (t *Tree[T]) SurveyColliding(bounds geom.Rect, fun func(item T, bounds geom.Rect) bool) {
	t.root.survey(bounds, fun)
}

// Returns the number of entries stored in this tree
func (t *Tree[T]) Count() int {
	return t.count
}

// Returns the loose bounds of the root, the current extent of the world
func (t *Tree[T]) MaxBounds() geom.Rect {
	return t.root.bounds
}

// Doubles the world away from the root's centre, toward direction. The old
// root becomes the child occupying its own quadrant of the new root; the
// other three slots are filled with fresh empty leaves. An old root with no
// content at all is simply discarded and the doubled root stands alone.
func (t *Tree[T]) grow(direction geom.Vec2) {
	// A zero direction component grows toward positive
	xDir, yDir := 1.0, 1.0
	if direction.X < 0 {
		xDir = -1
	}
	if direction.Y < 0 {
		yDir = -1
	}

	old := t.root
	half := old.baseLength / 2
	center := old.center.Add(geom.Vec2{X: xDir * half, Y: yDir * half})
	t.root = t.store.allocNode(old.baseLength*2, t.minSize, t.looseness, center)

	if !old.hasAnyEntries() {
		t.store.freeSubtree(old)
		return
	}

	rootQuadrant := t.root.bestFitChild(old.center)
	children := make([]*node[T], 4)
	for i := range children {
		if i == rootQuadrant {
			children[i] = old
			continue
		}
		children[i] = t.store.allocNode(old.baseLength, t.minSize, t.looseness, t.root.childBounds[i].Center)
	}
	t.root.setChildren(children)
}
