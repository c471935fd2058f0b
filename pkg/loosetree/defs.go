package loosetree

import "github.com/fmstephe/collision-system/pkg/geom"

// The number of entries a leaf tolerates before it splits into four children.
// Leaves whose children would fall below the minimum node size ignore this
// limit and hold arbitrarily many entries.
const NODE_CAPACITY = 8

// The number of consecutive world grows a single Add may trigger before the
// tree gives up. Finite rectangles always fit long before this, so hitting
// the limit indicates NaN or otherwise absurd input.
const GROW_ATTEMPT_LIMIT = 20

// Public interface for loose quadtrees.
type Index[T comparable] interface {
	// Inserts item occupying bounds, growing the world outward if needed
	Add(item T, bounds geom.Rect) error
	// Removes the first entry whose item equals item, searching the whole tree
	Remove(item T) bool
	// Removes item by descending only the nodes which could contain bounds
	RemoveAt(item T, bounds geom.Rect) bool
	// Indicates whether any stored entry overlaps bounds
	IsColliding(bounds geom.Rect) bool
	// Appends every item whose entry overlaps bounds to out
	GetColliding(bounds geom.Rect, out *[]T)
	// Appends every item whose entry passes the half-plane test to out
	GetWithinFrustum(planes []geom.Plane, out *[]T)
	// Applies fun to every entry overlapping bounds until fun returns false
	SurveyColliding(bounds geom.Rect, fun func(item T, bounds geom.Rect) bool)
	// Returns the number of entries stored in this tree
	Count() int
	// Returns the loose bounds of the root, the current world extent
	MaxBounds() geom.Rect
	// Provides a human readable (as far as possible) string representation of this tree
	String() string
}
