package loosetree

import (
	"github.com/fmstephe/collision-system/pkg/geom"
	"github.com/sirupsen/logrus"
)

// An entry pairs a caller supplied item with the rectangle it occupies.
// Items are opaque to the tree and compared only by equality.
type entry[T comparable] struct {
	item   T
	bounds geom.Rect
}

// A node is one square region of the subdivided world.
// A node stores every entry which fits inside its loose bounds but inside no
// deeper node, and owns either no children or exactly four of them, one per
// quadrant. All references point strictly downward. Nodes never reference
// their parent.
type node[T comparable] struct {
	// Side length of this node's square at looseness 1.
	// Children are created with half this length.
	baseLength float64

	// Actual side length of bounds, baseLength scaled by looseness.
	adjLength float64

	// Inherited configuration, identical across the whole tree.
	minSize   float64
	looseness float64

	center geom.Vec2

	// The loose square with side adjLength centred on center. Entries are
	// stored by containment in this rectangle, so when looseness > 1
	// siblings overlap.
	bounds geom.Rect

	entries []entry[T]

	// Either nil or exactly four children in quadrant order:
	// 0 top-left, 1 top-right, 2 bottom-left, 3 bottom-right.
	children []*node[T]

	// The loose bounds each child occupies, precomputed so the hot paths
	// never rebuild them.
	childBounds [4]geom.Rect
}

// Sets the geometry of n and recomputes every derived field.
// Called on construction and when the root shrinks in place.
func (n *node[T]) setValues(baseLength, minSize, looseness float64, center geom.Vec2) {
	n.baseLength = baseLength
	n.minSize = minSize
	n.looseness = looseness
	n.center = center
	n.adjLength = looseness * baseLength
	n.bounds = geom.NewRect(center, n.adjLength, n.adjLength)

	quarter := baseLength / 4
	childSide := looseness * baseLength / 2
	n.childBounds[0] = geom.NewRect(center.Add(geom.Vec2{X: -quarter, Y: quarter}), childSide, childSide)
	n.childBounds[1] = geom.NewRect(center.Add(geom.Vec2{X: quarter, Y: quarter}), childSide, childSide)
	n.childBounds[2] = geom.NewRect(center.Add(geom.Vec2{X: -quarter, Y: -quarter}), childSide, childSide)
	n.childBounds[3] = geom.NewRect(center.Add(geom.Vec2{X: quarter, Y: -quarter}), childSide, childSide)
}

// Returns the index of the quadrant containing p. Points on the centre lines
// go to the lower-numbered quadrant.
func (n *node[T]) bestFitChild(p geom.Vec2) int {
	i := 0
	if p.X > n.center.X {
		i++
	}
	if p.Y < n.center.Y {
		i += 2
	}
	return i
}

// Attempts to store the entry in this subtree.
// Returns false iff bounds does not fit inside this node's loose bounds.
func (n *node[T]) add(item T, bounds geom.Rect, store *nodeStore[T]) bool {
	if !n.bounds.Encapsulates(bounds) {
		return false
	}
	n.subAdd(item, bounds, store)
	return true
}

// Places an entry known to fit in this node, pushing it into the deepest
// child whose loose bounds still contain it.
func (n *node[T]) subAdd(item T, bounds geom.Rect, store *nodeStore[T]) {
	if n.children == nil {
		// Leaves hold entries directly until they reach capacity. A leaf
		// whose children would fall below the minimum node size never
		// splits and holds arbitrarily many.
		if len(n.entries) < NODE_CAPACITY || n.baseLength/2 < n.minSize {
			n.entries = append(n.entries, entry[T]{item: item, bounds: bounds})
			return
		}

		n.split(store)

		// Re-home existing entries into whichever child fully contains
		// them. Entries straddling child boundaries stay here.
		for i := len(n.entries) - 1; i >= 0; i-- {
			e := n.entries[i]
			best := n.bestFitChild(e.bounds.Center)
			if n.childBounds[best].Encapsulates(e.bounds) {
				n.children[best].subAdd(e.item, e.bounds, store)
				n.entries = append(n.entries[:i], n.entries[i+1:]...)
			}
		}
	}

	best := n.bestFitChild(bounds.Center)
	if n.childBounds[best].Encapsulates(bounds) {
		n.children[best].subAdd(item, bounds, store)
		return
	}
	n.entries = append(n.entries, entry[T]{item: item, bounds: bounds})
}

// Creates four empty leaf children, one per quadrant
func (n *node[T]) split(store *nodeStore[T]) {
	half := n.baseLength / 2
	children := make([]*node[T], 4)
	for i := range children {
		children[i] = store.allocNode(half, n.minSize, n.looseness, n.childBounds[i].Center)
	}
	n.children = children
}

// Installs children, which must be exactly the four quadrant nodes
func (n *node[T]) setChildren(children []*node[T]) {
	if len(children) != 4 {
		logrus.Errorf("loosetree: refusing to install %d children, a node needs exactly 4", len(children))
		return
	}
	n.children = children
}

// Removes the first entry whose item equals item, searching this whole
// subtree. Returns whether a removal occurred.
func (n *node[T]) remove(item T, store *nodeStore[T]) bool {
	removed := n.removeLocal(item)
	if !removed {
		for _, child := range n.children {
			if child.remove(item, store) {
				removed = true
				break
			}
		}
	}
	if removed && n.children != nil && n.shouldMerge() {
		n.merge(store)
	}
	return removed
}

// Removes item by descending only the nodes whose loose bounds contain
// bounds. Returns false immediately when bounds does not fit in this node.
func (n *node[T]) removeAt(item T, bounds geom.Rect, store *nodeStore[T]) bool {
	if !n.bounds.Encapsulates(bounds) {
		return false
	}
	return n.subRemove(item, bounds, store)
}

func (n *node[T]) subRemove(item T, bounds geom.Rect, store *nodeStore[T]) bool {
	removed := n.removeLocal(item)
	if !removed {
		// An entry lies inside the loose bounds of every node above it, so
		// only children whose loose bounds contain bounds can hold it. This
		// is not always the best-fit child: an old root wrapped by grow can
		// hold entries whose centres lie in a neighbouring quadrant.
		for i, child := range n.children {
			if n.childBounds[i].Encapsulates(bounds) && child.subRemove(item, bounds, store) {
				removed = true
				break
			}
		}
	}
	if removed && n.children != nil && n.shouldMerge() {
		n.merge(store)
	}
	return removed
}

// Removes the first local entry equal to item
func (n *node[T]) removeLocal(item T) bool {
	for i := range n.entries {
		if n.entries[i].item == item {
			n.entries = append(n.entries[:i], n.entries[i+1:]...)
			return true
		}
	}
	return false
}

// A subtree merges only when this node and its direct children together hold
// no more than NODE_CAPACITY entries. A child with children of its own blocks
// the merge outright - the grandchild proves the subtree was too populous to
// merge when the grandchild was created.
func (n *node[T]) shouldMerge() bool {
	total := len(n.entries)
	for _, child := range n.children {
		if child.children != nil {
			return false
		}
		total += len(child.entries)
	}
	return total <= NODE_CAPACITY
}

// Moves every direct child's entries into this node and drops the children.
// shouldMerge guarantees the children are leaves.
func (n *node[T]) merge(store *nodeStore[T]) {
	for _, child := range n.children {
		n.entries = append(n.entries, child.entries...)
		store.freeNode(child)
	}
	n.children = nil
}

// Indicates whether any entry in this subtree overlaps query
func (n *node[T]) isColliding(query geom.Rect) bool {
	if !n.bounds.Overlaps(query) {
		return false
	}
	for i := range n.entries {
		if n.entries[i].bounds.Overlaps(query) {
			return true
		}
	}
	for _, child := range n.children {
		if child.isColliding(query) {
			return true
		}
	}
	return false
}

// Appends the item of every entry in this subtree overlapping query to out
func (n *node[T]) getColliding(query geom.Rect, out *[]T) {
	if !n.bounds.Overlaps(query) {
		return
	}
	for i := range n.entries {
		if n.entries[i].bounds.Overlaps(query) {
			*out = append(*out, n.entries[i].item)
		}
	}
	for _, child := range n.children {
		child.getColliding(query, out)
	}
}

// Calls fun on every entry in this subtree overlapping query until fun
// returns false
func (n *node[T]) survey(query geom.Rect, fun func(item T, bounds geom.Rect) bool) bool {
	if !n.bounds.Overlaps(query) {
		return true
	}
	for i := range n.entries {
		e := &n.entries[i]
		if e.bounds.Overlaps(query) && !fun(e.item, e.bounds) {
			return false
		}
	}
	for _, child := range n.children {
		if !child.survey(query, fun) {
			return false
		}
	}
	return true
}

// Appends the item of every entry in this subtree lying at least partially
// inside all of planes to out. Subtrees whose loose bounds lie fully outside
// any plane are pruned.
func (n *node[T]) getWithinFrustum(planes []geom.Plane, out *[]T) {
	if !geom.RectWithinPlanes(planes, n.bounds) {
		return
	}
	for i := range n.entries {
		if geom.RectWithinPlanes(planes, n.entries[i].bounds) {
			*out = append(*out, n.entries[i].item)
		}
	}
	for _, child := range n.children {
		child.getWithinFrustum(planes, out)
	}
}

// Indicates whether this subtree stores any entry at all
func (n *node[T]) hasAnyEntries() bool {
	if len(n.entries) > 0 {
		return true
	}
	for _, child := range n.children {
		if child.hasAnyEntries() {
			return true
		}
	}
	return false
}

// Called on the root after a removal. Returns the node which should serve as
// the root afterwards: this node, possibly shrunk in place, or the single
// child holding all remaining content. The caller owns whatever is returned;
// discarded nodes go back to the store.
func (n *node[T]) shrinkIfPossible(initialSize float64, store *nodeStore[T]) *node[T] {
	// Never shrink the root below its construction size
	if n.baseLength < 2*initialSize {
		return n
	}
	// An empty world keeps its current extent
	if len(n.entries) == 0 && n.children == nil {
		return n
	}

	// Every local entry must best-fit the same quadrant and each must fit
	// entirely inside that quadrant's loose bounds.
	target := -1
	for i := range n.entries {
		best := n.bestFitChild(n.entries[i].bounds.Center)
		if i == 0 {
			target = best
		} else if best != target {
			return n
		}
		if !n.childBounds[target].Encapsulates(n.entries[i].bounds) {
			return n
		}
	}

	// At most one child may hold content, and it must sit in the same
	// quadrant the local entries picked.
	if n.children != nil {
		childHadContent := false
		for i, child := range n.children {
			if !child.hasAnyEntries() {
				continue
			}
			if childHadContent {
				return n
			}
			if target >= 0 && target != i {
				return n
			}
			childHadContent = true
			target = i
		}
	}

	if n.children == nil {
		if target >= 0 {
			// No child to adopt, so shrink this node onto the target quadrant
			n.setValues(n.baseLength/2, n.minSize, n.looseness, n.childBounds[target].Center)
		}
		return n
	}

	if target == -1 {
		return n
	}

	next := n.children[target]
	for i, child := range n.children {
		if i != target {
			store.freeSubtree(child)
		}
	}
	n.children = nil
	store.freeNode(n)
	return next
}
