package loosetree

import (
	"testing"

	"github.com/fmstephe/collision-system/pkg/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkInvariants walks the whole tree verifying the structural invariants:
// every entry is contained in its node's loose bounds, entries sit in the
// deepest node which fits them, leaves respect capacity or the size floor,
// children come in full sets of four occupying the four quadrants, the entry
// count matches, and the root never falls below its construction size.
func checkInvariants[T comparable](t *testing.T, tree *Tree[T]) {
	t.Helper()
	total := 0
	var walk func(n *node[T])
	walk = func(n *node[T]) {
		total += len(n.entries)

		require.Equal(t, tree.minSize, n.minSize)
		require.Equal(t, tree.looseness, n.looseness)
		require.Equal(t, n.looseness*n.baseLength, n.adjLength)

		for _, e := range n.entries {
			require.True(t, n.bounds.Encapsulates(e.bounds),
				"entry %v at %s escapes its node %s", e.item, e.bounds, n.bounds)
		}

		if n.children == nil {
			if len(n.entries) > NODE_CAPACITY {
				require.Less(t, n.baseLength/2, n.minSize,
					"leaf %s exceeds capacity without being at the size floor", n.bounds)
			}
			return
		}

		require.Len(t, n.children, 4)
		for i, child := range n.children {
			require.NotNil(t, child)
			require.Equal(t, n.baseLength/2, child.baseLength)
			require.Equal(t, n.childBounds[i], child.bounds,
				"child %d of %s sits at %s, not its quadrant %s", i, n.bounds, child.bounds, n.childBounds[i])
		}
		for _, e := range n.entries {
			for i := range n.childBounds {
				require.False(t, n.childBounds[i].Encapsulates(e.bounds),
					"entry %v at %s fits child %d of %s but was kept above", e.item, e.bounds, i, n.bounds)
			}
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(tree.root)
	require.Equal(t, tree.count, total, "tree count disagrees with the entries reachable from the root")
	require.GreaterOrEqual(t, tree.root.baseLength, tree.initialSize)
}

// A child with children of its own must block merging, otherwise removing one
// entry could pull an oversized subtree into its parent
func TestMergeBlockedByGrandchild(t *testing.T) {
	tree := newTestTree()
	// A rectangle too large for any quadrant stays at the root
	big := geom.NewRect(geom.Vec2{X: 2, Y: 2}, 8, 8)
	require.NoError(t, tree.Add("big", big))
	// Nine clustered rectangles split twice below the root
	for name, r := range clusterRects() {
		require.NoError(t, tree.Add(name, r))
	}
	require.Equal(t, 3, tree.Depth())

	// Removing the root entry leaves nine entries two levels down; the
	// grandchildren must keep the root from merging
	assert.True(t, tree.Remove("big"))
	assert.Equal(t, 3, tree.Depth())
	assert.Equal(t, 9, tree.Count())
	checkInvariants(t, tree)
}

// A removal which empties all but one quadrant collapses the root onto the
// surviving child, one level per removal, until the construction size floor
func TestShrinkAfterRemoval(t *testing.T) {
	tree := newTestTree()
	require.NoError(t, tree.Add("a", unitRect(1, 1)))
	require.NoError(t, tree.Add("b", unitRect(-1, -1)))
	// Force the world to grow twice
	require.NoError(t, tree.Add("far", unitRect(30, 30)))
	require.Equal(t, 40.0, tree.root.baseLength)
	checkInvariants(t, tree)

	// With the distant entry gone the root collapses onto the quadrant
	// wrapping the original world
	assert.True(t, tree.Remove("far"))
	assert.Equal(t, 20.0, tree.root.baseLength)
	assert.Equal(t, 2, tree.Count())
	checkInvariants(t, tree)

	// The next removal shrinks the root in place back to the floor
	assert.True(t, tree.Remove("a"))
	assert.Equal(t, 10.0, tree.root.baseLength)
	assert.Equal(t, geom.Vec2{}, tree.root.center)
	assert.Equal(t, 1, tree.NodeCount())
	assert.True(t, tree.IsColliding(unitRect(-1, -1)))
	checkInvariants(t, tree)
}

// Entries spread across more than one quadrant must pin the root at its
// current size
func TestShrinkRefusedAcrossQuadrants(t *testing.T) {
	tree := newTestTree()
	require.NoError(t, tree.Add("a", unitRect(1, 1)))
	require.NoError(t, tree.Add("far", unitRect(30, 30)))
	require.NoError(t, tree.Add("gone", unitRect(30, 28)))
	length := tree.root.baseLength
	require.Greater(t, length, 10.0)

	assert.True(t, tree.Remove("gone"))
	assert.Equal(t, length, tree.root.baseLength)
	checkInvariants(t, tree)
}

// Repeated shrink applications only ever reduce the node count, and reach a
// fixed point at the construction size floor well within the 40 attempts
func TestShrinkConverges(t *testing.T) {
	tree := newTestTree()
	require.NoError(t, tree.Add("x", unitRect(1000, 1000)))
	require.NoError(t, tree.Add("y", unitRect(1001, 1001)))
	checkInvariants(t, tree)

	prev := tree.NodeCount()
	for i := 0; i < 40; i++ {
		tree.root = tree.root.shrinkIfPossible(tree.initialSize, tree.store)
		count := tree.NodeCount()
		assert.LessOrEqual(t, count, prev)
		prev = count
		checkInvariants(t, tree)
	}
	assert.True(t, tree.IsColliding(unitRect(1000, 1000)))
	assert.True(t, tree.IsColliding(unitRect(1001, 1001)))
	assert.Equal(t, 2, tree.Count())
}
