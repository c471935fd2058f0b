package loosetree

import (
	"testing"

	"github.com/fmstephe/collision-system/pkg/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeStoreReuse(t *testing.T) {
	store := newNodeStore[string]()
	n1 := store.allocNode(10, 1, 1.25, geom.Vec2{})
	n1.entries = append(n1.entries, entry[string]{item: "a", bounds: unitRect(0, 0)})
	store.freeNode(n1)

	// The free list is LIFO, so the freed node comes straight back, zeroed
	// and carrying its new geometry
	n2 := store.allocNode(4, 1, 1.5, geom.Vec2{X: 2})
	assert.Same(t, n1, n2)
	assert.Empty(t, n2.entries)
	assert.Nil(t, n2.children)
	assert.Equal(t, 6.0, n2.adjLength)
	assert.Equal(t, geom.Vec2{X: 2}, n2.center)
}

func TestNodeStoreSlabGrowth(t *testing.T) {
	store := newNodeStore[int]()
	seen := map[*node[int]]bool{}
	for i := 0; i < 100; i++ {
		n := store.allocNode(10, 1, 1.25, geom.Vec2{})
		require.False(t, seen[n], "allocated the same node twice")
		seen[n] = true
	}
	assert.GreaterOrEqual(t, store.allocated, int64(100))
}

func TestNodeStoreFreeSubtree(t *testing.T) {
	store := newNodeStore[string]()
	root := store.allocNode(8, 1, 1.25, geom.Vec2{})
	root.split(store)
	root.children[0].split(store)
	require.Equal(t, 9, root.nodeCount())

	store.freeSubtree(root)
	assert.Len(t, store.free, int(store.allocated))
}
