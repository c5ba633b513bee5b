package octree

import (
	"testing"

	"github.com/maja42/vmath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forceSplitPointTree(t *testing.T) *PointTree[int] {
	t.Helper()
	tree := NewPointTree[int](16, vmath.Vec3f{0, 0, 0}, 0.25)
	positions := []vmath.Vec3f{
		{2, 2, 2}, {-2, 2, 2}, {2, -2, 2}, {2, 2, -2},
		{-2, -2, 2}, {-2, 2, -2}, {2, -2, -2}, {-2, -2, -2},
		{3, 3, 3},
	}
	for i, p := range positions {
		require.True(t, tree.Add(i, p))
	}
	require.NotNil(t, tree.root.children)
	return tree
}

func TestPointNodeAddRejectsOutsideLooseCube(t *testing.T) {
	tree := NewPointTree[string](4, vmath.Vec3f{0, 0, 0}, 1)
	ok := tree.root.add("far", vmath.Vec3f{100, 100, 100})
	assert.False(t, ok)
	assert.Equal(t, 0, tree.root.count())
}

func TestPointNodeSplitEmptiesOwnEntries(t *testing.T) {
	tree := forceSplitPointTree(t)
	// spec.md §4.2: since a point is never admissible to a child's loose
	// cube without also belonging there, split should fully empty ownEntries.
	assert.Empty(t, tree.root.ownEntries)
	assert.Equal(t, 9, tree.root.count())
}

func TestPointNodeMergeCollapsesChildren(t *testing.T) {
	tree := forceSplitPointTree(t)
	before := tree.root.count()

	tree.root.merge()

	assert.Nil(t, tree.root.children)
	assert.Nil(t, tree.root.childEntries)
	assert.Equal(t, before, tree.root.count())
}

func TestPointNodeRemoveDescendsViaChildEntries(t *testing.T) {
	tree := forceSplitPointTree(t)
	s, ok := tree.root.childEntries[0]
	require.True(t, ok)
	child := tree.root.children[s]
	require.True(t, child.contains(0))

	removed := tree.root.remove(0, true, false)
	assert.True(t, removed)
	assert.False(t, tree.root.contains(0))
	assert.False(t, child.contains(0))
}

func TestPointNodeFindBestMatchRespectsNodeFilter(t *testing.T) {
	tree := forceSplitPointTree(t)
	rootLength := tree.root.boxInfo.Length

	nodeFilter := func(centre vmath.Vec3f, length float32) bool {
		// only ever consider the root itself (reject every child node)
		return length == rootLength
	}
	_, _, found := tree.FindBestMatch(nodeFilter, nil, func(k int, p vmath.Vec3f) (float32, bool) {
		return 0, true
	})
	// every entry lives in a child once the root has split, and
	// ownEntries at the root is empty, so a root-only node filter finds
	// nothing to score
	assert.False(t, found)

	// a permissive filter that accepts every node finds something again
	_, _, found = tree.FindBestMatch(nil, nil, func(k int, p vmath.Vec3f) (float32, bool) {
		return vecSquareLength(p), true
	})
	assert.True(t, found)
}
