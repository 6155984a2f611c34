package accumulator

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianlabs/shieldpool/rescue"
)

func scalar(v uint64) fr.Element {
	var elem fr.Element
	elem.SetUint64(v)
	return elem
}

func scalars(vs ...uint64) []fr.Element {
	out := make([]fr.Element, len(vs))
	for i := range vs {
		out[i] = scalar(vs[i])
	}
	return out
}

// referenceRoot folds a fully materialized ternary tree bottom-up. A subtree
// containing no leaves has value 0 and is never hashed; an occupied node
// hashes its children, empty ones contributing 0.
func referenceRoot(height int, leaves []fr.Element) fr.Element {
	level := make([]fr.Element, pow3(height))
	occupied := make([]bool, pow3(height))
	for i := range leaves {
		level[i] = rescue.HashLeaf(uint64(i), leaves[i])
		occupied[i] = true
	}

	for len(level) > 1 {
		next := make([]fr.Element, len(level)/3)
		nextOccupied := make([]bool, len(level)/3)
		for i := range next {
			if occupied[3*i] || occupied[3*i+1] || occupied[3*i+2] {
				next[i] = rescue.Hash3(level[3*i], level[3*i+1], level[3*i+2])
				nextOccupied[i] = true
			}
		}
		level = next
		occupied = nextOccupied
	}

	return level[0]
}

func TestUpdateMatchesReferenceTree(t *testing.T) {
	tree, err := New(3)
	require.NoError(t, err)

	leaves := scalars(1, 2, 3, 4, 5)
	require.NoError(t, tree.Update(leaves))

	expected := referenceRoot(3, leaves)
	root := tree.Root()
	assert.True(t, expected.Equal(&root), "incremental root must match fully materialized tree")
	assert.Equal(t, uint64(5), tree.LeafCount())
}

func TestUpdateBatchSplitInvariance(t *testing.T) {
	oneShot, err := New(4)
	require.NoError(t, err)
	require.NoError(t, oneShot.Update(scalars(10, 11, 12, 13, 14, 15, 16)))

	split, err := New(4)
	require.NoError(t, err)
	require.NoError(t, split.Update(scalars(10, 11, 12, 13)))
	require.NoError(t, split.Update(scalars(14, 15, 16)))

	a, b := oneShot.Root(), split.Root()
	assert.True(t, a.Equal(&b), "root must depend only on the leaf sequence, not batch boundaries")
	assert.Equal(t, oneShot.Frontier(), split.Frontier())
	assert.Equal(t, oneShot.FrontierCommitment(), split.FrontierCommitment())
}

func TestUpdateMatchesReferenceAcrossFills(t *testing.T) {
	// two-batch fills straddling subtree boundaries at several heights
	cases := []struct {
		height        uint8
		before, after int
	}{
		{3, 0, 4},
		{3, 0, 5},
		{3, 1, 26},
		{3, 9, 1},
		{3, 10, 17},
		{3, 25, 2},
		{4, 6, 30},
		{2, 3, 1},
	}

	for _, tc := range cases {
		total := tc.before + tc.after
		leaves := make([]fr.Element, total)
		for i := range leaves {
			leaves[i] = scalar(uint64(i + 1))
		}

		tree, err := New(tc.height)
		require.NoError(t, err)
		require.NoError(t, tree.Update(leaves[:tc.before]))
		require.NoError(t, tree.Update(leaves[tc.before:]))

		expected := referenceRoot(int(tc.height), leaves)
		root := tree.Root()
		assert.True(t, expected.Equal(&root), "height %d, batches %d+%d", tc.height, tc.before, tc.after)
	}
}

func TestUpdateAcrossSubtreeBoundary(t *testing.T) {
	// crossing from the left subtree into the middle subtree of the root
	tree, err := New(2)
	require.NoError(t, err)
	require.NoError(t, tree.Update(scalars(1, 2, 3)))
	require.NoError(t, tree.Update(scalars(4)))

	expected := referenceRoot(2, scalars(1, 2, 3, 4))
	root := tree.Root()
	assert.True(t, expected.Equal(&root))
}

func TestUpdateEmptyBatch(t *testing.T) {
	tree, err := New(3)
	require.NoError(t, err)
	require.NoError(t, tree.Update(scalars(1, 2)))

	before := tree.Root()
	require.NoError(t, tree.Update(nil))
	after := tree.Root()

	assert.True(t, before.Equal(&after))
	assert.Equal(t, uint64(2), tree.LeafCount())
}

func TestTreeFullBoundary(t *testing.T) {
	for height := uint8(2); height <= 10; height++ {
		tree, err := New(height)
		require.NoError(t, err)

		capacity := tree.Capacity()
		err = tree.Update(make([]fr.Element, capacity+1))
		assert.ErrorIs(t, err, ErrTreeFull, "height %d", height)
		assert.Equal(t, uint64(0), tree.LeafCount(), "failed update must not mutate state")
	}
}

func TestTreeFullExactCapacity(t *testing.T) {
	tree, err := New(2)
	require.NoError(t, err)

	require.NoError(t, tree.Update(make([]fr.Element, 9)))
	assert.Equal(t, uint64(9), tree.LeafCount())

	err = tree.Update(scalars(1))
	assert.ErrorIs(t, err, ErrTreeFull)
}

func TestInvalidFrontierDetected(t *testing.T) {
	tree, err := New(3)
	require.NoError(t, err)
	require.NoError(t, tree.Update(scalars(1, 2, 3)))

	tree.frontier[1].SetUint64(999)

	err = tree.Update(scalars(4))
	assert.ErrorIs(t, err, ErrInvalidFrontier)
}

func TestCloneIndependence(t *testing.T) {
	tree, err := New(3)
	require.NoError(t, err)
	require.NoError(t, tree.Update(scalars(1, 2)))

	dup := tree.Clone()
	require.NoError(t, dup.Update(scalars(3, 4)))

	assert.Equal(t, uint64(2), tree.LeafCount())
	assert.Equal(t, uint64(4), dup.LeafCount())

	a, b := tree.Root(), dup.Root()
	assert.False(t, a.Equal(&b))
}

func TestRestoreRoundTrip(t *testing.T) {
	tree, err := New(3)
	require.NoError(t, err)
	require.NoError(t, tree.Update(scalars(1, 2, 3, 4, 5)))

	restored, err := Restore(tree.Height(), tree.Root(), tree.LeafCount(), tree.Frontier())
	require.NoError(t, err)
	assert.Equal(t, tree.FrontierCommitment(), restored.FrontierCommitment())

	require.NoError(t, tree.Update(scalars(6)))
	require.NoError(t, restored.Update(scalars(6)))

	a, b := tree.Root(), restored.Root()
	assert.True(t, a.Equal(&b), "restored accumulator must continue identically")
}

func TestRestoreRejectsMalformedFrontier(t *testing.T) {
	_, err := Restore(3, fr.Element{}, 5, scalars(1, 2, 3))
	assert.ErrorIs(t, err, ErrInvalidFrontier)

	_, err = Restore(3, fr.Element{}, 0, scalars(1))
	assert.ErrorIs(t, err, ErrInvalidFrontier)
}

func TestNewRejectsBadHeight(t *testing.T) {
	_, err := New(0)
	assert.ErrorIs(t, err, ErrInvalidHeight)

	_, err = New(MaxHeight + 1)
	assert.ErrorIs(t, err, ErrInvalidHeight)
}

func TestLeafOrderSensitivity(t *testing.T) {
	forward, err := New(2)
	require.NoError(t, err)
	require.NoError(t, forward.Update(scalars(1, 2)))

	reversed, err := New(2)
	require.NoError(t, err)
	require.NoError(t, reversed.Update(scalars(2, 1)))

	a, b := forward.Root(), reversed.Root()
	assert.False(t, a.Equal(&b), "leaf positions are bound into leaf hashes")
}
