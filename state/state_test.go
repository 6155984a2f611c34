package state

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scalar(v uint64) fr.Element {
	var elem fr.Element
	elem.SetUint64(v)
	return elem
}

func TestRootStoreBound(t *testing.T) {
	store, err := NewRootStore(4)
	require.NoError(t, err)

	for i := uint64(1); i <= 7; i++ {
		require.NoError(t, store.Add(scalar(i)))
	}

	assert.Equal(t, 4, store.Len())
	for i := uint64(1); i <= 3; i++ {
		assert.False(t, store.Contains(scalar(i)), "root %d should have been evicted", i)
	}
	for i := uint64(4); i <= 7; i++ {
		assert.True(t, store.Contains(scalar(i)), "root %d should be retained", i)
	}
}

func TestRootStoreEvictionOrder(t *testing.T) {
	store, err := NewRootStore(2)
	require.NoError(t, err)

	require.NoError(t, store.Add(scalar(1)))
	require.NoError(t, store.Add(scalar(2)))
	require.NoError(t, store.Add(scalar(3)))

	assert.False(t, store.Contains(scalar(1)))
	assert.True(t, store.Contains(scalar(2)))
	assert.True(t, store.Contains(scalar(3)))
}

func TestRootStoreDuplicate(t *testing.T) {
	store, err := NewRootStore(4)
	require.NoError(t, err)

	require.NoError(t, store.Add(scalar(1)))
	assert.ErrorIs(t, store.Add(scalar(1)), ErrDuplicateRoot)
	assert.Equal(t, 1, store.Len())
}

func TestRootStoreRequire(t *testing.T) {
	store, err := NewRootStore(4)
	require.NoError(t, err)
	require.NoError(t, store.Add(scalar(1)))

	assert.NoError(t, store.Require(scalar(1)))
	assert.ErrorIs(t, store.Require(scalar(2)), ErrRootNotFound)
}

func TestRootStoreCapacity(t *testing.T) {
	_, err := NewRootStore(1)
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestRootStoreClone(t *testing.T) {
	store, err := NewRootStore(3)
	require.NoError(t, err)
	require.NoError(t, store.Add(scalar(1)))

	dup := store.Clone()
	require.NoError(t, dup.Add(scalar(2)))

	assert.False(t, store.Contains(scalar(2)))
	assert.True(t, dup.Contains(scalar(1)))
	assert.True(t, dup.Contains(scalar(2)))
}

func TestNullifierIrreversibility(t *testing.T) {
	set := NewNullifierSet()

	require.NoError(t, set.Publish(scalar(11)))
	assert.True(t, set.IsPublished(scalar(11)))
	assert.ErrorIs(t, set.Publish(scalar(11)), ErrNullifierAlreadyPublished)
	assert.True(t, set.IsPublished(scalar(11)), "failed publish must not remove the nullifier")
	assert.Equal(t, 1, set.Len())
}

func TestNullifierPublishAllAtomic(t *testing.T) {
	set := NewNullifierSet()
	require.NoError(t, set.Publish(scalar(1)))

	err := set.PublishAll([]fr.Element{scalar(2), scalar(3), scalar(1)})
	assert.ErrorIs(t, err, ErrNullifierAlreadyPublished)
	assert.False(t, set.IsPublished(scalar(2)), "rejected batch must not partially publish")
	assert.False(t, set.IsPublished(scalar(3)))

	err = set.PublishAll([]fr.Element{scalar(4), scalar(4)})
	assert.ErrorIs(t, err, ErrNullifierAlreadyPublished)
	assert.False(t, set.IsPublished(scalar(4)))
}

func TestNullifierDigestEvolves(t *testing.T) {
	set := NewNullifierSet()
	empty := set.Digest()

	require.NoError(t, set.Publish(scalar(5)))
	one := set.Digest()
	assert.NotEqual(t, empty, one)

	require.NoError(t, set.Publish(scalar(6)))
	assert.NotEqual(t, one, set.Digest())

	// publication order is bound into the digest
	other := NewNullifierSet()
	require.NoError(t, other.Publish(scalar(6)))
	require.NoError(t, other.Publish(scalar(5)))
	assert.NotEqual(t, set.Digest(), other.Digest())
}

func TestNullifierDigestContinuation(t *testing.T) {
	set := NewNullifierSet()
	require.NoError(t, set.Publish(scalar(5)))

	resumed := NewNullifierSetFromDigest(set.Digest())
	assert.Equal(t, 0, resumed.Len(), "membership is not carried by the digest")

	require.NoError(t, set.Publish(scalar(6)))
	require.NoError(t, resumed.Publish(scalar(6)))
	assert.Equal(t, set.Digest(), resumed.Digest(), "digest chain resumes where it left off")
}

func TestDepositQueueBound(t *testing.T) {
	queue := NewDepositQueue(2)

	require.NoError(t, queue.Push(scalar(1)))
	require.NoError(t, queue.Push(scalar(2)))
	assert.ErrorIs(t, queue.Push(scalar(3)), ErrQueueFull)
	assert.Equal(t, 2, queue.Len())
}

func TestDepositQueueDrainOrder(t *testing.T) {
	queue := NewDepositQueue(3)
	require.NoError(t, queue.Push(scalar(1)))
	require.NoError(t, queue.Push(scalar(2)))

	snapshot := queue.Snapshot()
	assert.Equal(t, 2, queue.Len(), "snapshot must not drain")

	drained := queue.DrainAll()
	assert.Equal(t, snapshot, drained)
	assert.Equal(t, []fr.Element{scalar(1), scalar(2)}, drained)
	assert.Equal(t, 0, queue.Len())

	require.NoError(t, queue.Push(scalar(3)), "drained queue accepts new deposits")
}

func TestGenesisState(t *testing.T) {
	st, err := New(10, 4, 8)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), st.BlockHeight)
	assert.Equal(t, uint64(0), st.Records.LeafCount())
	assert.True(t, st.Roots.Contains(st.Records.Root()), "genesis root must be in history")
	assert.Equal(t, 8, st.Deposits.Cap())
}
