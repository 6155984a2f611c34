//go:build integration

package store

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	uuid "github.com/kthomas/go.uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianlabs/shieldpool/accumulator"
	"github.com/meridianlabs/shieldpool/ledger"
)

// requires a provisioned database per the DATABASE_* env vars and the
// snapshots table from ops/migrations applied via cmd/migrate

func TestSnapshotRoundTrip(t *testing.T) {
	id, _ := uuid.NewV4()
	store := InitSnapshotStore(id)

	tree, err := accumulator.New(8)
	require.NoError(t, err)
	require.NoError(t, tree.Update(make([]fr.Element, 3)))

	snapshot := &ledger.Snapshot{
		BlockHeight:        1,
		Root:               tree.Root(),
		LeafCount:          tree.LeafCount(),
		Frontier:           tree.Frontier(),
		FrontierCommitment: tree.FrontierCommitment(),
	}
	require.NoError(t, store.PersistSnapshot(snapshot))

	latest, err := store.Latest()
	require.NoError(t, err)
	require.NotNil(t, latest)

	assert.Equal(t, snapshot.BlockHeight, latest.BlockHeight)
	assert.Equal(t, snapshot.LeafCount, latest.LeafCount)
	assert.Equal(t, snapshot.Frontier, latest.Frontier)
	assert.Equal(t, snapshot.FrontierCommitment, latest.FrontierCommitment)

	restored, err := accumulator.Restore(8, latest.Root, latest.LeafCount, latest.Frontier)
	require.NoError(t, err)
	assert.Equal(t, tree.FrontierCommitment(), restored.FrontierCommitment())
}

func TestLatestEmptyLedger(t *testing.T) {
	id, _ := uuid.NewV4()
	store := InitSnapshotStore(id)

	latest, err := store.Latest()
	require.NoError(t, err)
	assert.Nil(t, latest)
}
