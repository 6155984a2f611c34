/*
 * Copyright 2024-2026 Meridian Labs, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package store persists committed ledger snapshots. One row per committed
// block; the latest row is sufficient to restore the accumulator.
package store

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jinzhu/gorm"
	dbconf "github.com/kthomas/go-db-config"
	uuid "github.com/kthomas/go.uuid"

	"github.com/meridianlabs/shieldpool/common"
	"github.com/meridianlabs/shieldpool/ledger"
)

// SnapshotStore is a gorm-backed ledger.SnapshotSink keyed on a ledger id.
type SnapshotStore struct {
	db    *gorm.DB
	id    *uuid.UUID
	mutex *sync.Mutex
}

// InitSnapshotStore initializes a snapshot store for the given ledger id
// using the default database connection.
func InitSnapshotStore(id uuid.UUID) *SnapshotStore {
	return &SnapshotStore{
		db:    dbconf.DatabaseConnection(),
		id:    &id,
		mutex: &sync.Mutex{},
	}
}

// PersistSnapshot writes a committed snapshot row.
func (s *SnapshotStore) PersistSnapshot(snapshot *ledger.Snapshot) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	frontier, _ := json.Marshal(common.ScalarsToHex(snapshot.Frontier))
	root := snapshot.Root

	db := s.db.Exec(
		"INSERT INTO snapshots (ledger_id, block_height, merkle_root, leaf_count, frontier, frontier_commitment, nullifier_digest) VALUES (?, ?, ?, ?, ?, ?, ?)",
		s.id,
		snapshot.BlockHeight,
		common.ScalarToHex(&root),
		snapshot.LeafCount,
		frontier,
		hex.EncodeToString(snapshot.FrontierCommitment[:]),
		hex.EncodeToString(snapshot.NullifierDigest[:]),
	)
	if db.RowsAffected == 0 {
		return fmt.Errorf("failed to persist snapshot at height %d for ledger %s", snapshot.BlockHeight, s.id)
	}

	common.Log.Debugf("persisted snapshot at height %d for ledger %s", snapshot.BlockHeight, s.id)
	return nil
}

// Latest resolves the most recently persisted snapshot, or nil when the
// ledger has no committed history.
func (s *SnapshotStore) Latest() (*ledger.Snapshot, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	rows, err := s.db.Raw(
		"SELECT block_height, merkle_root, leaf_count, frontier, frontier_commitment, nullifier_digest FROM snapshots WHERE ledger_id = ? ORDER BY block_height DESC LIMIT 1",
		s.id,
	).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve snapshot for ledger %s; %s", s.id, err.Error())
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}

	var blockHeight, leafCount uint64
	var rootHex, commitmentHex, digestHex string
	var frontierRaw json.RawMessage

	if err := rows.Scan(&blockHeight, &rootHex, &leafCount, &frontierRaw, &commitmentHex, &digestHex); err != nil {
		return nil, fmt.Errorf("failed to scan snapshot for ledger %s; %s", s.id, err.Error())
	}

	root, err := common.ScalarFromHex(rootHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot root for ledger %s; %s", s.id, err.Error())
	}

	var frontierHex []string
	if err := json.Unmarshal(frontierRaw, &frontierHex); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot frontier for ledger %s; %s", s.id, err.Error())
	}
	frontier, err := common.ScalarsFromHex(frontierHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot frontier for ledger %s; %s", s.id, err.Error())
	}

	snapshot := &ledger.Snapshot{
		BlockHeight: blockHeight,
		Root:        *root,
		LeafCount:   leafCount,
		Frontier:    frontier,
	}

	commitment, err := hex.DecodeString(commitmentHex)
	if err != nil || len(commitment) != len(snapshot.FrontierCommitment) {
		return nil, fmt.Errorf("failed to parse snapshot frontier commitment for ledger %s", s.id)
	}
	copy(snapshot.FrontierCommitment[:], commitment)

	digest, err := hex.DecodeString(digestHex)
	if err != nil || len(digest) != len(snapshot.NullifierDigest) {
		return nil, fmt.Errorf("failed to parse snapshot nullifier digest for ledger %s", s.id)
	}
	copy(snapshot.NullifierDigest[:], digest)

	return snapshot, nil
}
