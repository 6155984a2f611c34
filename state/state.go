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

package state

import (
	"github.com/meridianlabs/shieldpool/accumulator"
)

// State is the complete ledger state mutated only by committed blocks and
// pending deposits. It carries no locking of its own; the owning validator
// serializes access.
type State struct {
	Records    *accumulator.Tree
	Roots      *RootStore
	Nullifiers *NullifierSet
	Deposits   *DepositQueue

	// BlockHeight is the number of committed blocks, including empty ones
	BlockHeight uint64
}

// New returns the genesis state: an empty accumulator of the given height
// with its root seeded into the history, an empty nullifier set and an empty
// deposit queue.
func New(height uint8, rootCapacity, maxPendingDeposits int) (*State, error) {
	records, err := accumulator.New(height)
	if err != nil {
		return nil, err
	}

	roots, err := NewRootStore(rootCapacity)
	if err != nil {
		return nil, err
	}

	// notes proven against the genesis (empty) tree must validate
	if err := roots.Add(records.Root()); err != nil {
		return nil, err
	}

	return &State{
		Records:    records,
		Roots:      roots,
		Nullifiers: NewNullifierSet(),
		Deposits:   NewDepositQueue(maxPendingDeposits),
	}, nil
}

// Restore rebuilds state around a restored accumulator. The restored root is
// seeded into a fresh history, the nullifier digest chain resumes from the
// persisted digest and the deposit queue starts empty; queued deposits are
// never part of committed state.
func Restore(records *accumulator.Tree, rootCapacity, maxPendingDeposits int, nullifierDigest [32]byte, blockHeight uint64) (*State, error) {
	roots, err := NewRootStore(rootCapacity)
	if err != nil {
		return nil, err
	}
	if err := roots.Add(records.Root()); err != nil {
		return nil, err
	}

	return &State{
		Records:     records,
		Roots:       roots,
		Nullifiers:  NewNullifierSetFromDigest(nullifierDigest),
		Deposits:    NewDepositQueue(maxPendingDeposits),
		BlockHeight: blockHeight,
	}, nil
}
