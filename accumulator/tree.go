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

// Package accumulator implements a ternary incremental Merkle accumulator.
// Only the root, the leaf count and the frontier of the most recent insertion
// survive between updates; the full tree is rebuilt around the frontier for
// the duration of a batch insert and discarded.
package accumulator

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/meridianlabs/shieldpool/rescue"
)

const (
	branching = 3

	// MaxHeight keeps 3^height representable as a uint64
	MaxHeight = 40
)

var (
	// ErrInvalidFrontier is returned when the retained frontier does not match
	// its commitment; the accumulator state has been tampered with or corrupted
	ErrInvalidFrontier = errors.New("frontier does not match committed digest")

	// ErrTreeFull is returned when an insertion would exceed tree capacity
	ErrTreeFull = errors.New("accumulator is full")

	// ErrInvalidHeight is returned for heights outside [1, MaxHeight]
	ErrInvalidHeight = errors.New("accumulator height out of range")
)

// Tree is the persisted accumulator state. The flattened frontier holds the
// hashed leaf of the most recent insertion followed by the two sibling values
// at every level, leaf level first.
type Tree struct {
	height    uint8
	leafCount uint64

	root               fr.Element
	frontier           []fr.Element
	frontierCommitment [32]byte
}

// New returns an empty accumulator of the given height.
func New(height uint8) (*Tree, error) {
	if height < 1 || height > MaxHeight {
		return nil, ErrInvalidHeight
	}

	return &Tree{
		height:             height,
		frontierCommitment: commitFrontier(nil, 0),
	}, nil
}

// Restore reconstructs an accumulator from persisted state, recomputing and
// checking the frontier commitment.
func Restore(height uint8, root fr.Element, leafCount uint64, frontier []fr.Element) (*Tree, error) {
	if height < 1 || height > MaxHeight {
		return nil, ErrInvalidHeight
	}
	if leafCount > pow3(int(height)) {
		return nil, ErrTreeFull
	}

	t := &Tree{
		height:    height,
		leafCount: leafCount,
		root:      root,
	}

	if leafCount == 0 {
		if len(frontier) != 0 {
			return nil, ErrInvalidFrontier
		}
		t.frontierCommitment = commitFrontier(nil, 0)
		return t, nil
	}

	if len(frontier) != 2*int(height)+1 {
		return nil, ErrInvalidFrontier
	}
	t.frontier = make([]fr.Element, len(frontier))
	copy(t.frontier, frontier)
	t.frontierCommitment = commitFrontier(t.frontier, leafCount-1)
	return t, nil
}

// Root returns the current accumulator root.
func (t *Tree) Root() fr.Element {
	return t.root
}

// LeafCount returns the number of accumulated leaves.
func (t *Tree) LeafCount() uint64 {
	return t.leafCount
}

// Height returns the fixed tree height.
func (t *Tree) Height() uint8 {
	return t.height
}

// Capacity returns the maximum number of leaves, 3^height.
func (t *Tree) Capacity() uint64 {
	return pow3(int(t.height))
}

// Frontier returns a copy of the flattened frontier.
func (t *Tree) Frontier() []fr.Element {
	out := make([]fr.Element, len(t.frontier))
	copy(out, t.frontier)
	return out
}

// FrontierCommitment returns the digest guarding the persisted frontier.
func (t *Tree) FrontierCommitment() [32]byte {
	return t.frontierCommitment
}

// Clone returns an independent copy of the accumulator state.
func (t *Tree) Clone() *Tree {
	dup := &Tree{
		height:             t.height,
		leafCount:          t.leafCount,
		root:               t.root,
		frontierCommitment: t.frontierCommitment,
	}
	if t.frontier != nil {
		dup.frontier = make([]fr.Element, len(t.frontier))
		copy(dup.frontier, t.frontier)
	}
	return dup
}

// Update appends a batch of record commitments to the accumulator. The
// retained frontier is validated against its commitment, the spine of the
// tree is rebuilt around it, the new leaves are hashed in at consecutive
// positions and the root, frontier and commitment are recomputed. On any
// error the accumulator is unchanged.
func (t *Tree) Update(leaves []fr.Element) error {
	if uint64(len(leaves)) > t.Capacity()-t.leafCount {
		return ErrTreeFull
	}

	if t.leafCount == 0 {
		if t.frontierCommitment != commitFrontier(nil, 0) {
			return ErrInvalidFrontier
		}
	} else if t.frontierCommitment != commitFrontier(t.frontier, t.leafCount-1) {
		return ErrInvalidFrontier
	}

	if len(leaves) == 0 {
		return nil
	}

	a := newArena(int(t.height), len(leaves))
	rootIdx := a.buildFromFrontier(t.frontier, t.leafCount, int(t.height))

	for k := range leaves {
		pos := t.leafCount + uint64(k)
		a.push(rootIdx, pos, rescue.HashLeaf(pos, leaves[k]), int(t.height))
	}

	a.rehash(rootIdx)

	newLeafCount := t.leafCount + uint64(len(leaves))
	newFrontier := a.flattenFrontier(rootIdx, newLeafCount-1, int(t.height))

	t.root = a.nodes[rootIdx].val
	t.leafCount = newLeafCount
	t.frontier = newFrontier
	t.frontierCommitment = commitFrontier(newFrontier, newLeafCount-1)
	return nil
}

func pow3(n int) uint64 {
	out := uint64(1)
	for i := 0; i < n; i++ {
		out *= branching
	}
	return out
}
