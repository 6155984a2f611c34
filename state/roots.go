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

// Package state holds the non-accumulator ledger state: the bounded root
// history, the permanent nullifier set and the pending deposit queue.
package state

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var (
	// ErrRootNotFound is returned when a note references a root outside the
	// retained history
	ErrRootNotFound = errors.New("merkle root not in recent history")

	// ErrDuplicateRoot is returned when a root already present in the history
	// is added again
	ErrDuplicateRoot = errors.New("merkle root already in history")

	// ErrInvalidCapacity is returned for history capacities below 2
	ErrInvalidCapacity = errors.New("root history capacity must be at least 2")
)

// RootStore is a fixed-capacity circular buffer of recent accumulator roots
// with constant-time membership checks. Once full, each new root evicts the
// oldest.
type RootStore struct {
	roots   []fr.Element
	present map[fr.Element]bool
	cursor  int
	count   int
}

// NewRootStore returns an empty history retaining up to capacity roots.
func NewRootStore(capacity int) (*RootStore, error) {
	if capacity < 2 {
		return nil, ErrInvalidCapacity
	}
	return &RootStore{
		roots:   make([]fr.Element, capacity),
		present: make(map[fr.Element]bool, capacity),
	}, nil
}

// Add records a root, evicting the oldest entry when the history is full.
// Adding a root already present is rejected rather than silently reordering
// the eviction schedule.
func (s *RootStore) Add(root fr.Element) error {
	if s.present[root] {
		return ErrDuplicateRoot
	}

	if s.count == len(s.roots) {
		delete(s.present, s.roots[s.cursor])
	} else {
		s.count++
	}

	s.roots[s.cursor] = root
	s.present[root] = true
	s.cursor = (s.cursor + 1) % len(s.roots)
	return nil
}

// Contains reports whether the root is in the retained history.
func (s *RootStore) Contains(root fr.Element) bool {
	return s.present[root]
}

// Require returns ErrRootNotFound unless the root is in the retained history.
func (s *RootStore) Require(root fr.Element) error {
	if !s.present[root] {
		return ErrRootNotFound
	}
	return nil
}

// Len returns the number of retained roots.
func (s *RootStore) Len() int {
	return s.count
}

// Clone returns an independent copy of the history.
func (s *RootStore) Clone() *RootStore {
	dup := &RootStore{
		roots:   make([]fr.Element, len(s.roots)),
		present: make(map[fr.Element]bool, len(s.present)),
		cursor:  s.cursor,
		count:   s.count,
	}
	copy(dup.roots, s.roots)
	for k, v := range s.present {
		dup.present[k] = v
	}
	return dup
}
