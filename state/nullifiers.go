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
	"crypto/sha256"
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrNullifierAlreadyPublished is returned when a nullifier is published a
// second time; a published nullifier never leaves the set.
var ErrNullifierAlreadyPublished = errors.New("nullifier already published")

// NullifierSet is the append-only set of spent-record nullifiers. A rolling
// sha256 chain over the publication order provides a cheap summary digest.
type NullifierSet struct {
	published map[fr.Element]bool
	digest    [32]byte
}

// NewNullifierSet returns an empty set.
func NewNullifierSet() *NullifierSet {
	return &NullifierSet{published: make(map[fr.Element]bool)}
}

// NewNullifierSetFromDigest returns a set whose digest chain continues from a
// persisted digest. Snapshots carry the digest, not the membership; restored
// deployments replay membership from the published nullifier log before
// accepting blocks.
func NewNullifierSetFromDigest(digest [32]byte) *NullifierSet {
	return &NullifierSet{
		published: make(map[fr.Element]bool),
		digest:    digest,
	}
}

// IsPublished reports whether the nullifier has been published.
func (s *NullifierSet) IsPublished(n fr.Element) bool {
	return s.published[n]
}

// Publish adds a single nullifier to the set.
func (s *NullifierSet) Publish(n fr.Element) error {
	if s.published[n] {
		return ErrNullifierAlreadyPublished
	}
	s.insert(n)
	return nil
}

// PublishAll adds a batch of nullifiers, verifying the whole batch is fresh
// and internally duplicate-free before mutating the set.
func (s *NullifierSet) PublishAll(ns []fr.Element) error {
	seen := make(map[fr.Element]bool, len(ns))
	for _, n := range ns {
		if s.published[n] || seen[n] {
			return ErrNullifierAlreadyPublished
		}
		seen[n] = true
	}
	for _, n := range ns {
		s.insert(n)
	}
	return nil
}

// Len returns the number of published nullifiers.
func (s *NullifierSet) Len() int {
	return len(s.published)
}

// Digest returns the rolling digest over the publication order.
func (s *NullifierSet) Digest() [32]byte {
	return s.digest
}

func (s *NullifierSet) insert(n fr.Element) {
	s.published[n] = true

	b := n.Bytes()
	h := sha256.New()
	h.Write(s.digest[:])
	h.Write(b[:])
	copy(s.digest[:], h.Sum(nil))
}
