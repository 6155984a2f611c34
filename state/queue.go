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
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrQueueFull is returned when the pending deposit queue is at capacity;
// callers should retry after the next block drains it.
var ErrQueueFull = errors.New("pending deposit queue is full")

// DepositQueue is the bounded FIFO of record commitments awaiting inclusion
// in the next committed block.
type DepositQueue struct {
	items    []fr.Element
	capacity int
}

// NewDepositQueue returns an empty queue bounded at capacity.
func NewDepositQueue(capacity int) *DepositQueue {
	return &DepositQueue{capacity: capacity}
}

// Push appends a record commitment.
func (q *DepositQueue) Push(commitment fr.Element) error {
	if len(q.items) >= q.capacity {
		return ErrQueueFull
	}
	q.items = append(q.items, commitment)
	return nil
}

// Snapshot returns the queued commitments in FIFO order without draining.
func (q *DepositQueue) Snapshot() []fr.Element {
	out := make([]fr.Element, len(q.items))
	copy(out, q.items)
	return out
}

// DrainAll empties the queue, returning the drained commitments in FIFO order.
func (q *DepositQueue) DrainAll() []fr.Element {
	out := q.items
	q.items = nil
	return out
}

// Len returns the number of queued commitments.
func (q *DepositQueue) Len() int {
	return len(q.items)
}

// Cap returns the queue capacity.
func (q *DepositQueue) Cap() int {
	return q.capacity
}
