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

package ledger

import (
	"errors"

	"github.com/meridianlabs/shieldpool/accumulator"
	"github.com/meridianlabs/shieldpool/state"
)

// Validation failures surfaced by block submission and deposit intake.
// Lower-layer sentinels are aliased here so callers can classify every
// failure against a single package.
var (
	// ErrInvalidFrontier mirrors the accumulator sentinel
	ErrInvalidFrontier = accumulator.ErrInvalidFrontier

	// ErrTreeFull mirrors the accumulator sentinel
	ErrTreeFull = accumulator.ErrTreeFull

	// ErrRootNotFound mirrors the state sentinel
	ErrRootNotFound = state.ErrRootNotFound

	// ErrDuplicateRoot mirrors the state sentinel
	ErrDuplicateRoot = state.ErrDuplicateRoot

	// ErrNullifierAlreadyPublished mirrors the state sentinel
	ErrNullifierAlreadyPublished = state.ErrNullifierAlreadyPublished

	// ErrQueueFull mirrors the state sentinel
	ErrQueueFull = state.ErrQueueFull

	// ErrExpiredNote is returned when a transfer's validity horizon precedes
	// the block height at which it is validated
	ErrExpiredNote = errors.New("note expired")

	// ErrBadAssetCode is returned when a mint's public asset code does not
	// derive from its internal asset code
	ErrBadAssetCode = errors.New("mint asset code does not match internal code derivation")

	// ErrBadBurnTag is returned when a burn's proof-bound data lacks the burn
	// prefix, or a plain transfer carries it
	ErrBadBurnTag = errors.New("proof-bound data inconsistent with note type")

	// ErrBadBurnRecord is returned when a burn's declared record opening does
	// not match its second output commitment
	ErrBadBurnRecord = errors.New("burned record opening does not match output commitment")

	// ErrProofVerificationFailed is returned when the batch proof verification
	// for a block fails
	ErrProofVerificationFailed = errors.New("batch proof verification failed")

	// ErrReentrant is returned when a state-mutating call is made while
	// another is in flight
	ErrReentrant = errors.New("reentrant call rejected")

	// ErrWithdrawalFailed is returned when a burn payout fails after its block
	// committed; the block is not rolled back
	ErrWithdrawalFailed = errors.New("withdrawal settlement failed after commit")

	// ErrMalformedBlock is returned when a block's type vector and note
	// arrays do not reconcile
	ErrMalformedBlock = errors.New("malformed block")

	// ErrUnregisteredAsset is returned when a deposit or burn references an
	// asset with no registered external token
	ErrUnregisteredAsset = errors.New("asset not registered")
)
