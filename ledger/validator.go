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

// Package ledger implements the block validator state machine: note
// validation, atomic state commitment and burn settlement over the
// accumulator, root history, nullifier set and deposit queue.
package ledger

import (
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/plonk"

	"github.com/meridianlabs/shieldpool/accumulator"
	"github.com/meridianlabs/shieldpool/common"
	"github.com/meridianlabs/shieldpool/rescue"
	"github.com/meridianlabs/shieldpool/state"
	"github.com/meridianlabs/shieldpool/verifier"
)

// VerifyingKeys holds the per-note-type verifying keys notes are checked
// against. Keys are fixed at construction for the life of the validator.
type VerifyingKeys struct {
	Transfer plonk.VerifyingKey
	Mint     plonk.VerifyingKey
	Freeze   plonk.VerifyingKey
}

func (k *VerifyingKeys) forType(kind NoteType) plonk.VerifyingKey {
	switch kind {
	case NoteTypeMint:
		return k.Mint
	case NoteTypeFreeze:
		return k.Freeze
	default:
		// burns are proven under the transfer relation
		return k.Transfer
	}
}

// BlockCommitted is emitted after each successful block commit.
type BlockCommitted struct {
	Height             uint64       `json:"height"`
	MerkleRoot         fr.Element   `json:"merkle_root"`
	DepositCommitments []fr.Element `json:"deposit_commitments"`
}

// Snapshot is the persistable summary of committed state.
type Snapshot struct {
	BlockHeight        uint64
	Root               fr.Element
	LeafCount          uint64
	Frontier           []fr.Element
	FrontierCommitment [32]byte
	NullifierDigest    [32]byte
}

// SnapshotSink persists committed snapshots; persistence failures are logged
// and do not affect the committed block.
type SnapshotSink interface {
	PersistSnapshot(snapshot *Snapshot) error
}

// Config parameterizes a validator.
type Config struct {
	MerkleTreeHeight   uint8
	RootHistorySize    int
	MaxPendingDeposits int
}

// DefaultConfig returns the environment-driven validator parameters.
func DefaultConfig() Config {
	return Config{
		MerkleTreeHeight:   common.MerkleTreeHeight,
		RootHistorySize:    common.RootHistorySize,
		MaxPendingDeposits: common.MaxPendingDeposits,
	}
}

// Validator is the single writer over the ledger state. All state-mutating
// entrypoints share one non-blocking guard; a call arriving while another is
// in flight is rejected, never queued.
type Validator struct {
	mutex sync.Mutex

	state    *state.State
	keys     VerifyingKeys
	verifier verifier.BatchVerifier
	custody  CustodyProvider
	registry AssetRegistry

	snapshots SnapshotSink
	listeners []func(BlockCommitted)
}

// NewValidator initializes a validator over genesis state.
func NewValidator(cfg Config, keys VerifyingKeys, batchVerifier verifier.BatchVerifier, custody CustodyProvider, registry AssetRegistry) (*Validator, error) {
	if batchVerifier == nil {
		return nil, fmt.Errorf("failed to initialize validator; nil batch verifier")
	}
	if custody == nil {
		return nil, fmt.Errorf("failed to initialize validator; nil custody provider")
	}
	if registry == nil {
		return nil, fmt.Errorf("failed to initialize validator; nil asset registry")
	}

	st, err := state.New(cfg.MerkleTreeHeight, cfg.RootHistorySize, cfg.MaxPendingDeposits)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize validator state; %s", err.Error())
	}

	return &Validator{
		state:    st,
		keys:     keys,
		verifier: batchVerifier,
		custody:  custody,
		registry: registry,
	}, nil
}

// NewValidatorFromSnapshot initializes a validator over state restored from a
// persisted snapshot; a nil snapshot boots genesis. The restored frontier is
// checked against the snapshot's commitment before any state is accepted.
func NewValidatorFromSnapshot(cfg Config, keys VerifyingKeys, batchVerifier verifier.BatchVerifier, custody CustodyProvider, registry AssetRegistry, snapshot *Snapshot) (*Validator, error) {
	if snapshot == nil {
		return NewValidator(cfg, keys, batchVerifier, custody, registry)
	}

	records, err := accumulator.Restore(cfg.MerkleTreeHeight, snapshot.Root, snapshot.LeafCount, snapshot.Frontier)
	if err != nil {
		return nil, fmt.Errorf("failed to restore accumulator at height %d; %s", snapshot.BlockHeight, err.Error())
	}
	if records.FrontierCommitment() != snapshot.FrontierCommitment {
		return nil, fmt.Errorf("%w; restored frontier does not match persisted commitment", ErrInvalidFrontier)
	}

	v, err := NewValidator(cfg, keys, batchVerifier, custody, registry)
	if err != nil {
		return nil, err
	}

	st, err := state.Restore(records, cfg.RootHistorySize, cfg.MaxPendingDeposits, snapshot.NullifierDigest, snapshot.BlockHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to restore validator state; %s", err.Error())
	}
	v.state = st
	return v, nil
}

// SetSnapshotSink attaches a snapshot persistence provider.
func (v *Validator) SetSnapshotSink(sink SnapshotSink) {
	v.snapshots = sink
}

// Subscribe registers a listener invoked synchronously after each commit.
func (v *Validator) Subscribe(listener func(BlockCommitted)) {
	v.listeners = append(v.listeners, listener)
}

// stagedBlock accumulates the pending effects of a block under validation.
// Nothing here touches live state until the commit phase.
type stagedBlock struct {
	nullifiers  []fr.Element
	seen        map[fr.Element]bool
	batch       []fr.Element
	requests    []verifier.Request
	withdrawals []withdrawal
}

func (s *stagedBlock) publish(base *state.NullifierSet, nullifiers ...fr.Element) error {
	for _, n := range nullifiers {
		if base.IsPublished(n) || s.seen[n] {
			return ErrNullifierAlreadyPublished
		}
		s.seen[n] = true
		s.nullifiers = append(s.nullifiers, n)
	}
	return nil
}

// SubmitBlock validates and commits a block. On any validation, verification
// or accumulation failure the call returns with zero observable state change.
// Burn payouts run strictly after commit; a payout failure is reported but
// does not unwind the block.
func (v *Validator) SubmitBlock(block *Block) error {
	if !v.mutex.TryLock() {
		return ErrReentrant
	}
	defer v.mutex.Unlock()

	notes, err := block.sequence()
	if err != nil {
		return err
	}

	staged := &stagedBlock{seen: make(map[fr.Element]bool)}
	for i := range notes {
		if err := v.validateNote(&notes[i], staged); err != nil {
			return err
		}
	}

	deposits := v.state.Deposits.Snapshot()
	staged.batch = append(staged.batch, deposits...)

	if len(staged.requests) > 0 {
		if err := v.verifier.BatchVerify(staged.requests); err != nil {
			return fmt.Errorf("%w; %s", ErrProofVerificationFailed, err.Error())
		}
	}

	records := v.state.Records
	roots := v.state.Roots
	if len(staged.batch) > 0 {
		records = v.state.Records.Clone()
		if err := records.Update(staged.batch); err != nil {
			return err
		}
		roots = v.state.Roots.Clone()
		if err := roots.Add(records.Root()); err != nil {
			return err
		}
	}

	// commit; nothing past this point may fail the block
	if err := v.state.Nullifiers.PublishAll(staged.nullifiers); err != nil {
		// unreachable; the staged set was checked against the live set above
		return err
	}
	v.state.Records = records
	v.state.Roots = roots
	v.state.Deposits.DrainAll()
	v.state.BlockHeight++

	event := BlockCommitted{
		Height:             v.state.BlockHeight,
		MerkleRoot:         v.state.Records.Root(),
		DepositCommitments: deposits,
	}
	v.dispatchBlockCommitted(event)
	for _, listener := range v.listeners {
		listener(event)
	}

	if v.snapshots != nil {
		if err := v.snapshots.PersistSnapshot(v.snapshot()); err != nil {
			common.Log.Warningf("failed to persist snapshot at height %d; %s", v.state.BlockHeight, err.Error())
		}
	}

	for _, wd := range staged.withdrawals {
		if err := v.custody.TransferOut(wd.token, wd.amount, wd.recipient); err != nil {
			return fmt.Errorf("%w; block %d committed; payout of %d failed; %s", ErrWithdrawalFailed, v.state.BlockHeight, wd.amount, err.Error())
		}
	}

	return nil
}

func (v *Validator) validateNote(note *sequencedNote, staged *stagedBlock) error {
	switch note.kind {
	case NoteTypeTransfer:
		return v.validateTransfer(note.transfer, staged)
	case NoteTypeMint:
		return v.validateMint(note.mint, staged)
	case NoteTypeFreeze:
		return v.validateFreeze(note.freeze, staged)
	case NoteTypeBurn:
		return v.validateBurn(note.burn, staged)
	default:
		return ErrMalformedBlock
	}
}

func (v *Validator) validateTransfer(note *TransferNote, staged *stagedBlock) error {
	if err := v.state.Roots.Require(note.Aux.MerkleRoot); err != nil {
		return err
	}
	// only burns may bind extra data; anything else is a mistagged note
	if len(note.Aux.ExtraProofBoundData) != 0 {
		return ErrBadBurnTag
	}
	if note.Aux.ValidUntil < v.state.BlockHeight {
		return ErrExpiredNote
	}
	if err := staged.publish(v.state.Nullifiers, note.InputNullifiers...); err != nil {
		return err
	}

	staged.batch = append(staged.batch, note.OutputCommitments...)
	staged.requests = append(staged.requests, verifier.Request{
		VerifyingKey:   v.keys.Transfer,
		PublicInputs:   transferPublicInputs(note),
		Proof:          note.Proof,
		TranscriptSeed: note.Aux.ExtraProofBoundData,
	})
	return nil
}

func (v *Validator) validateMint(note *MintNote, staged *stagedBlock) error {
	if err := v.state.Roots.Require(note.Aux.MerkleRoot); err != nil {
		return err
	}

	derived := rescue.DeriveDomesticAssetCode(note.InternalCode)
	if !derived.Equal(&note.AssetCode) {
		return ErrBadAssetCode
	}

	if err := staged.publish(v.state.Nullifiers, note.InputNullifier); err != nil {
		return err
	}

	staged.batch = append(staged.batch, note.ChangeCommitment, note.MintCommitment)
	staged.requests = append(staged.requests, verifier.Request{
		VerifyingKey: v.keys.Mint,
		PublicInputs: mintPublicInputs(note),
		Proof:        note.Proof,
	})
	return nil
}

func (v *Validator) validateFreeze(note *FreezeNote, staged *stagedBlock) error {
	if err := v.state.Roots.Require(note.Aux.MerkleRoot); err != nil {
		return err
	}
	if err := staged.publish(v.state.Nullifiers, note.InputNullifiers...); err != nil {
		return err
	}

	staged.batch = append(staged.batch, note.OutputCommitments...)
	staged.requests = append(staged.requests, verifier.Request{
		VerifyingKey: v.keys.Freeze,
		PublicInputs: freezePublicInputs(note),
		Proof:        note.Proof,
	})
	return nil
}

func (v *Validator) validateBurn(note *BurnNote, staged *stagedBlock) error {
	transfer := &note.Transfer
	if err := v.state.Roots.Require(transfer.Aux.MerkleRoot); err != nil {
		return err
	}

	recipient, err := note.WithdrawRecipient()
	if err != nil {
		return err
	}

	if len(transfer.OutputCommitments) < 2 {
		return ErrBadBurnRecord
	}
	expected := note.BurnedOpening.Commitment()
	if !expected.Equal(&transfer.OutputCommitments[1]) {
		return ErrBadBurnRecord
	}

	token, ok := v.registry.Lookup(note.BurnedOpening.AssetCode)
	if !ok {
		return ErrUnregisteredAsset
	}

	if err := staged.publish(v.state.Nullifiers, transfer.InputNullifiers...); err != nil {
		return err
	}

	// the burned output is redeemed externally, never accumulated
	for i, commitment := range transfer.OutputCommitments {
		if i == 1 {
			continue
		}
		staged.batch = append(staged.batch, commitment)
	}

	staged.requests = append(staged.requests, verifier.Request{
		VerifyingKey:   v.keys.Transfer,
		PublicInputs:   transferPublicInputs(transfer),
		Proof:          transfer.Proof,
		TranscriptSeed: transfer.Aux.ExtraProofBoundData,
	})

	staged.withdrawals = append(staged.withdrawals, withdrawal{
		token:     token,
		amount:    note.BurnedOpening.Amount,
		recipient: recipient,
	})
	return nil
}

// DepositPending queues a wrap deposit: the record commitment is enqueued for
// inclusion in the next block and the backing tokens are pulled into custody.
// Shares the non-reentrant guard with block submission.
func (v *Validator) DepositPending(opening *RecordOpening, token TokenRef, from Address) (*fr.Element, error) {
	if !v.mutex.TryLock() {
		return nil, ErrReentrant
	}
	defer v.mutex.Unlock()

	registered, ok := v.registry.Lookup(opening.AssetCode)
	if !ok {
		return nil, ErrUnregisteredAsset
	}
	if registered != token {
		return nil, fmt.Errorf("%w; deposit token does not match registration", ErrUnregisteredAsset)
	}

	if v.state.Deposits.Len() >= v.state.Deposits.Cap() {
		return nil, ErrQueueFull
	}

	// custody first; an enqueued commitment with no backing funds would be
	// minted out of thin air at the next block
	if err := v.custody.TransferIn(token, opening.Amount, from); err != nil {
		return nil, fmt.Errorf("failed to take custody of deposit; %s", err.Error())
	}

	commitment := opening.Commitment()
	if err := v.state.Deposits.Push(commitment); err != nil {
		// unreachable; capacity was checked under the guard
		return nil, err
	}

	v.dispatchDepositPending(commitment)
	return &commitment, nil
}

// Root returns the current accumulator root.
func (v *Validator) Root() fr.Element {
	return v.state.Records.Root()
}

// LeafCount returns the number of accumulated record commitments.
func (v *Validator) LeafCount() uint64 {
	return v.state.Records.LeafCount()
}

// TreeHeight returns the fixed accumulator height.
func (v *Validator) TreeHeight() uint8 {
	return v.state.Records.Height()
}

// BlockHeight returns the number of committed blocks.
func (v *Validator) BlockHeight() uint64 {
	return v.state.BlockHeight
}

// ContainsRoot reports whether the root is within the retained history.
func (v *Validator) ContainsRoot(root fr.Element) bool {
	return v.state.Roots.Contains(root)
}

// IsPublished reports whether the nullifier has been published.
func (v *Validator) IsPublished(nullifier fr.Element) bool {
	return v.state.Nullifiers.IsPublished(nullifier)
}

// NullifierDigest returns the rolling digest over published nullifiers.
func (v *Validator) NullifierDigest() [32]byte {
	return v.state.Nullifiers.Digest()
}

// PendingDeposits returns the queued deposit commitments in FIFO order.
func (v *Validator) PendingDeposits() []fr.Element {
	return v.state.Deposits.Snapshot()
}

// Snapshot returns the persistable summary of current committed state.
func (v *Validator) Snapshot() *Snapshot {
	return v.snapshot()
}

func (v *Validator) snapshot() *Snapshot {
	return &Snapshot{
		BlockHeight:        v.state.BlockHeight,
		Root:               v.state.Records.Root(),
		LeafCount:          v.state.Records.LeafCount(),
		Frontier:           v.state.Records.Frontier(),
		FrontierCommitment: v.state.Records.FrontierCommitment(),
		NullifierDigest:    v.state.Nullifiers.Digest(),
	}
}

func transferPublicInputs(note *TransferNote) []fr.Element {
	inputs := make([]fr.Element, 0, 2+len(note.InputNullifiers)+len(note.OutputCommitments))

	var fee, validUntil fr.Element
	fee.SetUint64(note.Aux.Fee)
	validUntil.SetUint64(note.Aux.ValidUntil)

	inputs = append(inputs, note.Aux.MerkleRoot, fee, validUntil)
	inputs = append(inputs, note.InputNullifiers...)
	inputs = append(inputs, note.OutputCommitments...)
	return inputs
}

func mintPublicInputs(note *MintNote) []fr.Element {
	var fee, amount fr.Element
	fee.SetUint64(note.Aux.Fee)
	amount.SetUint64(note.Amount)

	return []fr.Element{
		note.Aux.MerkleRoot,
		fee,
		note.InputNullifier,
		note.ChangeCommitment,
		note.MintCommitment,
		note.AssetCode,
		amount,
	}
}

func freezePublicInputs(note *FreezeNote) []fr.Element {
	inputs := make([]fr.Element, 0, 2+len(note.InputNullifiers)+len(note.OutputCommitments))

	var fee fr.Element
	fee.SetUint64(note.Aux.Fee)

	inputs = append(inputs, note.Aux.MerkleRoot, fee)
	inputs = append(inputs, note.InputNullifiers...)
	inputs = append(inputs, note.OutputCommitments...)
	return inputs
}
