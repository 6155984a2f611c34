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
	"bytes"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/plonk"

	"github.com/meridianlabs/shieldpool/rescue"
)

// NoteType discriminates the four note kinds a block may carry.
type NoteType uint8

const (
	NoteTypeTransfer NoteType = iota
	NoteTypeMint
	NoteTypeFreeze
	NoteTypeBurn
)

func (t NoteType) String() string {
	switch t {
	case NoteTypeTransfer:
		return "transfer"
	case NoteTypeMint:
		return "mint"
	case NoteTypeFreeze:
		return "freeze"
	case NoteTypeBurn:
		return "burn"
	default:
		return "unknown"
	}
}

// Address is a 20-byte external account identifier.
type Address [20]byte

// TokenRef identifies an external token contract backing a registered asset.
type TokenRef [20]byte

// burnPrefix tags the proof-bound data of burn notes; the remaining 20 bytes
// carry the withdrawal recipient.
var burnPrefix = []byte("SPOOL::BURN\x00")

const boundDataLen = 32

// AuditMemo is the opaque ciphertext enabling designated-auditor disclosure.
type AuditMemo struct {
	Ciphertext []fr.Element `json:"ciphertext"`
}

// RecordOpening is the plaintext of an asset record; its commitment is the
// accumulator leaf value.
type RecordOpening struct {
	Amount      uint64     `json:"amount"`
	AssetCode   fr.Element `json:"asset_code"`
	UserAddress fr.Element `json:"user_address"`
	Frozen      bool       `json:"frozen"`
	Blind       fr.Element `json:"blind"`
}

// Commitment derives the record commitment over the opening's field encoding.
func (ro *RecordOpening) Commitment() fr.Element {
	var amount, frozen fr.Element
	amount.SetUint64(ro.Amount)
	if ro.Frozen {
		frozen.SetOne()
	}

	commitment, err := rescue.Commit([]fr.Element{
		amount,
		ro.AssetCode,
		ro.UserAddress,
		frozen,
		ro.Blind,
	})
	if err != nil {
		// unreachable; the encoding is 5 scalars
		panic(err)
	}
	return commitment
}

// TransferAux carries the public context a transfer proof is bound to.
type TransferAux struct {
	MerkleRoot fr.Element `json:"merkle_root"`
	Fee        uint64     `json:"fee"`
	ValidUntil uint64     `json:"valid_until"`

	// ExtraProofBoundData is empty for plain transfers; burns bind the burn
	// prefix and withdrawal recipient here
	ExtraProofBoundData []byte `json:"extra_proof_bound_data"`
}

// TransferNote spends a set of records and produces a set of new ones.
type TransferNote struct {
	InputNullifiers   []fr.Element `json:"input_nullifiers"`
	OutputCommitments []fr.Element `json:"output_commitments"`
	Proof             plonk.Proof  `json:"-"`
	AuditMemo         AuditMemo    `json:"audit_memo"`
	Aux               TransferAux  `json:"aux"`
}

// MintAux carries the public context a mint proof is bound to.
type MintAux struct {
	MerkleRoot fr.Element `json:"merkle_root"`
	Fee        uint64     `json:"fee"`
}

// MintNote issues new units of a domestic asset.
type MintNote struct {
	InputNullifier   fr.Element  `json:"input_nullifier"`
	ChangeCommitment fr.Element  `json:"change_commitment"`
	MintCommitment   fr.Element  `json:"mint_commitment"`
	AssetCode        fr.Element  `json:"asset_code"`
	InternalCode     fr.Element  `json:"internal_code"`
	Amount           uint64      `json:"amount"`
	Proof            plonk.Proof `json:"-"`
	AuditMemo        AuditMemo   `json:"audit_memo"`
	Aux              MintAux     `json:"aux"`
}

// FreezeAux carries the public context a freeze proof is bound to.
type FreezeAux struct {
	MerkleRoot fr.Element `json:"merkle_root"`
	Fee        uint64     `json:"fee"`
}

// FreezeNote toggles the freeze flag on a set of records.
type FreezeNote struct {
	InputNullifiers   []fr.Element `json:"input_nullifiers"`
	OutputCommitments []fr.Element `json:"output_commitments"`
	Proof             plonk.Proof  `json:"-"`
	Aux               FreezeAux    `json:"aux"`
}

// BurnNote is a transfer whose second output is publicly opened and redeemed
// against the external token backing its asset.
type BurnNote struct {
	Transfer      TransferNote  `json:"transfer"`
	BurnedOpening RecordOpening `json:"burned_opening"`
}

// IsBurnBound reports whether proof-bound data carries the burn prefix.
func IsBurnBound(data []byte) bool {
	return len(data) >= len(burnPrefix) && bytes.Equal(data[:len(burnPrefix)], burnPrefix)
}

// BurnBoundData encodes the proof-bound data tagging a burn for the given
// withdrawal recipient.
func BurnBoundData(recipient Address) []byte {
	data := make([]byte, 0, boundDataLen)
	data = append(data, burnPrefix...)
	data = append(data, recipient[:]...)
	return data
}

// WithdrawRecipient extracts the withdrawal recipient from the burn's
// proof-bound data.
func (n *BurnNote) WithdrawRecipient() (Address, error) {
	data := n.Transfer.Aux.ExtraProofBoundData
	if len(data) != boundDataLen || !IsBurnBound(data) {
		return Address{}, ErrBadBurnTag
	}

	var recipient Address
	copy(recipient[:], data[len(burnPrefix):])
	return recipient, nil
}
