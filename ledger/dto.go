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
	"encoding/hex"
	"fmt"

	"github.com/meridianlabs/shieldpool/common"
	"github.com/meridianlabs/shieldpool/verifier"
)

// Wire representations for block and deposit submission; scalars are
// 0x-prefixed big-endian hex, proofs are hex-encoded binary encodings.

// TransferParams is the wire form of a transfer note.
type TransferParams struct {
	InputNullifiers   []string `json:"input_nullifiers"`
	OutputCommitments []string `json:"output_commitments"`
	Proof             string   `json:"proof"`
	AuditMemo         []string `json:"audit_memo"`

	MerkleRoot          string `json:"merkle_root"`
	Fee                 uint64 `json:"fee"`
	ValidUntil          uint64 `json:"valid_until"`
	ExtraProofBoundData string `json:"extra_proof_bound_data,omitempty"`
}

func (p *TransferParams) note() (*TransferNote, error) {
	nullifiers, err := common.ScalarsFromHex(p.InputNullifiers)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transfer nullifiers; %s", err.Error())
	}
	outputs, err := common.ScalarsFromHex(p.OutputCommitments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transfer outputs; %s", err.Error())
	}
	root, err := common.ScalarFromHex(p.MerkleRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transfer merkle root; %s", err.Error())
	}
	memo, err := common.ScalarsFromHex(p.AuditMemo)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transfer audit memo; %s", err.Error())
	}

	note := &TransferNote{
		InputNullifiers:   nullifiers,
		OutputCommitments: outputs,
		AuditMemo:         AuditMemo{Ciphertext: memo},
		Aux: TransferAux{
			MerkleRoot: *root,
			Fee:        p.Fee,
			ValidUntil: p.ValidUntil,
		},
	}

	if p.ExtraProofBoundData != "" {
		bound, err := hex.DecodeString(p.ExtraProofBoundData)
		if err != nil {
			return nil, fmt.Errorf("failed to parse proof bound data; %s", err.Error())
		}
		note.Aux.ExtraProofBoundData = bound
	}

	if p.Proof != "" {
		raw, err := hex.DecodeString(p.Proof)
		if err != nil {
			return nil, fmt.Errorf("failed to decode transfer proof; %s", err.Error())
		}
		proof, err := verifier.ParseProof(raw)
		if err != nil {
			return nil, err
		}
		note.Proof = proof
	}

	return note, nil
}

// MintParams is the wire form of a mint note.
type MintParams struct {
	InputNullifier   string   `json:"input_nullifier"`
	ChangeCommitment string   `json:"change_commitment"`
	MintCommitment   string   `json:"mint_commitment"`
	AssetCode        string   `json:"asset_code"`
	InternalCode     string   `json:"internal_code"`
	Amount           uint64   `json:"amount"`
	Proof            string   `json:"proof"`
	AuditMemo        []string `json:"audit_memo"`

	MerkleRoot string `json:"merkle_root"`
	Fee        uint64 `json:"fee"`
}

func (p *MintParams) note() (*MintNote, error) {
	scalars, err := common.ScalarsFromHex([]string{
		p.InputNullifier,
		p.ChangeCommitment,
		p.MintCommitment,
		p.AssetCode,
		p.InternalCode,
		p.MerkleRoot,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse mint note; %s", err.Error())
	}
	memo, err := common.ScalarsFromHex(p.AuditMemo)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mint audit memo; %s", err.Error())
	}

	note := &MintNote{
		InputNullifier:   scalars[0],
		ChangeCommitment: scalars[1],
		MintCommitment:   scalars[2],
		AssetCode:        scalars[3],
		InternalCode:     scalars[4],
		Amount:           p.Amount,
		AuditMemo:        AuditMemo{Ciphertext: memo},
		Aux: MintAux{
			MerkleRoot: scalars[5],
			Fee:        p.Fee,
		},
	}

	if p.Proof != "" {
		raw, err := hex.DecodeString(p.Proof)
		if err != nil {
			return nil, fmt.Errorf("failed to decode mint proof; %s", err.Error())
		}
		proof, err := verifier.ParseProof(raw)
		if err != nil {
			return nil, err
		}
		note.Proof = proof
	}

	return note, nil
}

// FreezeParams is the wire form of a freeze note.
type FreezeParams struct {
	InputNullifiers   []string `json:"input_nullifiers"`
	OutputCommitments []string `json:"output_commitments"`
	Proof             string   `json:"proof"`

	MerkleRoot string `json:"merkle_root"`
	Fee        uint64 `json:"fee"`
}

func (p *FreezeParams) note() (*FreezeNote, error) {
	nullifiers, err := common.ScalarsFromHex(p.InputNullifiers)
	if err != nil {
		return nil, fmt.Errorf("failed to parse freeze nullifiers; %s", err.Error())
	}
	outputs, err := common.ScalarsFromHex(p.OutputCommitments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse freeze outputs; %s", err.Error())
	}
	root, err := common.ScalarFromHex(p.MerkleRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to parse freeze merkle root; %s", err.Error())
	}

	note := &FreezeNote{
		InputNullifiers:   nullifiers,
		OutputCommitments: outputs,
		Aux: FreezeAux{
			MerkleRoot: *root,
			Fee:        p.Fee,
		},
	}

	if p.Proof != "" {
		raw, err := hex.DecodeString(p.Proof)
		if err != nil {
			return nil, fmt.Errorf("failed to decode freeze proof; %s", err.Error())
		}
		proof, err := verifier.ParseProof(raw)
		if err != nil {
			return nil, err
		}
		note.Proof = proof
	}

	return note, nil
}

// RecordOpeningParams is the wire form of a record opening.
type RecordOpeningParams struct {
	Amount      uint64 `json:"amount"`
	AssetCode   string `json:"asset_code"`
	UserAddress string `json:"user_address"`
	Frozen      bool   `json:"frozen"`
	Blind       string `json:"blind"`
}

func (p *RecordOpeningParams) opening() (*RecordOpening, error) {
	scalars, err := common.ScalarsFromHex([]string{p.AssetCode, p.UserAddress, p.Blind})
	if err != nil {
		return nil, fmt.Errorf("failed to parse record opening; %s", err.Error())
	}

	return &RecordOpening{
		Amount:      p.Amount,
		AssetCode:   scalars[0],
		UserAddress: scalars[1],
		Frozen:      p.Frozen,
		Blind:       scalars[2],
	}, nil
}

// BurnParams is the wire form of a burn note.
type BurnParams struct {
	Transfer      TransferParams      `json:"transfer"`
	BurnedOpening RecordOpeningParams `json:"burned_opening"`
}

func (p *BurnParams) note() (*BurnNote, error) {
	transfer, err := p.Transfer.note()
	if err != nil {
		return nil, err
	}
	opening, err := p.BurnedOpening.opening()
	if err != nil {
		return nil, err
	}

	return &BurnNote{
		Transfer:      *transfer,
		BurnedOpening: *opening,
	}, nil
}

// BlockParams is the wire form of a block submission.
type BlockParams struct {
	NoteTypes []string         `json:"note_types"`
	Transfers []TransferParams `json:"transfers"`
	Mints     []MintParams     `json:"mints"`
	Freezes   []FreezeParams   `json:"freezes"`
	Burns     []BurnParams     `json:"burns"`
}

// Block converts the wire form into a Block.
func (p *BlockParams) Block() (*Block, error) {
	block := &Block{
		NoteTypes: make([]NoteType, len(p.NoteTypes)),
		Transfers: make([]TransferNote, len(p.Transfers)),
		Mints:     make([]MintNote, len(p.Mints)),
		Freezes:   make([]FreezeNote, len(p.Freezes)),
		Burns:     make([]BurnNote, len(p.Burns)),
	}

	for i, name := range p.NoteTypes {
		switch name {
		case "transfer":
			block.NoteTypes[i] = NoteTypeTransfer
		case "mint":
			block.NoteTypes[i] = NoteTypeMint
		case "freeze":
			block.NoteTypes[i] = NoteTypeFreeze
		case "burn":
			block.NoteTypes[i] = NoteTypeBurn
		default:
			return nil, fmt.Errorf("%w; unknown note type %s", ErrMalformedBlock, name)
		}
	}

	for i := range p.Transfers {
		note, err := p.Transfers[i].note()
		if err != nil {
			return nil, err
		}
		block.Transfers[i] = *note
	}
	for i := range p.Mints {
		note, err := p.Mints[i].note()
		if err != nil {
			return nil, err
		}
		block.Mints[i] = *note
	}
	for i := range p.Freezes {
		note, err := p.Freezes[i].note()
		if err != nil {
			return nil, err
		}
		block.Freezes[i] = *note
	}
	for i := range p.Burns {
		note, err := p.Burns[i].note()
		if err != nil {
			return nil, err
		}
		block.Burns[i] = *note
	}

	return block, nil
}

// DepositParams is the wire form of a deposit submission.
type DepositParams struct {
	Opening RecordOpeningParams `json:"opening"`
	Token   string              `json:"token"`
	From    string              `json:"from"`
}

func parseAddress20(str string) ([20]byte, error) {
	var out [20]byte
	raw, err := hex.DecodeString(str)
	if err != nil {
		return out, fmt.Errorf("failed to parse address %s; %s", str, err.Error())
	}
	if len(raw) != len(out) {
		return out, fmt.Errorf("failed to parse address %s; expected %d bytes", str, len(out))
	}
	copy(out[:], raw)
	return out, nil
}
