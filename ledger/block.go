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

// Block carries notes grouped by type; NoteTypes preserves the original
// submission order across the per-type arrays.
type Block struct {
	NoteTypes []NoteType     `json:"note_types"`
	Transfers []TransferNote `json:"transfers"`
	Mints     []MintNote     `json:"mints"`
	Freezes   []FreezeNote   `json:"freezes"`
	Burns     []BurnNote     `json:"burns"`
}

// sequencedNote is a single note in submission order; exactly one pointer is
// non-nil, matching kind.
type sequencedNote struct {
	kind     NoteType
	transfer *TransferNote
	mint     *MintNote
	freeze   *FreezeNote
	burn     *BurnNote
}

// sequence reassembles the per-type arrays into submission order, walking the
// type vector with one cursor per array. A type vector that overruns any
// array, leaves notes unconsumed, or names an unknown type is malformed.
func (b *Block) sequence() ([]sequencedNote, error) {
	notes := make([]sequencedNote, 0, len(b.NoteTypes))

	var transfers, mints, freezes, burns int
	for _, kind := range b.NoteTypes {
		switch kind {
		case NoteTypeTransfer:
			if transfers >= len(b.Transfers) {
				return nil, ErrMalformedBlock
			}
			notes = append(notes, sequencedNote{kind: kind, transfer: &b.Transfers[transfers]})
			transfers++
		case NoteTypeMint:
			if mints >= len(b.Mints) {
				return nil, ErrMalformedBlock
			}
			notes = append(notes, sequencedNote{kind: kind, mint: &b.Mints[mints]})
			mints++
		case NoteTypeFreeze:
			if freezes >= len(b.Freezes) {
				return nil, ErrMalformedBlock
			}
			notes = append(notes, sequencedNote{kind: kind, freeze: &b.Freezes[freezes]})
			freezes++
		case NoteTypeBurn:
			if burns >= len(b.Burns) {
				return nil, ErrMalformedBlock
			}
			notes = append(notes, sequencedNote{kind: kind, burn: &b.Burns[burns]})
			burns++
		default:
			return nil, ErrMalformedBlock
		}
	}

	if transfers != len(b.Transfers) || mints != len(b.Mints) || freezes != len(b.Freezes) || burns != len(b.Burns) {
		return nil, ErrMalformedBlock
	}

	return notes, nil
}
