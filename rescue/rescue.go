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

// Package rescue implements the Rescue algebraic sponge over the BN254 scalar
// field: a width-4 permutation absorbing at rate 3 with a single capacity slot.
package rescue

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

const (
	stateWidth   = 4
	rate         = 3
	doubleRounds = 12

	// CommitMaxInputs is the maximum number of scalars Commit absorbs
	CommitMaxInputs = 15
)

var (
	alpha    = big.NewInt(5)
	alphaInv *big.Int

	roundKeys [2*doubleRounds + 1][stateWidth]fr.Element
	mdsMatrix [stateWidth][stateWidth]fr.Element

	domesticAssetDomainSep fr.Element
)

func init() {
	pMinusOne := new(big.Int).Sub(fr.Modulus(), big.NewInt(1))
	alphaInv = new(big.Int).ModInverse(alpha, pMinusOne)
	if alphaInv == nil {
		panic("rescue: S-box exponent not invertible mod p-1")
	}

	expandSchedule()

	domesticAssetDomainSep.SetBytes([]byte("DOMESTIC_ASSET"))
}

// Hash3 absorbs exactly three scalars into a zeroed sponge state and squeezes
// a single scalar. Total over all inputs; the arguments are already reduced
// mod p by construction of fr.Element.
func Hash3(a, b, c fr.Element) fr.Element {
	var state [stateWidth]fr.Element
	state[0] = a
	state[1] = b
	state[2] = c
	permute(&state)
	return state[0]
}

// Commit absorbs up to CommitMaxInputs scalars in rate-sized chunks, padding
// the final chunk with zeros. The input length is bound into the capacity
// slot so padded and unpadded preimages cannot collide.
func Commit(inputs []fr.Element) (fr.Element, error) {
	if len(inputs) == 0 || len(inputs) > CommitMaxInputs {
		return fr.Element{}, fmt.Errorf("commit requires between 1 and %d inputs; got %d", CommitMaxInputs, len(inputs))
	}

	var state [stateWidth]fr.Element
	state[stateWidth-1].SetUint64(uint64(len(inputs)))

	for i := 0; i < len(inputs); i += rate {
		for j := 0; j < rate && i+j < len(inputs); j++ {
			state[j].Add(&state[j], &inputs[i+j])
		}
		permute(&state)
	}

	return state[0], nil
}

// HashLeaf derives the accumulator leaf value for the record commitment v at
// position uid; the leading zero scalar domain-separates leaves from interior
// node hashes.
func HashLeaf(uid uint64, v fr.Element) fr.Element {
	var zero, pos fr.Element
	pos.SetUint64(uid)
	return Hash3(zero, pos, v)
}

// DeriveDomesticAssetCode maps a minted asset's internal code to its public
// asset code.
func DeriveDomesticAssetCode(internal fr.Element) fr.Element {
	var zero fr.Element
	return Hash3(domesticAssetDomainSep, internal, zero)
}

func permute(state *[stateWidth]fr.Element) {
	addRoundKey(state, &roundKeys[0])
	for r := 0; r < doubleRounds; r++ {
		sboxInverse(state)
		mix(state)
		addRoundKey(state, &roundKeys[2*r+1])

		sbox(state)
		mix(state)
		addRoundKey(state, &roundKeys[2*r+2])
	}
}

func sbox(state *[stateWidth]fr.Element) {
	for i := range state {
		state[i].Exp(state[i], alpha)
	}
}

func sboxInverse(state *[stateWidth]fr.Element) {
	for i := range state {
		state[i].Exp(state[i], alphaInv)
	}
}

func mix(state *[stateWidth]fr.Element) {
	var mixed [stateWidth]fr.Element
	var term fr.Element
	for i := 0; i < stateWidth; i++ {
		for j := 0; j < stateWidth; j++ {
			term.Mul(&mdsMatrix[i][j], &state[j])
			mixed[i].Add(&mixed[i], &term)
		}
	}
	*state = mixed
}

func addRoundKey(state *[stateWidth]fr.Element, keys *[stateWidth]fr.Element) {
	for i := range state {
		state[i].Add(&state[i], &keys[i])
	}
}
