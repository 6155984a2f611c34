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

// Package verifier abstracts batch verification of note proofs. The validator
// treats proofs, verifying keys and public inputs as opaque and calls
// BatchVerify at most once per block.
package verifier

import (
	"bytes"
	"fmt"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/backend/witness"

	"github.com/meridianlabs/shieldpool/common"
)

// Request is a single (verifying key, public inputs, proof) tuple. The
// transcript seed is advisory context for verifiers that salt their
// transcripts; the PLONK provider derives its transcript from the key and
// public inputs and ignores it.
type Request struct {
	VerifyingKey   plonk.VerifyingKey
	PublicInputs   []fr.Element
	Proof          plonk.Proof
	TranscriptSeed []byte
}

// BatchVerifier verifies a batch of requests, failing the whole batch if any
// tuple fails. Implementations must not reorder the batch.
type BatchVerifier interface {
	BatchVerify(requests []Request) error
}

// VerifierFunc adapts a function to the BatchVerifier interface.
type VerifierFunc func(requests []Request) error

func (f VerifierFunc) BatchVerify(requests []Request) error {
	return f(requests)
}

// PlonkVerifier verifies PLONK proofs over BN254.
type PlonkVerifier struct{}

// NewPlonkVerifier initializes a PLONK batch verifier provider.
func NewPlonkVerifier() *PlonkVerifier {
	return &PlonkVerifier{}
}

// BatchVerify verifies each request in order, short-circuiting on the first
// failure.
func (v *PlonkVerifier) BatchVerify(requests []Request) error {
	for i := range requests {
		req := &requests[i]
		if req.VerifyingKey == nil || req.Proof == nil {
			return fmt.Errorf("request %d of %d missing verifying key or proof", i+1, len(requests))
		}

		w, err := publicWitness(req.PublicInputs)
		if err != nil {
			return fmt.Errorf("failed to build public witness for request %d of %d; %s", i+1, len(requests), err.Error())
		}

		if err := plonk.Verify(req.Proof, req.VerifyingKey, w); err != nil {
			common.Log.Debugf("proof %d of %d failed verification; %s", i+1, len(requests), err.Error())
			return fmt.Errorf("proof %d of %d failed verification; %s", i+1, len(requests), err.Error())
		}
	}
	return nil
}

func publicWitness(inputs []fr.Element) (witness.Witness, error) {
	w, err := witness.New(ecc.BN254.ScalarField())
	if err != nil {
		return nil, err
	}

	values := make(chan any, len(inputs))
	for _, input := range inputs {
		values <- input
	}
	close(values)

	if err := w.Fill(len(inputs), 0, values); err != nil {
		return nil, err
	}
	return w, nil
}

// LoadVerifyingKey deserializes a PLONK verifying key from the file at path.
func LoadVerifyingKey(path string) (plonk.VerifyingKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read verifying key %s; %s", path, err.Error())
	}

	vk := plonk.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to deserialize verifying key %s; %s", path, err.Error())
	}
	return vk, nil
}

// ParseProof deserializes a PLONK proof from its binary encoding.
func ParseProof(raw []byte) (plonk.Proof, error) {
	proof := plonk.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to deserialize proof; %s", err.Error())
	}
	return proof, nil
}
