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

package rescue

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// scheduleSeed parameterizes the fixed round-key and MDS schedules. Changing
// it changes every derived hash, root and commitment; it is part of the wire
// format and must never be altered on a live deployment.
const scheduleSeed = "shieldpool.rescue.bn254.v1"

// expandSchedule fills the round-key table and the MDS matrix by counter-mode
// expansion of the schedule seed. Each digest is reduced mod p; the bias from
// reduction is irrelevant here since the constants only need to be fixed,
// public and dense.
func expandSchedule() {
	ctr := uint64(0)

	next := func() (elem fr.Element) {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], ctr)
		ctr++

		digest := sha256.New()
		digest.Write([]byte(scheduleSeed))
		digest.Write(buf[:])
		elem.SetBytes(digest.Sum(nil))
		return elem
	}

	for i := range roundKeys {
		for j := range roundKeys[i] {
			roundKeys[i][j] = next()
		}
	}

	for i := range mdsMatrix {
		for j := range mdsMatrix[i] {
			mdsMatrix[i][j] = next()
		}
	}
}
