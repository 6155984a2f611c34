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
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// AssetRegistry resolves wrapped asset codes to the external tokens backing
// them. Deposits and burns consult it; asset sponsorship itself is out of
// band.
type AssetRegistry interface {
	Lookup(assetCode fr.Element) (TokenRef, bool)
}

// MemoryAssetRegistry is an in-process AssetRegistry.
type MemoryAssetRegistry struct {
	mutex  sync.RWMutex
	assets map[fr.Element]TokenRef
}

// NewMemoryAssetRegistry initializes an empty registry.
func NewMemoryAssetRegistry() *MemoryAssetRegistry {
	return &MemoryAssetRegistry{assets: make(map[fr.Element]TokenRef)}
}

// Register binds an asset code to its backing token; rebinding is rejected.
func (r *MemoryAssetRegistry) Register(assetCode fr.Element, token TokenRef) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.assets[assetCode]; exists {
		return fmt.Errorf("asset %s already registered", assetCode.String())
	}
	r.assets[assetCode] = token
	return nil
}

// Lookup resolves the token backing the given asset code.
func (r *MemoryAssetRegistry) Lookup(assetCode fr.Element) (TokenRef, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	token, ok := r.assets[assetCode]
	return token, ok
}
