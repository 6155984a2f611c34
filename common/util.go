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

package common

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// PanicIfEmpty panics if the given string is empty
func PanicIfEmpty(val string, msg string) {
	if val == "" {
		panic(msg)
	}
}

// StringOrNil returns the given string or nil when empty
func StringOrNil(str string) *string {
	if str == "" {
		return nil
	}
	return &str
}

// ScalarToHex encodes a field element as a 0x-prefixed big-endian hex string
func ScalarToHex(elem *fr.Element) string {
	b := elem.Bytes()
	return fmt.Sprintf("0x%s", hex.EncodeToString(b[:]))
}

// ScalarFromHex decodes a 0x-prefixed big-endian hex string into a field element,
// reducing the value mod the field modulus
func ScalarFromHex(str string) (*fr.Element, error) {
	raw := strings.TrimPrefix(str, "0x")
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode scalar %s; %s", str, err.Error())
	}
	if len(b) > fr.Bytes {
		return nil, fmt.Errorf("failed to decode scalar %s; exceeds %d bytes", str, fr.Bytes)
	}
	var elem fr.Element
	elem.SetBytes(b)
	return &elem, nil
}

// ScalarsToHex encodes a slice of field elements as hex strings
func ScalarsToHex(elems []fr.Element) []string {
	strs := make([]string, len(elems))
	for i := range elems {
		strs[i] = ScalarToHex(&elems[i])
	}
	return strs
}

// ScalarsFromHex decodes a slice of hex strings into field elements
func ScalarsFromHex(strs []string) ([]fr.Element, error) {
	elems := make([]fr.Element, len(strs))
	for i := range strs {
		elem, err := ScalarFromHex(strs[i])
		if err != nil {
			return nil, err
		}
		elems[i] = *elem
	}
	return elems, nil
}
