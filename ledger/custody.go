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

// CustodyProvider moves external token balances in and out of pool custody.
// TransferIn is called during deposit intake; TransferOut settles burn
// withdrawals after the containing block has committed.
type CustodyProvider interface {
	TransferIn(token TokenRef, amount uint64, from Address) error
	TransferOut(token TokenRef, amount uint64, to Address) error
}

// withdrawal is a scheduled burn payout.
type withdrawal struct {
	token     TokenRef
	amount    uint64
	recipient Address
}
