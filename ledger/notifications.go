package ledger

import (
	"encoding/json"

	natsutil "github.com/kthomas/go-natsutil"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/meridianlabs/shieldpool/common"
)

const natsLedgerNotificationBlockCommitted = "shieldpool.ledger.block.committed"
const natsLedgerNotificationDepositPending = "shieldpool.ledger.deposit.pending"

// dispatchBlockCommitted broadcasts a committed-block event; delivery is
// best effort and never fails the commit
func (v *Validator) dispatchBlockCommitted(event BlockCommitted) {
	payload, _ := json.Marshal(map[string]interface{}{
		"height":              event.Height,
		"merkle_root":         common.ScalarToHex(&event.MerkleRoot),
		"deposit_commitments": common.ScalarsToHex(event.DepositCommitments),
	})

	_, err := natsutil.NatsJetstreamPublish(natsLedgerNotificationBlockCommitted, payload)
	if err != nil {
		common.Log.Warningf("failed to dispatch block committed notification at height %d; %s", event.Height, err.Error())
	}
}

// dispatchDepositPending broadcasts a queued-deposit event
func (v *Validator) dispatchDepositPending(commitment fr.Element) {
	payload, _ := json.Marshal(map[string]interface{}{
		"commitment": common.ScalarToHex(&commitment),
	})

	_, err := natsutil.NatsJetstreamPublish(natsLedgerNotificationDepositPending, payload)
	if err != nil {
		common.Log.Warningf("failed to dispatch deposit pending notification; %s", err.Error())
	}
}
