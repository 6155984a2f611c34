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
	"encoding/json"
	"fmt"
	"sync"
	"time"

	natsutil "github.com/kthomas/go-natsutil"
	"github.com/nats-io/nats.go"

	"github.com/meridianlabs/shieldpool/common"
)

const defaultNatsStream = "shieldpool"

const natsBlockSubmitSubject = "shieldpool.ledger.block.submit"
const natsBlockSubmitMaxInFlight = 1
const blockSubmitAckWait = time.Minute * 5
const blockSubmitMaxDeliveries = 3

func init() {
	if !common.ConsumeNATSStreamingSubscriptions {
		common.Log.Debug("ledger package consumer configured to skip NATS streaming subscription setup")
		return
	}

	natsutil.EstablishSharedNatsConnection(nil)
	natsutil.NatsCreateStream(defaultNatsStream, []string{
		fmt.Sprintf("%s.>", defaultNatsStream),
	})
}

// CreateNatsBlockSubmitSubscription consumes serialized blocks from the
// submission subject and drives them through the given validator. A single
// in-flight message preserves the single-writer discipline.
func CreateNatsBlockSubmitSubscription(v *Validator, wg *sync.WaitGroup) {
	if !common.ConsumeNATSStreamingSubscriptions {
		return
	}

	natsutil.RequireNatsJetstreamSubscription(wg,
		blockSubmitAckWait,
		natsBlockSubmitSubject,
		natsBlockSubmitSubject,
		natsBlockSubmitSubject,
		func(msg *nats.Msg) {
			consumeBlockSubmitMsg(v, msg)
		},
		blockSubmitAckWait,
		natsBlockSubmitMaxInFlight,
		blockSubmitMaxDeliveries,
		nil,
	)
}

func consumeBlockSubmitMsg(v *Validator, msg *nats.Msg) {
	defer func() {
		if r := recover(); r != nil {
			common.Log.Warningf("recovered during block submission; %s", r)
			msg.Nak()
		}
	}()

	common.Log.Debugf("consuming %d-byte NATS block submission on subject: %s", len(msg.Data), msg.Subject)

	params := &BlockParams{}
	if err := json.Unmarshal(msg.Data, params); err != nil {
		common.Log.Warningf("failed to unmarshal block submission; %s", err.Error())
		msg.Nak()
		return
	}

	block, err := params.Block()
	if err != nil {
		common.Log.Warningf("failed to parse block submission; %s", err.Error())
		msg.Nak()
		return
	}

	if err := v.SubmitBlock(block); err != nil {
		common.Log.Warningf("failed to commit block; %s", err.Error())
		msg.Nak()
		return
	}

	msg.Ack()
}
