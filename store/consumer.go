package store

import (
	natsutil "github.com/kthomas/go-natsutil"

	"github.com/meridianlabs/shieldpool/common"
)

func init() {
	if !common.ConsumeNATSStreamingSubscriptions {
		common.Log.Debug("store package consumer configured to skip NATS streaming subscription setup")
		return
	}

	natsutil.EstablishSharedNatsConnection(nil)
}
