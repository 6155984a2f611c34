package common

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	logger "github.com/kthomas/go-logger"
)

const (
	defaultMerkleTreeHeight   = 24
	defaultRootHistorySize    = 40
	defaultMaxPendingDeposits = 10
)

var (
	// Log is the configured logger
	Log *logger.Logger

	// ConsumeNATSStreamingSubscriptions indicates if the NATS streaming subscriptions should be consumed
	ConsumeNATSStreamingSubscriptions bool

	// MerkleTreeHeight is the height of the record accumulator; fixed for the life of a deployment
	MerkleTreeHeight uint8

	// RootHistorySize is the number of historical accumulator roots retained for note validation
	RootHistorySize int

	// MaxPendingDeposits is the maximum number of record commitments queued between blocks
	MaxPendingDeposits int
)

func init() {
	godotenv.Load()

	requireLogger()
	requireLedgerParams()

	ConsumeNATSStreamingSubscriptions = strings.ToLower(os.Getenv("CONSUME_NATS_STREAMING_SUBSCRIPTIONS")) == "true"
}

func requireLogger() {
	lvl := os.Getenv("LOG_LEVEL")
	if lvl == "" {
		lvl = "INFO"
	}

	Log = logger.NewLogger("shieldpool", lvl, StringOrNil(os.Getenv("SYSLOG_ENDPOINT")))
}

func requireLedgerParams() {
	MerkleTreeHeight = defaultMerkleTreeHeight
	if os.Getenv("MERKLE_TREE_HEIGHT") != "" {
		height, err := strconv.ParseUint(os.Getenv("MERKLE_TREE_HEIGHT"), 10, 8)
		if err != nil {
			Log.Panicf("failed to parse MERKLE_TREE_HEIGHT; %s", err.Error())
		}
		MerkleTreeHeight = uint8(height)
	}

	RootHistorySize = defaultRootHistorySize
	if os.Getenv("ROOT_HISTORY_SIZE") != "" {
		size, err := strconv.Atoi(os.Getenv("ROOT_HISTORY_SIZE"))
		if err != nil {
			Log.Panicf("failed to parse ROOT_HISTORY_SIZE; %s", err.Error())
		}
		RootHistorySize = size
	}

	MaxPendingDeposits = defaultMaxPendingDeposits
	if os.Getenv("MAX_PENDING_DEPOSITS") != "" {
		max, err := strconv.Atoi(os.Getenv("MAX_PENDING_DEPOSITS"))
		if err != nil {
			Log.Panicf("failed to parse MAX_PENDING_DEPOSITS; %s", err.Error())
		}
		MaxPendingDeposits = max
	}
}
