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

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	uuid "github.com/kthomas/go.uuid"

	"github.com/meridianlabs/shieldpool/common"
	"github.com/meridianlabs/shieldpool/ledger"
	"github.com/meridianlabs/shieldpool/store"
	"github.com/meridianlabs/shieldpool/verifier"
)

const defaultPort = "8080"
const shutdownTimeout = time.Second * 10

func main() {
	keys, err := requireVerifyingKeys()
	if err != nil {
		common.Log.Panicf("failed to load verifying keys; %s", err.Error())
	}

	custody := &loggingCustody{}
	registry := ledger.NewMemoryAssetRegistry()

	var snapshots *store.SnapshotStore
	var latest *ledger.Snapshot
	if os.Getenv("DATABASE_NAME") != "" {
		snapshots = store.InitSnapshotStore(requireLedgerID())
		latest, err = snapshots.Latest()
		if err != nil {
			common.Log.Panicf("failed to resolve latest snapshot; %s", err.Error())
		}
	}

	validator, err := ledger.NewValidatorFromSnapshot(
		ledger.DefaultConfig(),
		keys,
		verifier.NewPlonkVerifier(),
		custody,
		registry,
		latest,
	)
	if err != nil {
		common.Log.Panicf("failed to initialize validator; %s", err.Error())
	}
	if latest != nil {
		common.Log.Infof("restored ledger state at height %d", latest.BlockHeight)
	}

	if snapshots != nil {
		validator.SetSnapshotSink(snapshots)
	}

	var waitGroup sync.WaitGroup
	ledger.CreateNatsBlockSubmitSubscription(validator, &waitGroup)

	r := gin.New()
	r.Use(gin.Recovery())
	ledger.InstallAPI(r, validator)

	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	port := os.Getenv("API_PORT")
	if port == "" {
		port = defaultPort
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: r,
	}

	go func() {
		common.Log.Infof("shieldpool API listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.Log.Panicf("failed to serve API; %s", err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.Log.Info("shutting down shieldpool API")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		common.Log.Warningf("failed to shutdown gracefully; %s", err.Error())
	}
}

// requireLedgerID parses LEDGER_ID, minting a fresh id when unset; a fresh id
// starts an empty snapshot history
func requireLedgerID() uuid.UUID {
	if raw := os.Getenv("LEDGER_ID"); raw != "" {
		id, err := uuid.FromString(raw)
		if err != nil {
			common.Log.Panicf("failed to parse LEDGER_ID; %s", err.Error())
		}
		return id
	}

	id, _ := uuid.NewV4()
	common.Log.Warningf("LEDGER_ID not set; minted ephemeral ledger id %s", id)
	return id
}

// requireVerifyingKeys loads the per-note-type verifying keys named by the
// environment; a missing path leaves the corresponding note type unverifiable
func requireVerifyingKeys() (ledger.VerifyingKeys, error) {
	keys := ledger.VerifyingKeys{}

	if path := os.Getenv("TRANSFER_VERIFYING_KEY_PATH"); path != "" {
		vk, err := verifier.LoadVerifyingKey(path)
		if err != nil {
			return keys, err
		}
		keys.Transfer = vk
	}
	if path := os.Getenv("MINT_VERIFYING_KEY_PATH"); path != "" {
		vk, err := verifier.LoadVerifyingKey(path)
		if err != nil {
			return keys, err
		}
		keys.Mint = vk
	}
	if path := os.Getenv("FREEZE_VERIFYING_KEY_PATH"); path != "" {
		vk, err := verifier.LoadVerifyingKey(path)
		if err != nil {
			return keys, err
		}
		keys.Freeze = vk
	}

	return keys, nil
}

// loggingCustody is a placeholder custody provider for deployments where
// token movement is settled by an external bridge process watching the
// block.committed subject
type loggingCustody struct{}

func (c *loggingCustody) TransferIn(token ledger.TokenRef, amount uint64, from ledger.Address) error {
	common.Log.Infof("custody intake of %d units of token %x from %x", amount, token, from)
	return nil
}

func (c *loggingCustody) TransferOut(token ledger.TokenRef, amount uint64, to ledger.Address) error {
	common.Log.Infof("custody payout of %d units of token %x to %x", amount, token, to)
	return nil
}
