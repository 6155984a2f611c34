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
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meridianlabs/shieldpool/common"
)

// InstallAPI registers the ledger API handlers with gin
func InstallAPI(r *gin.Engine, v *Validator) {
	r.GET("/api/v1/ledger", ledgerStatusHandler(v))
	r.GET("/api/v1/ledger/roots/:root", rootStatusHandler(v))
	r.GET("/api/v1/ledger/nullifiers/:nullifier", nullifierStatusHandler(v))
	r.GET("/api/v1/ledger/deposits", listPendingDepositsHandler(v))

	r.POST("/api/v1/ledger/blocks", submitBlockHandler(v))
	r.POST("/api/v1/ledger/deposits", submitDepositHandler(v))
}

func ledgerStatusHandler(v *Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		root := v.Root()
		digest := v.NullifierDigest()

		c.JSON(http.StatusOK, gin.H{
			"block_height":     v.BlockHeight(),
			"merkle_root":      common.ScalarToHex(&root),
			"leaf_count":       v.LeafCount(),
			"tree_height":      v.TreeHeight(),
			"nullifier_digest": hex.EncodeToString(digest[:]),
		})
	}
}

func rootStatusHandler(v *Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		root, err := common.ScalarFromHex(c.Param("root"))
		if err != nil {
			renderError(err.Error(), http.StatusBadRequest, c)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"root":    common.ScalarToHex(root),
			"current": v.ContainsRoot(*root),
		})
	}
}

func nullifierStatusHandler(v *Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		nullifier, err := common.ScalarFromHex(c.Param("nullifier"))
		if err != nil {
			renderError(err.Error(), http.StatusBadRequest, c)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"nullifier": common.ScalarToHex(nullifier),
			"published": v.IsPublished(*nullifier),
		})
	}
}

func listPendingDepositsHandler(v *Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"deposits": common.ScalarsToHex(v.PendingDeposits()),
		})
	}
}

func submitBlockHandler(v *Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := &BlockParams{}
		if err := c.ShouldBindJSON(params); err != nil {
			renderError(err.Error(), http.StatusBadRequest, c)
			return
		}

		block, err := params.Block()
		if err != nil {
			renderError(err.Error(), http.StatusUnprocessableEntity, c)
			return
		}

		if err := v.SubmitBlock(block); err != nil {
			renderError(err.Error(), submissionStatus(err), c)
			return
		}

		root := v.Root()
		c.JSON(http.StatusCreated, gin.H{
			"block_height": v.BlockHeight(),
			"merkle_root":  common.ScalarToHex(&root),
		})
	}
}

func submitDepositHandler(v *Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := &DepositParams{}
		if err := c.ShouldBindJSON(params); err != nil {
			renderError(err.Error(), http.StatusBadRequest, c)
			return
		}

		opening, err := params.Opening.opening()
		if err != nil {
			renderError(err.Error(), http.StatusUnprocessableEntity, c)
			return
		}
		token, err := parseAddress20(params.Token)
		if err != nil {
			renderError(err.Error(), http.StatusUnprocessableEntity, c)
			return
		}
		from, err := parseAddress20(params.From)
		if err != nil {
			renderError(err.Error(), http.StatusUnprocessableEntity, c)
			return
		}

		commitment, err := v.DepositPending(opening, TokenRef(token), Address(from))
		if err != nil {
			renderError(err.Error(), submissionStatus(err), c)
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"commitment": common.ScalarToHex(commitment),
		})
	}
}

// submissionStatus maps validation failures onto HTTP statuses
func submissionStatus(err error) int {
	switch {
	case errors.Is(err, ErrReentrant), errors.Is(err, ErrQueueFull):
		return http.StatusConflict
	case errors.Is(err, ErrMalformedBlock):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

func renderError(message string, status int, c *gin.Context) {
	c.JSON(status, gin.H{"message": message})
}
